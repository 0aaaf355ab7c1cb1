package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heladeria/order-form-api/services"
	"github.com/heladeria/order-form-api/utils"
	"github.com/rs/zerolog/log"
)

// UploadReceipt handles POST /api/v1/receipts - stores a transfer receipt image.
// Expects multipart/form-data with the file in the "receipt" field.
func UploadReceipt(c *gin.Context) {
	receipts := services.GetReceiptService()
	if receipts == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "RECEIPTS_DISABLED", "Receipt uploads are not enabled")
		return
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "MISSING_FILE", "A receipt file is required")
		return
	}

	receipt, err := receipts.UploadReceipt(c.Request.Context(), fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			utils.RespondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}

		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to store receipt")
		utils.RespondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store receipt")
		return
	}

	log.Info().Str("key", receipt.Key).Msg("receipt stored")
	utils.RespondData(c, http.StatusCreated, receipt)
}
