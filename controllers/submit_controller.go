package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heladeria/order-form-api/config"
	"github.com/heladeria/order-form-api/metrics"
	"github.com/heladeria/order-form-api/models"
	"github.com/heladeria/order-form-api/services"
	"github.com/heladeria/order-form-api/utils"
	"github.com/rs/zerolog/log"
)

const defaultSheetsTimeout = 15 * time.Second

// SubmitOrder handles /api/submit - appends one order as a spreadsheet row.
// Any method other than POST is refused before the spreadsheet is touched.
func SubmitOrder(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		metrics.RecordSubmission(metrics.StatusMethodNotAllowed)
		c.Header("Allow", http.MethodPost)
		utils.RespondError(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST requests allowed")
		return
	}

	var req models.OrderSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordSubmission(metrics.StatusRejected)
		utils.RespondErrorDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", validationDetails(err))
		return
	}

	if catalog := services.GetFlavorService(); catalog != nil {
		missing, err := catalog.Missing(c.Request.Context(), req.Flavors())
		if err != nil {
			log.Error().Err(err).Msg("failed to check flavors")
			metrics.RecordSubmission(metrics.StatusCatalogError)
			utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check flavors")
			return
		}
		if len(missing) > 0 {
			metrics.RecordSubmission(metrics.StatusRejected)
			utils.RespondErrorDetails(c, http.StatusBadRequest, "UNKNOWN_FLAVOR", "Unknown flavor selected", missing)
			return
		}
	}

	appender := services.GetSheetsService()
	if appender == nil {
		metrics.RecordSubmission(metrics.StatusUnavailable)
		utils.RespondError(c, http.StatusServiceUnavailable, "SHEETS_UNAVAILABLE", "Order sheet is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sheetsTimeout())
	defer cancel()

	start := time.Now()
	result, err := appender.Append(ctx, req.Row())
	metrics.ObserveSheetsAppend(time.Since(start))

	if err != nil {
		respondSheetsError(c, err)
		return
	}

	metrics.RecordSubmission(metrics.StatusAppended)
	log.Info().
		Str("table_range", result.TableRange).
		Str("medida", req.Medida).
		Str("medio_pago", req.MedioPago).
		Msg("order appended")

	utils.RespondData(c, http.StatusCreated, result)
}

// respondSheetsError relays the spreadsheet's status and message unchanged
func respondSheetsError(c *gin.Context, err error) {
	var sheetsErr *services.SheetsError
	if !errors.As(err, &sheetsErr) {
		sheetsErr = &services.SheetsError{Message: err.Error(), Err: err}
		if errors.Is(err, context.DeadlineExceeded) {
			sheetsErr.Code = http.StatusGatewayTimeout
			sheetsErr.Timeout = true
		}
	}

	code := "SHEETS_ERROR"
	status := metrics.StatusSheetsError
	if sheetsErr.Timeout {
		code = "SHEETS_TIMEOUT"
		status = metrics.StatusSheetsTimeout
	}
	metrics.RecordSubmission(status)

	log.Error().
		Err(err).
		Int("sheets_code", sheetsErr.Code).
		Bool("timeout", sheetsErr.Timeout).
		Msg("failed to append order")

	utils.RespondError(c, sheetsErr.Status(), code, sheetsErr.Message)
}

func sheetsTimeout() time.Duration {
	if cfg := config.GetConfig(); cfg != nil && cfg.SheetsTimeout > 0 {
		return cfg.SheetsTimeout
	}
	return defaultSheetsTimeout
}
