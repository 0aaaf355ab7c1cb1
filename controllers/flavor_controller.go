package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/heladeria/order-form-api/middleware"
	"github.com/heladeria/order-form-api/services"
	"github.com/heladeria/order-form-api/utils"
	"github.com/rs/zerolog/log"
)

// CreateFlavorRequest represents the request body for adding a flavor
type CreateFlavorRequest struct {
	Name string `json:"name" binding:"required,notblank,max=64,excludesall=0x2C"`
}

// FetchFlavors handles GET /api/fetchData - the flavor source for the order form.
// Each row holds a single label: {"rows": [["Vanilla"], ["Chocolate"]]}
func FetchFlavors(c *gin.Context) {
	catalog := services.GetFlavorService()
	if catalog == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Flavor catalog is not configured")
		return
	}

	flavors, err := catalog.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list flavors")
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list flavors")
		return
	}

	rows := make([][]string, 0, len(flavors))
	for _, flavor := range flavors {
		rows = append(rows, []string{flavor.Name})
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ListFlavors handles GET /api/v1/flavors
func ListFlavors(c *gin.Context) {
	catalog := services.GetFlavorService()
	if catalog == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Flavor catalog is not configured")
		return
	}

	flavors, err := catalog.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list flavors")
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list flavors")
		return
	}

	utils.RespondData(c, http.StatusOK, flavors)
}

// CreateFlavor handles POST /api/v1/flavors (requires write:flavors)
func CreateFlavor(c *gin.Context) {
	catalog := services.GetFlavorService()
	if catalog == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Flavor catalog is not configured")
		return
	}

	var req CreateFlavorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", validationDetails(err))
		return
	}

	flavor, err := catalog.Create(c.Request.Context(), req.Name)
	if errors.Is(err, services.ErrInvalidFlavorName) {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if errors.Is(err, services.ErrDuplicateFlavor) {
		utils.RespondError(c, http.StatusConflict, "DUPLICATE_FLAVOR", "Flavor already exists")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to create flavor")
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create flavor")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info().Str("flavor", flavor.Name).Str("admin", adminID).Msg("flavor added")

	utils.RespondData(c, http.StatusCreated, flavor)
}

// DeleteFlavor handles DELETE /api/v1/flavors/:id (requires write:flavors)
func DeleteFlavor(c *gin.Context) {
	catalog := services.GetFlavorService()
	if catalog == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Flavor catalog is not configured")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_ID", "Flavor id must be a positive integer")
		return
	}

	err = catalog.Delete(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrFlavorNotFound) {
		utils.RespondError(c, http.StatusNotFound, "FLAVOR_NOT_FOUND", "Flavor not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Uint64("flavor_id", id).Msg("failed to delete flavor")
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete flavor")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info().Uint64("flavor_id", id).Str("admin", adminID).Msg("flavor removed")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Flavor removed",
	})
}
