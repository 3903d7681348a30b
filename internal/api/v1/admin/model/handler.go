package model

import (
	"errors"
	"net/http"
	"strconv"

	"modelhub-backend/config"
	"modelhub-backend/internal/provider"
	"modelhub-backend/internal/services"
	"modelhub-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

// UpdateModelStatus toggles whether a model is exposed to callers.
func (h *Handler) UpdateModelStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid model ID"))
		return
	}

	var input UpdateStatusRequest
	if !utils.BindAndValidate(c, &input) {
		return
	}

	if err := services.UpdateModelActive(uint(id), *input.IsActive); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Model not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update model status"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model status updated", nil))
}

// EstimateModelCost asks the upstream for a bulk price estimate. The
// upstream call is best effort, so a zero total means no quote rather
// than a free model.
func (h *Handler) EstimateModelCost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid model ID"))
		return
	}

	var input EstimateRequest
	if !utils.BindAndValidate(c, &input) {
		return
	}

	m, err := services.GetModelByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Model not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch model"))
		return
	}

	client := provider.NewClient(h.cfg)
	total := client.EstimateCost(c.Request.Context(), m.EndpointID, input.CallQuantity)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", EstimateResponse{
		EndpointID:   m.EndpointID,
		CallQuantity: input.CallQuantity,
		TotalPrice:   total,
	}))
}
