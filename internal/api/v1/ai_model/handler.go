package ai_model

import (
	"errors"
	"net/http"
	"strconv"

	"modelhub-backend/internal/models"
	"modelhub-backend/internal/services"
	"modelhub-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetModels returns a paginated listing of active catalog models.
func GetModels(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	filter := services.ModelFilter{
		Name:     c.Query("name"),
		TaskType: c.Query("task_type"),
		Page:     page,
		Limit:    limit,
	}

	// Inactive models are hidden unless explicitly requested.
	switch c.DefaultQuery("status", "active") {
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	case "all":
	default:
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid status filter"))
		return
	}

	catalog, total, err := services.FindModels(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch models"))
		return
	}

	items := make([]ModelListItem, 0, len(catalog))
	for _, m := range catalog {
		items = append(items, toListItem(m))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", ModelListResponse{
		Models: items,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}))
}

// GetModel returns one model with its parameters in display order and
// its pricing record, when one exists.
func GetModel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid model ID"))
		return
	}

	model, err := services.GetModelByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Model not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch model"))
		return
	}

	params, err := services.GetModelParameters(model.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch model parameters"))
		return
	}

	pricing, err := services.GetModelPricing(model.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch model pricing"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", ModelDetailResponse{
		ModelListItem: toListItem(*model),
		Parameters:    params,
		Pricing:       pricing,
	}))
}

func toListItem(m models.Model) ModelListItem {
	return ModelListItem{
		ID:          m.ID,
		EndpointID:  m.EndpointID,
		Provider:    m.Provider,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Description: m.Description,
		TaskType:    m.TaskType,
		Category:    m.Category,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
