package ai_model

import (
	"time"

	"modelhub-backend/internal/models"
)

type ModelListItem struct {
	ID          uint            `json:"id"`
	EndpointID  string          `json:"endpoint_id"`
	Provider    string          `json:"provider"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	TaskType    models.TaskType `json:"task_type"`
	Category    string          `json:"category"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ModelListResponse struct {
	Models []ModelListItem `json:"models"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type ModelDetailResponse struct {
	ModelListItem
	Parameters []models.ModelParameter `json:"parameters"`
	Pricing    *models.ModelPricing    `json:"pricing"`
}
