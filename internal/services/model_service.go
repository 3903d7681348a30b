package services

import (
	"errors"

	"modelhub-backend/internal/database"
	"modelhub-backend/internal/models"

	"gorm.io/gorm"
)

type ModelFilter struct {
	Name     string
	TaskType string
	Active   *bool
	Page     int
	Limit    int
}

// FindModels retrieves a paginated list of catalog models with filtering
func FindModels(filter ModelFilter) ([]models.Model, int64, error) {
	var catalog []models.Model
	var total int64

	query := database.DB.Model(&models.Model{})

	if filter.Name != "" {
		query = query.Where("name LIKE ? OR display_name LIKE ?", "%"+filter.Name+"%", "%"+filter.Name+"%")
	}
	if filter.TaskType != "" {
		query = query.Where("task_type = ?", filter.TaskType)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&catalog).Error; err != nil {
		return nil, 0, err
	}

	return catalog, total, nil
}

// GetModelByID retrieves a model by ID
func GetModelByID(id uint) (*models.Model, error) {
	var model models.Model
	if err := database.DB.First(&model, id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// GetModelParameters returns a model's parameters in display order
func GetModelParameters(modelID uint) ([]models.ModelParameter, error) {
	var params []models.ModelParameter
	if err := database.DB.Where("model_id = ?", modelID).Order("ui_order asc").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

// GetModelPricing returns a model's pricing record, or nil when the
// model has never been priced.
func GetModelPricing(modelID uint) (*models.ModelPricing, error) {
	var pricing models.ModelPricing
	err := database.DB.Where("model_id = ?", modelID).First(&pricing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pricing, nil
}

// UpdateModelActive toggles whether a model is exposed to callers
func UpdateModelActive(id uint, active bool) error {
	result := database.DB.Model(&models.Model{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
