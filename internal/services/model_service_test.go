package services

import (
	"testing"

	"modelhub-backend/internal/database"
	"modelhub-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedCatalog() []models.Model {
	catalog := []models.Model{
		{EndpointID: "acme/flux-dev", Name: "flux-dev", DisplayName: "Flux Dev", TaskType: models.TaskTypeImage, IsActive: true},
		{EndpointID: "acme/text-gen", Name: "text-gen", DisplayName: "Text Gen", TaskType: models.TaskTypeText, IsActive: true},
		{EndpointID: "acme/old-video", Name: "old-video", DisplayName: "Old Video", TaskType: models.TaskTypeVideo, IsActive: false},
	}
	database.DB.Create(&catalog)
	return catalog
}

func TestFindModels(t *testing.T) {
	setupTestDB()
	seedCatalog()

	all, total, err := FindModels(ModelFilter{Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	byType, total, err := FindModels(ModelFilter{Page: 1, Limit: 10, TaskType: "IMAGE"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "acme/flux-dev", byType[0].EndpointID)

	active := true
	onlyActive, total, err := FindModels(ModelFilter{Page: 1, Limit: 10, Active: &active})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, onlyActive, 2)

	byName, total, err := FindModels(ModelFilter{Page: 1, Limit: 10, Name: "text"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "text-gen", byName[0].Name)
}

func TestFindModelsPagination(t *testing.T) {
	setupTestDB()
	seedCatalog()

	page1, total, err := FindModels(ModelFilter{Page: 1, Limit: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page1, 2)

	page2, _, err := FindModels(ModelFilter{Page: 2, Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestGetModelParametersOrdered(t *testing.T) {
	setupTestDB()
	seeded := seedCatalog()

	database.DB.Create(&[]models.ModelParameter{
		{ModelID: seeded[0].ID, Name: "steps", Type: "number", UIOrder: 1},
		{ModelID: seeded[0].ID, Name: "prompt", Type: "string", UIOrder: 0},
	})

	params, err := GetModelParameters(seeded[0].ID)
	assert.NoError(t, err)
	assert.Len(t, params, 2)
	assert.Equal(t, "prompt", params[0].Name)
	assert.Equal(t, "steps", params[1].Name)
}

func TestGetModelPricingMissing(t *testing.T) {
	setupTestDB()
	seeded := seedCatalog()

	pricing, err := GetModelPricing(seeded[0].ID)
	assert.NoError(t, err)
	assert.Nil(t, pricing)
}

func TestUpdateModelActive(t *testing.T) {
	setupTestDB()
	seeded := seedCatalog()

	assert.NoError(t, UpdateModelActive(seeded[0].ID, false))

	model, err := GetModelByID(seeded[0].ID)
	assert.NoError(t, err)
	assert.False(t, model.IsActive)

	err = UpdateModelActive(99999, true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
