package ai_model_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"modelhub-backend/internal/api/v1/ai_model"
	"modelhub-backend/internal/database"
	"modelhub-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.Model{}, &models.ModelParameter{}, &models.ModelPricing{})
	err = db.AutoMigrate(&models.Model{}, &models.ModelParameter{}, &models.ModelPricing{})
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/api/v1")
	ai_model.RegisterRoutes(v1)
	return router
}

func TestGetModels(t *testing.T) {
	setupTestDB()
	router := setupRouter()

	catalog := []models.Model{
		{EndpointID: "acme/txt2img", Provider: "acme", Name: "txt2img", DisplayName: "Text to Image", TaskType: models.TaskTypeImage, IsActive: true},
		{EndpointID: "acme/img2vid", Provider: "acme", Name: "img2vid", DisplayName: "Image to Video", TaskType: models.TaskTypeVideo, IsActive: true},
		{EndpointID: "acme/retired", Provider: "acme", Name: "retired", TaskType: models.TaskTypeText, IsActive: false},
	}
	database.DB.Create(&catalog)

	tests := []struct {
		name        string
		queryParams string
		wantStatus  int
		wantTotal   int64
	}{
		{
			name:        "Lists only active models",
			queryParams: "",
			wantStatus:  http.StatusOK,
			wantTotal:   2,
		},
		{
			name:        "Filters by task type",
			queryParams: "?task_type=VIDEO",
			wantStatus:  http.StatusOK,
			wantTotal:   1,
		},
		{
			name:        "Filters by name",
			queryParams: "?name=Text to Image",
			wantStatus:  http.StatusOK,
			wantTotal:   1,
		},
		{
			name:        "Status all includes retired models",
			queryParams: "?status=all",
			wantStatus:  http.StatusOK,
			wantTotal:   3,
		},
		{
			name:        "Rejects unknown status filter",
			queryParams: "?status=open",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "Rejects invalid page",
			queryParams: "?page=0",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "Rejects invalid limit",
			queryParams: "?limit=abc",
			wantStatus:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/api/v1/models"+tt.queryParams, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Status int                        `json:"status"`
				Data   ai_model.ModelListResponse `json:"data"`
			}
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			assert.NoError(t, err)
			assert.Equal(t, 200, resp.Status)
			assert.Equal(t, tt.wantTotal, resp.Data.Total)
		})
	}
}

func TestGetModel(t *testing.T) {
	setupTestDB()
	router := setupRouter()

	model := models.Model{
		EndpointID:  "acme/txt2img",
		Provider:    "acme",
		Name:        "txt2img",
		DisplayName: "Text to Image",
		TaskType:    models.TaskTypeImage,
		IsActive:    true,
	}
	database.DB.Create(&model)
	database.DB.Create(&[]models.ModelParameter{
		{ModelID: model.ID, Name: "steps", Type: "number", UILabel: "Steps", UIOrder: 1, UIGroup: "general"},
		{ModelID: model.ID, Name: "prompt", Type: "string", Required: true, UILabel: "Prompt", UIOrder: 0, UIGroup: "general"},
	})
	database.DB.Create(&models.ModelPricing{
		ModelID:      model.ID,
		PricePerCall: 0.002,
		PricingType:  models.PricingTypeFixed,
		CreditCost:   2,
	})

	t.Run("Returns parameters in display order with pricing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/models/%d", model.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data ai_model.ModelDetailResponse `json:"data"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, "acme/txt2img", resp.Data.EndpointID)
		if assert.Len(t, resp.Data.Parameters, 2) {
			assert.Equal(t, "prompt", resp.Data.Parameters[0].Name)
			assert.Equal(t, "steps", resp.Data.Parameters[1].Name)
		}
		if assert.NotNil(t, resp.Data.Pricing) {
			assert.Equal(t, 2, resp.Data.Pricing.CreditCost)
		}
	})

	t.Run("Unknown model returns 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/models/99999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid id returns 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/models/not-a-number", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
