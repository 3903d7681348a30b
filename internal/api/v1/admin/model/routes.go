package model

import (
	"modelhub-backend/config"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config) {
	handler := NewHandler(cfg)

	modelGroup := router.Group("/models")
	{
		modelGroup.PATCH("/:id/status", handler.UpdateModelStatus)
		modelGroup.POST("/:id/estimate", handler.EstimateModelCost)
	}
}
