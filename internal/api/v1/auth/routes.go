package auth

import (
	"modelhub-backend/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config) {
	handler, err := NewHandler(cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize auth handler", zap.Error(err))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", handler.Login)
	}
}
