package sync

import (
	"modelhub-backend/config"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, cfg *config.Config) {
	handler := NewHandler(cfg)

	syncGroup := router.Group("/sync")
	{
		syncGroup.POST("", handler.TriggerSync)
		syncGroup.GET("/status", handler.GetSyncStatus)
	}
}
