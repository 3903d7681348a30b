package api

import (
	"modelhub-backend/config"
	"modelhub-backend/internal/api/v1/ai_model"
	adminModel "modelhub-backend/internal/api/v1/admin/model"
	adminSync "modelhub-backend/internal/api/v1/admin/sync"
	"modelhub-backend/internal/api/v1/auth"
	"modelhub-backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1, cfg)
		ai_model.RegisterRoutes(v1)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(cfg.JWTSecret))
		{
			adminSync.RegisterRoutes(admin, cfg)
			adminModel.RegisterRoutes(admin, cfg)
		}
	}

	return router
}
