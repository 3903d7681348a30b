package sync

import (
	"context"
	"errors"
	"net/http"

	"modelhub-backend/config"
	"modelhub-backend/internal/services"
	"modelhub-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

// TriggerSync starts one catalog sync pass in the background. A pass
// can take minutes against a large catalog, so the request returns 202
// immediately; progress is observable via the status endpoint.
func (h *Handler) TriggerSync(c *gin.Context) {
	running, err := services.IsSyncRunning()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check sync status"))
		return
	}
	if running {
		c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "A sync pass is already running"))
		return
	}

	go func() {
		result, err := services.RunSyncPass(context.Background(), h.cfg)
		if err != nil {
			if errors.Is(err, services.ErrSyncInProgress) {
				zap.L().Info("sync pass skipped, another run took the lock first")
				return
			}
			zap.L().Error("sync pass failed", zap.Error(err))
			return
		}
		zap.L().Info("sync pass completed",
			zap.Int("models_added", result.ModelsAdded),
			zap.Int("models_updated", result.ModelsUpdated),
			zap.Int("errors", len(result.Errors)))
	}()

	c.JSON(http.StatusAccepted, utils.NewSuccessResponse("Sync started", TriggerSyncResponse{
		Message: "Catalog sync started",
	}))
}

// GetSyncStatus reports whether a pass is running and the outcome of
// the most recent completed pass.
func (h *Handler) GetSyncStatus(c *gin.Context) {
	running, err := services.IsSyncRunning()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check sync status"))
		return
	}

	lastResult, err := services.GetLastSyncResult()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch last sync result"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", SyncStatusResponse{
		Running:    running,
		LastResult: lastResult,
	}))
}
