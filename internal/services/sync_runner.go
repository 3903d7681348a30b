package services

import (
	"context"
	"errors"

	"modelhub-backend/config"
	"modelhub-backend/internal/provider"

	"go.uber.org/zap"
)

// ErrSyncInProgress means another pass holds the run lock.
var ErrSyncInProgress = errors.New("a sync pass is already running")

// RunSyncPass is the entry point shared by the CLI and the admin API:
// it takes the single-run lock, executes one pass against a freshly
// constructed client, and records the result for the status endpoint.
func RunSyncPass(ctx context.Context, cfg *config.Config) (*SyncResult, error) {
	acquired, err := AcquireSyncLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSyncInProgress
	}
	defer func() {
		if err := ReleaseSyncLock(); err != nil {
			zap.L().Warn("failed to release sync lock", zap.Error(err))
		}
	}()

	client := provider.NewClient(cfg)
	result, err := SyncCatalog(ctx, client, SyncOptions{DefaultCreditRate: cfg.DefaultCreditRate})
	if err != nil {
		return nil, err
	}

	if err := StoreLastSyncResult(result); err != nil {
		zap.L().Warn("failed to store sync result", zap.Error(err))
	}
	return result, nil
}
