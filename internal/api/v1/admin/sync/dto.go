package sync

import "modelhub-backend/internal/services"

type TriggerSyncResponse struct {
	Message string `json:"message"`
}

type SyncStatusResponse struct {
	Running    bool                 `json:"running"`
	LastResult *services.SyncResult `json:"last_result"`
}
