package services

import (
	"encoding/json"
	"errors"
	"time"

	"modelhub-backend/internal/database"

	"github.com/go-redis/redis/v8"
)

const (
	syncLockKey       = "sync:lock"
	syncLastResultKey = "sync:last_result"

	// A pass over a few hundred models finishes well inside this; the
	// TTL only exists so a crashed run cannot wedge the lock forever.
	syncLockTTL = 30 * time.Minute
)

// AcquireSyncLock takes the single-run lock. Returns false when a pass
// is already running.
func AcquireSyncLock() (bool, error) {
	return database.RedisClient.SetNX(database.Ctx, syncLockKey, 1, syncLockTTL).Result()
}

func ReleaseSyncLock() error {
	return database.RedisClient.Del(database.Ctx, syncLockKey).Err()
}

func IsSyncRunning() (bool, error) {
	n, err := database.RedisClient.Exists(database.Ctx, syncLockKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StoreLastSyncResult keeps the most recent pass result for the status
// endpoint. Only the latest result is retained.
func StoreLastSyncResult(result *SyncResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(database.Ctx, syncLastResultKey, payload, 0).Err()
}

func GetLastSyncResult() (*SyncResult, error) {
	payload, err := database.RedisClient.Get(database.Ctx, syncLastResultKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) { // no pass has completed yet
			return nil, nil
		}
		return nil, err
	}

	var result SyncResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
