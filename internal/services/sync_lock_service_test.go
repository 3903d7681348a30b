package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncLock(t *testing.T) {
	mr := setupTestRedis()
	defer mr.Close()

	acquired, err := AcquireSyncLock()
	assert.NoError(t, err)
	assert.True(t, acquired)

	// Second acquisition is refused while the lock is held.
	acquired, err = AcquireSyncLock()
	assert.NoError(t, err)
	assert.False(t, acquired)

	running, err := IsSyncRunning()
	assert.NoError(t, err)
	assert.True(t, running)

	assert.NoError(t, ReleaseSyncLock())

	running, err = IsSyncRunning()
	assert.NoError(t, err)
	assert.False(t, running)

	acquired, err = AcquireSyncLock()
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestSyncLockExpires(t *testing.T) {
	mr := setupTestRedis()
	defer mr.Close()

	acquired, _ := AcquireSyncLock()
	assert.True(t, acquired)

	// A crashed run must not wedge the lock forever.
	mr.FastForward(syncLockTTL + time.Minute)

	acquired, err := AcquireSyncLock()
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestLastSyncResultRoundTrip(t *testing.T) {
	mr := setupTestRedis()
	defer mr.Close()

	// Nothing stored yet.
	result, err := GetLastSyncResult()
	assert.NoError(t, err)
	assert.Nil(t, result)

	stored := &SyncResult{
		ModelsAdded:    3,
		ModelsUpdated:  7,
		PricingUpdated: 10,
		Errors:         []SyncError{{Model: "acme/broken", Error: "boom"}},
		Duration:       42 * time.Second,
	}
	assert.NoError(t, StoreLastSyncResult(stored))

	result, err = GetLastSyncResult()
	assert.NoError(t, err)
	assert.Equal(t, stored, result)
}
