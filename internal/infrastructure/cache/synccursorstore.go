package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const syncCursorKeyPrefix = "sync:cursor:"

// SyncCursorStore persists per-project sync cursors in Redis.
type SyncCursorStore struct {
	client *redis.Client
}

// NewSyncCursorStore creates a new SyncCursorStore instance.
func NewSyncCursorStore(client *redis.Client) *SyncCursorStore {
	return &SyncCursorStore{client: client}
}

// Get returns the cursor for a project, "" when none is stored.
func (s *SyncCursorStore) Get(ctx context.Context, projectKey string) (string, error) {
	val, err := s.client.Get(ctx, syncCursorKeyPrefix+projectKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get sync cursor for %s: %w", projectKey, err)
	}
	return val, nil
}

// Set replaces the cursor for a project. Cursors have no expiry.
func (s *SyncCursorStore) Set(ctx context.Context, projectKey, issueKey string) error {
	if err := s.client.Set(ctx, syncCursorKeyPrefix+projectKey, issueKey, 0).Err(); err != nil {
		return fmt.Errorf("failed to save sync cursor for %s: %w", projectKey, err)
	}
	return nil
}
