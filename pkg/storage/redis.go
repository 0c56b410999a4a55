package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klazomenai/landing-service/pkg/view"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for view snapshots
	viewKeyPrefix = "landing:view:"
	// Key for set of all mounted view IDs
	activeViewsKey = "landing:views:active"
)

// RedisStore keeps view snapshots in Redis with a TTL per view
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis storage client
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
	}, nil
}

// SaveView stores a snapshot and tracks it in the active set
func (s *RedisStore) SaveView(ctx context.Context, snap view.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	if err := s.client.Set(ctx, viewKeyPrefix+snap.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store view: %w", err)
	}

	if err := s.client.SAdd(ctx, activeViewsKey, snap.ID).Err(); err != nil {
		return fmt.Errorf("failed to track view: %w", err)
	}

	return nil
}

// GetView loads a snapshot, returning nil when the view is unknown or expired
func (s *RedisStore) GetView(ctx context.Context, id string) (*view.Snapshot, error) {
	data, err := s.client.Get(ctx, viewKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view: %w", err)
	}

	var snap view.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal view: %w", err)
	}

	return &snap, nil
}

// DeleteView removes a snapshot and its active-set entry
func (s *RedisStore) DeleteView(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, viewKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}

	if err := s.client.SRem(ctx, activeViewsKey, id).Err(); err != nil {
		return fmt.Errorf("failed to untrack view: %w", err)
	}

	return nil
}

// ActiveViews counts tracked views
func (s *RedisStore) ActiveViews(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, activeViewsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count views: %w", err)
	}
	return int(n), nil
}

// PurgeExpired drops active-set members whose snapshot key has expired.
// Redis expires the snapshots themselves.
func (s *RedisStore) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := s.client.SMembers(ctx, activeViewsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list views: %w", err)
	}

	purged := 0
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, viewKeyPrefix+id).Result()
		if err != nil {
			return purged, fmt.Errorf("failed to check view %s: %w", id, err)
		}
		if exists > 0 {
			continue
		}
		if err := s.client.SRem(ctx, activeViewsKey, id).Err(); err != nil {
			return purged, fmt.Errorf("failed to untrack view %s: %w", id, err)
		}
		purged++
	}

	return purged, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Health checks Redis connection health
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
