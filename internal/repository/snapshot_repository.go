package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

// SnapshotRepository keeps the hot Redis copy of each gradebook document.
type SnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotRepository constructs a snapshot repository. A zero TTL keeps
// snapshots until explicitly replaced or deleted.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{client: client, ttl: ttl, logger: logger}
}

func snapshotKey(ownerID string) string {
	return "gradebook:" + ownerID
}

// Get returns the snapshot for the owner, or ErrCacheMiss when absent.
func (r *SnapshotRepository) Get(ctx context.Context, ownerID string) (models.Collection, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, snapshotKey(ownerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", snapshotKey(ownerID), err)
	}
	var collection models.Collection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snapshotKey(ownerID), err)
	}
	return collection, nil
}

// Set replaces the owner's snapshot.
func (r *SnapshotRepository) Set(ctx context.Context, ownerID string, collection models.Collection) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snapshotKey(ownerID), err)
	}
	if err := r.client.Set(ctx, snapshotKey(ownerID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", snapshotKey(ownerID), err)
	}
	return nil
}

// Delete drops the owner's snapshot.
func (r *SnapshotRepository) Delete(ctx context.Context, ownerID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, snapshotKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", snapshotKey(ownerID), err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *SnapshotRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
