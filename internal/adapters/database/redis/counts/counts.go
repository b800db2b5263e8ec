package counts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 30 * time.Second

// Storage caches per-employee unread counts. Entries expire quickly and
// every mutation invalidates, so a stale value only survives a TTL window.
type Storage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStorage(rdb *redis.Client) *Storage {
	return &Storage{
		redis: rdb,
		ttl:   defaultTTL,
	}
}

// Get returns the cached count; redis.Nil signals a miss.
func (s *Storage) Get(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	return s.redis.Get(ctx, key(employeeID)).Int64()
}

// Set stores the count, best effort.
func (s *Storage) Set(ctx context.Context, employeeID uuid.UUID, count int64) {
	s.redis.Set(ctx, key(employeeID), count, s.ttl)
}

// Invalidate drops the cached count, best effort.
func (s *Storage) Invalidate(ctx context.Context, employeeID uuid.UUID) {
	s.redis.Del(ctx, key(employeeID))
}

func key(employeeID uuid.UUID) string {
	return fmt.Sprintf("unread:%s", employeeID)
}
