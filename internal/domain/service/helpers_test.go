package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orgcore/notification-service/internal/domain/common/errorz"
	"github.com/orgcore/notification-service/pkg/logger/types"
)

func testLogger() *types.Logger {
	return &types.Logger{SugaredLogger: zap.NewNop().Sugar(), Name: "test"}
}

// fakeCountCache is an in-memory unread-count cache that records traffic.
type fakeCountCache struct {
	mu            sync.Mutex
	values        map[uuid.UUID]int64
	sets          []uuid.UUID
	invalidations []uuid.UUID
}

func newFakeCountCache() *fakeCountCache {
	return &fakeCountCache{values: make(map[uuid.UUID]int64)}
}

func (c *fakeCountCache) Get(_ context.Context, employeeID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.values[employeeID]
	if !ok {
		return 0, errorz.ErrNotFound
	}
	return count, nil
}

func (c *fakeCountCache) Set(_ context.Context, employeeID uuid.UUID, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[employeeID] = count
	c.sets = append(c.sets, employeeID)
}

func (c *fakeCountCache) Invalidate(_ context.Context, employeeID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, employeeID)
	c.invalidations = append(c.invalidations, employeeID)
}
