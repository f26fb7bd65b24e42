package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type cachedGrid struct {
	grid    domain.SeatGrid
	expires time.Time
}

// SeatCache is the in-process stand-in for the Redis grid cache.
type SeatCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]cachedGrid
	now   func() time.Time
}

func NewSeatCache() *SeatCache {
	return &SeatCache{items: make(map[uuid.UUID]cachedGrid), now: time.Now}
}

// Get returns nil without error on a miss.
func (c *SeatCache) Get(_ context.Context, eventID uuid.UUID) (*domain.SeatGrid, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[eventID]
	if !ok {
		return nil, nil
	}
	if !item.expires.IsZero() && c.now().After(item.expires) {
		delete(c.items, eventID)
		return nil, nil
	}
	grid := item.grid.Clone()
	return &grid, nil
}

func (c *SeatCache) Set(_ context.Context, eventID uuid.UUID, grid domain.SeatGrid, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := cachedGrid{grid: grid.Clone()}
	if ttl > 0 {
		item.expires = c.now().Add(ttl)
	}
	c.items[eventID] = item
	return nil
}

func (c *SeatCache) Invalidate(_ context.Context, eventID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, eventID)
	return nil
}
