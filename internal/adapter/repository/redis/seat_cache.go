package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

func seatKey(eventID uuid.UUID) string {
	return fmt.Sprintf("seats:%s", eventID.String())
}

// SeatCache stores each event's grid as one JSON value under seats:<id>.
type SeatCache struct {
	client goredis.UniversalClient
}

func NewSeatCache(client goredis.UniversalClient) *SeatCache {
	return &SeatCache{client: client}
}

func (c *SeatCache) Get(ctx context.Context, eventID uuid.UUID) (*domain.SeatGrid, error) {
	data, err := c.client.Get(ctx, seatKey(eventID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached seats: %w", err)
	}

	var grid domain.SeatGrid
	if err := json.Unmarshal(data, &grid); err != nil {
		return nil, fmt.Errorf("decode cached seats: %w", err)
	}
	return &grid, nil
}

func (c *SeatCache) Set(ctx context.Context, eventID uuid.UUID, grid domain.SeatGrid, ttl time.Duration) error {
	data, err := json.Marshal(grid)
	if err != nil {
		return fmt.Errorf("encode seats: %w", err)
	}
	if err := c.client.Set(ctx, seatKey(eventID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache seats: %w", err)
	}
	return nil
}

func (c *SeatCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	if err := c.client.Del(ctx, seatKey(eventID)).Err(); err != nil {
		return fmt.Errorf("invalidate seats: %w", err)
	}
	return nil
}
