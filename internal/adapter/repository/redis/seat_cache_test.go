package redis_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/adapter/repository/redis"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatCache_RoundTrip(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db)
	ctx := context.Background()
	eventID := uuid.New()
	key := fmt.Sprintf("seats:%s", eventID.String())

	grid, err := domain.NewSeatGrid(2, 2).Reserve(1, 1, "alice")
	require.NoError(t, err)
	data, err := json.Marshal(grid)
	require.NoError(t, err)

	mockRedis.ExpectSet(key, data, time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(ctx, eventID, grid, time.Minute))

	mockRedis.ExpectGet(key).SetVal(string(data))
	got, err := cache.Get(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, grid, *got)

	mockRedis.ExpectDel(key).SetVal(1)
	require.NoError(t, cache.Invalidate(ctx, eventID))

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSeatCache_Miss(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db)
	eventID := uuid.New()

	mockRedis.ExpectGet(fmt.Sprintf("seats:%s", eventID.String())).RedisNil()

	got, err := cache.Get(context.Background(), eventID)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSeatCache_Errors(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	cache := redis.NewSeatCache(db)
	eventID := uuid.New()
	key := fmt.Sprintf("seats:%s", eventID.String())

	mockRedis.ExpectGet(key).SetErr(errors.New("connection refused"))
	_, err := cache.Get(context.Background(), eventID)
	assert.Error(t, err)

	mockRedis.ExpectGet(key).SetVal("not json")
	_, err = cache.Get(context.Background(), eventID)
	assert.Error(t, err)

	mockRedis.ExpectDel(key).SetErr(errors.New("connection refused"))
	assert.Error(t, cache.Invalidate(context.Background(), eventID))
}

func TestNotifier_Publish(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	n := redis.NewNotifier(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	eventID := uuid.New()
	change := domain.SeatChange(domain.ChangeSeatPurchased, domain.SeatRef{EventID: eventID, Row: 2, Col: 3},
		time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
	data, err := json.Marshal(change)
	require.NoError(t, err)

	mockRedis.ExpectPublish(fmt.Sprintf("event:%s", eventID.String()), data).SetVal(1)

	require.NoError(t, n.Publish(context.Background(), change))

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
