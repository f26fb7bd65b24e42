package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier() *Notifier {
	return NewNotifier(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func payload(t *testing.T, change domain.Change) *goredis.Message {
	t.Helper()
	data, err := json.Marshal(change)
	require.NoError(t, err)
	return &goredis.Message{Channel: eventChannel(change.EventID), Payload: string(data)}
}

func receive(t *testing.T, out <-chan domain.Change) (domain.Change, bool) {
	t.Helper()
	select {
	case c, ok := <-out:
		return c, ok
	case <-time.After(time.Second):
		t.Fatal("forward did not deliver in time")
		return domain.Change{}, false
	}
}

func TestForward_DecodesAndDropsMalformed(t *testing.T) {
	n := newTestNotifier()
	eventID := uuid.New()
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	msgs := make(chan *goredis.Message, 3)
	out := make(chan domain.Change, subscriberBuffer)

	msgs <- payload(t, domain.SeatChange(domain.ChangeSeatPurchased, domain.SeatRef{EventID: eventID, Row: 1, Col: 2}, at))
	msgs <- &goredis.Message{Channel: eventChannel(eventID), Payload: "{not json"}
	msgs <- payload(t, domain.SeatChange(domain.ChangeSeatReleased, domain.SeatRef{EventID: eventID, Row: 3, Col: 4}, at))
	close(msgs)

	go n.forward(context.Background(), eventID, msgs, out, func() {})

	first, ok := receive(t, out)
	require.True(t, ok)
	assert.Equal(t, domain.ChangeSeatPurchased, first.Kind)
	assert.Equal(t, 1, *first.Row)
	assert.Equal(t, 2, *first.Col)

	second, ok := receive(t, out)
	require.True(t, ok)
	assert.Equal(t, domain.ChangeSeatReleased, second.Kind)
	assert.Equal(t, 3, *second.Row)

	_, ok = receive(t, out)
	assert.False(t, ok, "out closes once the subscription channel closes")
}

func TestForward_ContextDoneStopsAndCloses(t *testing.T) {
	n := newTestNotifier()
	msgs := make(chan *goredis.Message)
	out := make(chan domain.Change, subscriberBuffer)
	var stopped atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	go n.forward(ctx, uuid.New(), msgs, out, func() { stopped.Add(1) })
	cancel()

	_, ok := receive(t, out)
	assert.False(t, ok)
	assert.Equal(t, int32(1), stopped.Load())
}

func TestForward_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	n := newTestNotifier()
	eventID := uuid.New()
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	msgs := make(chan *goredis.Message, 2)
	out := make(chan domain.Change, 1)

	msgs <- payload(t, domain.SeatChange(domain.ChangeSeatPurchased, domain.SeatRef{EventID: eventID, Row: 0, Col: 0}, at))
	msgs <- payload(t, domain.SeatChange(domain.ChangeSeatPurchased, domain.SeatRef{EventID: eventID, Row: 0, Col: 1}, at))
	close(msgs)

	done := make(chan struct{})
	go func() {
		n.forward(context.Background(), eventID, msgs, out, func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward blocked on a full subscriber")
	}
	first, ok := <-out
	require.True(t, ok)
	assert.Equal(t, 0, *first.Col)
	_, ok = <-out
	assert.False(t, ok)
}
