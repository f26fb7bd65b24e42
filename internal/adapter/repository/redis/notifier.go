package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

const subscriberBuffer = 16

func eventChannel(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s", eventID.String())
}

// Notifier fans changes out over Redis pub/sub so every API replica can push
// them to its own connected clients.
type Notifier struct {
	client goredis.UniversalClient
	log    *slog.Logger
}

func NewNotifier(client goredis.UniversalClient, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, log: logger}
}

func (n *Notifier) Publish(ctx context.Context, change domain.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := n.client.Publish(ctx, eventChannel(change.EventID), data).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (n *Notifier) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan domain.Change, func(), error) {
	pubsub := n.client.Subscribe(ctx, eventChannel(eventID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", eventID, err)
	}

	out := make(chan domain.Change, subscriberBuffer)
	var once sync.Once
	stop := func() {
		once.Do(func() { _ = pubsub.Close() })
	}

	go n.forward(ctx, eventID, pubsub.Channel(), out, stop)

	return out, stop, nil
}

// forward decodes pub/sub payloads onto out until msgs closes or ctx ends.
// Malformed payloads are dropped; a full out drops the change rather than
// stalling the Redis connection.
func (n *Notifier) forward(ctx context.Context, eventID uuid.UUID, msgs <-chan *goredis.Message, out chan<- domain.Change, stop func()) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var change domain.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				n.log.Warn("drop malformed change", "event_id", eventID, "error", err)
				continue
			}
			select {
			case out <- change:
			default:
			}
		}
	}
}
