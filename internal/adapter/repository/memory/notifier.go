package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

const subscriberBuffer = 16

// Notifier fans changes out to in-process subscribers. Slow subscribers
// miss notices instead of blocking writers; a missed notice only means a
// client re-reads the grid later than it could have.
type Notifier struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan domain.Change]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uuid.UUID]map[chan domain.Change]struct{})}
}

func (n *Notifier) Publish(_ context.Context, change domain.Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[change.EventID] {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (n *Notifier) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan domain.Change, func(), error) {
	ch := make(chan domain.Change, subscriberBuffer)

	n.mu.Lock()
	if n.subs[eventID] == nil {
		n.subs[eventID] = make(map[chan domain.Change]struct{})
	}
	n.subs[eventID][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[eventID], ch)
			if len(n.subs[eventID]) == 0 {
				delete(n.subs, eventID)
			}
			n.mu.Unlock()
			close(ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}
