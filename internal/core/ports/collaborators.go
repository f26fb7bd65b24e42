package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type SeatCache interface {
	Get(ctx context.Context, eventID uuid.UUID) (*domain.SeatGrid, error)
	Set(ctx context.Context, eventID uuid.UUID, grid domain.SeatGrid, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID uuid.UUID) error
}

type ChangeNotifier interface {
	Publish(ctx context.Context, change domain.Change) error
	// Subscribe streams changes for one event until ctx is done or the
	// returned cancel func is called.
	Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan domain.Change, func(), error)
}

type EventPublisher interface {
	TicketPurchased(ctx context.Context, ticket *domain.Ticket) error
	TicketCancelled(ctx context.Context, ticket *domain.Ticket) error
	EventCancelled(ctx context.Context, result *domain.CascadeResult) error
}

// PaymentGateway authorizes first and captures only once the seat is ours,
// so a lost reservation race can void the hold instead of refunding.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, metadata map[string]string) (*domain.PaymentIntent, error)
	Confirm(ctx context.Context, intentID, paymentMethod string) (*domain.PaymentConfirmation, error)
	Capture(ctx context.Context, intentID string) error
	Void(ctx context.Context, intentID string) error
	// Lookup reads the intent's current state without changing it.
	Lookup(ctx context.Context, intentID string) (*domain.PaymentConfirmation, error)
}
