package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, onlyAvailable bool) ([]domain.Event, error)
	// CancelCascade flags the event, voids all its tickets and appends alert
	// once to every distinct ticket holder, all or nothing.
	CancelCascade(ctx context.Context, eventID uuid.UUID, alert string) (*domain.CascadeResult, error)
}

type TicketRepository interface {
	// Purchase reserves the ticket's seat only if it is still available and
	// stores the ticket in the same write.
	Purchase(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
	// Cancel releases the seat and deletes the ticket together.
	Cancel(ctx context.Context, ticket *domain.Ticket) error
	FindOrphanedSeats(ctx context.Context) ([]domain.SeatRef, error)
	ReleaseOrphanedSeat(ctx context.Context, ref domain.SeatRef) error
}

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	RemoveAlert(ctx context.Context, userID string, index int) error
	ClearAlerts(ctx context.Context, userID string) error
}
