package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
	"github.com/srgjo27/altair_ticket/internal/platform/monitoring"
)

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

type CancellationService struct {
	eventRepo  ports.EventRepository
	ticketRepo ports.TicketRepository
	cache      ports.SeatCache
	notifier   ports.ChangeNotifier
	publisher  ports.EventPublisher
	retry      RetryPolicy
	log        *slog.Logger
	now        func() time.Time
}

func NewCancellationService(
	eventRepo ports.EventRepository,
	ticketRepo ports.TicketRepository,
	cache ports.SeatCache,
	notifier ports.ChangeNotifier,
	publisher ports.EventPublisher,
	retry RetryPolicy,
	logger *slog.Logger,
) *CancellationService {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &CancellationService{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		cache:      cache,
		notifier:   notifier,
		publisher:  publisher,
		retry:      retry,
		log:        logger,
		now:        time.Now,
	}
}

// CancelEvent voids the event, soft-invalidates every ticket and alerts each
// distinct holder once. The batch is all or nothing, so a storage failure is
// retried from the pre-cancellation state.
func (s *CancellationService) CancelEvent(ctx context.Context, caller domain.Caller, eventID uuid.UUID) (*domain.CascadeResult, error) {
	if err := caller.RequireOrganizer(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != caller.UserID {
		return nil, fmt.Errorf("%w: event %s belongs to another organizer", domain.ErrForbidden, eventID)
	}
	if !event.EventAvailable {
		return nil, fmt.Errorf("%w: event %s is already cancelled", domain.ErrInvalidTransition, eventID)
	}

	result, err := s.cascade(ctx, eventID, domain.CancellationAlert(event.Name))
	if err != nil {
		monitoring.RecordCancellation("event", monitoring.OutcomeFailed)
		return nil, err
	}
	monitoring.RecordCancellation("event", monitoring.OutcomeOK)
	s.log.Info("event cancelled", "event_id", eventID, "tickets_voided", result.TicketsVoided, "users_notified", len(result.UsersNotified))

	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("seat cache invalidate failed", "event_id", eventID, "error", err)
	}
	change := domain.Change{EventID: eventID, Kind: domain.ChangeEventCancelled, At: s.now().UTC()}
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.log.Warn("change notice failed", "event_id", eventID, "error", err)
	}
	if err := s.publisher.EventCancelled(ctx, result); err != nil {
		s.log.Warn("publish event.cancelled failed", "event_id", eventID, "error", err)
	}
	return result, nil
}

func (s *CancellationService) cascade(ctx context.Context, eventID uuid.UUID, alert string) (*domain.CascadeResult, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		monitoring.RecordCascadeAttempt()
		result, err := s.eventRepo.CancelCascade(ctx, eventID, alert)
		if err == nil {
			return result, nil
		}

		// A commit whose acknowledgement was lost shows up on the next
		// attempt as an already cancelled event.
		if attempt > 1 && errors.Is(err, domain.ErrInvalidTransition) {
			s.log.Warn("earlier cascade attempt committed", "event_id", eventID, "attempt", attempt)
			return &domain.CascadeResult{EventID: eventID, UsersNotified: []string{}}, nil
		}
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			return nil, err
		}

		lastErr = err
		if attempt == s.retry.MaxAttempts {
			break
		}
		s.log.Warn("cascade failed, retrying", "event_id", eventID, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, ctx.Err())
		case <-time.After(s.retry.Backoff * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("cancel event after %d attempts: %w", s.retry.MaxAttempts, lastErr)
}

// CancelTicket frees the seat and removes the ticket. Only the holder may do
// it, and only while the event is live.
func (s *CancellationService) CancelTicket(ctx context.Context, caller domain.Caller, ticketID string) error {
	if err := caller.RequireUser(); err != nil {
		return err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != caller.UserID {
		return fmt.Errorf("%w: ticket %s belongs to another user", domain.ErrForbidden, ticketID)
	}
	if !ticket.Available {
		return fmt.Errorf("%w: ticket %s was voided by an event cancellation", domain.ErrInvalidTransition, ticketID)
	}

	if err := s.ticketRepo.Cancel(ctx, ticket); err != nil {
		monitoring.RecordCancellation("ticket", monitoring.OutcomeFailed)
		return err
	}
	monitoring.RecordCancellation("ticket", monitoring.OutcomeOK)
	s.log.Info("ticket cancelled", "ticket_id", ticketID, "user_id", caller.UserID, "event_id", ticket.EventID)

	if err := s.cache.Invalidate(ctx, ticket.EventID); err != nil {
		s.log.Warn("seat cache invalidate failed", "event_id", ticket.EventID, "error", err)
	}
	if err := s.notifier.Publish(ctx, domain.SeatChange(domain.ChangeSeatReleased, ticket.SeatRef(), s.now().UTC())); err != nil {
		s.log.Warn("change notice failed", "event_id", ticket.EventID, "error", err)
	}
	if err := s.publisher.TicketCancelled(ctx, ticket); err != nil {
		s.log.Warn("publish ticket.cancelled failed", "ticket_id", ticketID, "error", err)
	}
	return nil
}
