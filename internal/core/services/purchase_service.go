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

type PurchaseService struct {
	eventRepo  ports.EventRepository
	ticketRepo ports.TicketRepository
	cache      ports.SeatCache
	notifier   ports.ChangeNotifier
	publisher  ports.EventPublisher
	gateway    ports.PaymentGateway
	log        *slog.Logger
	now        func() time.Time
}

func NewPurchaseService(
	eventRepo ports.EventRepository,
	ticketRepo ports.TicketRepository,
	cache ports.SeatCache,
	notifier ports.ChangeNotifier,
	publisher ports.EventPublisher,
	gateway ports.PaymentGateway,
	logger *slog.Logger,
) *PurchaseService {
	return &PurchaseService{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		cache:      cache,
		notifier:   notifier,
		publisher:  publisher,
		gateway:    gateway,
		log:        logger,
		now:        time.Now,
	}
}

// InitiatePayment prices the seat and opens a payment intent for it. No seat
// or ticket state changes here; the seat is not held while the card is
// entered.
func (s *PurchaseService) InitiatePayment(ctx context.Context, caller domain.Caller, eventID uuid.UUID, row, col int) (*domain.PaymentIntent, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seat, err := event.PurchasableSeat(row, col)
	if err != nil {
		return nil, err
	}
	price, err := event.PriceFor(seat.Category)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, price, domain.PaymentMetadata(eventID, caller.UserID, row, col))
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// PayAndCommit confirms the intent with the processor and commits on success.
func (s *PurchaseService) PayAndCommit(ctx context.Context, caller domain.Caller, eventID uuid.UUID, row, col int, intentID, paymentMethod string) (*domain.Ticket, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	conf, err := s.gateway.Confirm(ctx, intentID, paymentMethod)
	if err != nil {
		return nil, err
	}
	return s.CommitPurchase(ctx, caller, eventID, row, col, *conf)
}

// CommitPurchase turns an authorized payment into a ticket. The seat is
// reserved by a conditional write, so of two buyers racing for one seat
// exactly one gets a ticket and the other gets ErrSeatUnavailable with the
// hold on their card voided. The payment must have been opened for this
// buyer, seat and price.
//
// A commit that stopped after the ticket write but before the capture
// settled can be retried with the same confirmation; the retry resumes at
// the capture.
func (s *PurchaseService) CommitPurchase(ctx context.Context, caller domain.Caller, eventID uuid.UUID, row, col int, conf domain.PaymentConfirmation) (*domain.Ticket, error) {
	started := s.now()
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	if err := conf.Err(); err != nil {
		monitoring.RecordPurchase(monitoring.OutcomeFailed, started)
		return nil, err
	}

	ticket, err := s.reserve(ctx, caller, eventID, row, col, conf)
	if errors.Is(err, domain.ErrSeatUnavailable) {
		if held := s.heldFor(ctx, caller, eventID, row, col, conf.IntentID); held != nil {
			s.log.Info("resuming purchase", "event_id", eventID, "ticket_id", held.ID)
			ticket, err = held, nil
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			monitoring.RecordPurchase(monitoring.OutcomeLost, started)
		} else {
			monitoring.RecordPurchase(monitoring.OutcomeFailed, started)
		}
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			s.void(ctx, conf.IntentID, eventID)
		}
		return nil, err
	}

	if err := s.settle(ctx, ticket, conf); err != nil {
		monitoring.RecordPurchase(monitoring.OutcomeFailed, started)
		return nil, err
	}

	monitoring.RecordPurchase(monitoring.OutcomeOK, started)
	s.log.Info("ticket purchased", "event_id", eventID, "user_id", caller.UserID, "row", row, "col", col)

	s.afterSeatWrite(ctx, domain.SeatChange(domain.ChangeSeatPurchased, ticket.SeatRef(), ticket.PurchaseDate))
	if err := s.publisher.TicketPurchased(ctx, ticket); err != nil {
		s.log.Warn("publish ticket.purchased failed", "ticket_id", ticket.ID, "error", err)
	}
	return ticket, nil
}

func (s *PurchaseService) reserve(ctx context.Context, caller domain.Caller, eventID uuid.UUID, row, col int, conf domain.PaymentConfirmation) (*domain.Ticket, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seat, err := event.PurchasableSeat(row, col)
	if err != nil {
		return nil, err
	}
	price, err := event.PriceFor(seat.Category)
	if err != nil {
		return nil, err
	}
	if err := conf.Covers(eventID, caller.UserID, row, col, price); err != nil {
		return nil, err
	}

	ticket := domain.NewTicket(caller.UserID, event, seat, price, conf.IntentID, s.now().UTC())
	if err := s.ticketRepo.Purchase(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// heldFor returns the caller's live ticket on the seat when it was written
// for this same intent by an earlier, unsettled commit.
func (s *PurchaseService) heldFor(ctx context.Context, caller domain.Caller, eventID uuid.UUID, row, col int, intentID string) *domain.Ticket {
	if intentID == "" {
		return nil
	}
	ticket, err := s.ticketRepo.GetByID(ctx, domain.TicketID(caller.UserID, eventID, row, col))
	if err != nil || !ticket.Available || ticket.PaymentRef != intentID {
		return nil
	}
	return ticket
}

// settle captures the hold behind a written ticket. A failed capture is
// checked against the processor before anything is undone. The hold is
// voided only once the ticket is gone.
func (s *PurchaseService) settle(ctx context.Context, ticket *domain.Ticket, conf domain.PaymentConfirmation) error {
	if conf.Outcome == domain.PaymentCaptured {
		return nil
	}
	captureErr := s.gateway.Capture(ctx, conf.IntentID)
	if captureErr == nil {
		return nil
	}

	state, err := s.gateway.Lookup(ctx, conf.IntentID)
	if err != nil {
		s.log.Error("capture outcome unknown, keeping ticket and hold", "ticket_id", ticket.ID, "intent_id", conf.IntentID, "capture_error", captureErr, "error", err)
		return fmt.Errorf("%w: capture %s: %w", domain.ErrPaymentProcessor, conf.IntentID, captureErr)
	}
	if state.Outcome == domain.PaymentCaptured {
		s.log.Warn("capture reported an error but settled", "ticket_id", ticket.ID, "intent_id", conf.IntentID, "error", captureErr)
		return nil
	}

	s.log.Error("capture failed, undoing purchase", "event_id", ticket.EventID, "ticket_id", ticket.ID, "error", captureErr)
	if err := s.ticketRepo.Cancel(ctx, ticket); err != nil {
		s.log.Error("undo purchase failed, keeping hold", "ticket_id", ticket.ID, "intent_id", conf.IntentID, "error", err)
		return fmt.Errorf("%w: undo purchase %s after failed capture: %w", domain.ErrStorageUnavailable, ticket.ID, err)
	}
	s.void(ctx, conf.IntentID, ticket.EventID)
	return fmt.Errorf("%w: capture: %w", domain.ErrPaymentProcessor, captureErr)
}

func (s *PurchaseService) void(ctx context.Context, intentID string, eventID uuid.UUID) {
	if intentID == "" {
		return
	}
	if err := s.gateway.Void(ctx, intentID); err != nil {
		s.log.Error("void payment hold failed", "event_id", eventID, "intent_id", intentID, "error", err)
	}
}

func (s *PurchaseService) afterSeatWrite(ctx context.Context, change domain.Change) {
	if err := s.cache.Invalidate(ctx, change.EventID); err != nil {
		s.log.Warn("seat cache invalidate failed", "event_id", change.EventID, "error", err)
	}
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.log.Warn("change notice failed", "event_id", change.EventID, "error", err)
	}
}

func (s *PurchaseService) ListTickets(ctx context.Context, caller domain.Caller) ([]domain.Ticket, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListByUser(ctx, caller.UserID)
}
