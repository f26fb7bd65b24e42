package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
	"github.com/srgjo27/altair_ticket/internal/platform/monitoring"
)

type CellAssignment struct {
	Row      int             `json:"row"`
	Col      int             `json:"col"`
	Category domain.Category `json:"category"`
}

// PublishEventRequest is the organizer's whole setup session. It is replayed
// through an EventDraft so every setup rule runs server-side.
type PublishEventRequest struct {
	Details     domain.EventDetails
	Targets     map[domain.Category]int
	Prices      map[domain.Category]decimal.Decimal
	Assignments []CellAssignment
}

type SetupService struct {
	eventRepo ports.EventRepository
	notifier  ports.ChangeNotifier
	log       *slog.Logger
	now       func() time.Time
}

func NewSetupService(eventRepo ports.EventRepository, notifier ports.ChangeNotifier, logger *slog.Logger) *SetupService {
	return &SetupService{
		eventRepo: eventRepo,
		notifier:  notifier,
		log:       logger,
		now:       time.Now,
	}
}

// BuildDraft applies targets, prices and cell assignments in that order.
func BuildDraft(req PublishEventRequest) (domain.EventDraft, error) {
	draft := domain.NewEventDraft()
	var err error

	for c := range req.Targets {
		if !c.Valid() {
			return draft, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, c)
		}
	}
	for _, c := range domain.Categories {
		if draft, err = draft.SetTarget(c, req.Targets[c]); err != nil {
			return draft, err
		}
	}
	for c, p := range req.Prices {
		if draft, err = draft.SetPrice(c, p); err != nil {
			return draft, err
		}
	}
	for _, a := range req.Assignments {
		if draft, err = draft.AssignCategory(a.Row, a.Col, a.Category); err != nil {
			return draft, fmt.Errorf("cell %d-%d: %w", a.Row, a.Col, err)
		}
	}
	return draft, nil
}

func (s *SetupService) PublishEvent(ctx context.Context, caller domain.Caller, req PublishEventRequest) (*domain.Event, error) {
	if err := caller.RequireOrganizer(); err != nil {
		return nil, err
	}
	if req.Details.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}

	draft, err := BuildDraft(req)
	if err != nil {
		return nil, err
	}
	_, event, err := draft.Publish(uuid.New(), caller.UserID, req.Details, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("store event: %w", err)
	}
	monitoring.RecordPublish()
	s.log.Info("event published", "event_id", event.ID, "user_id", caller.UserID)

	change := domain.Change{EventID: event.ID, Kind: domain.ChangeEventPublished, At: event.CreatedAt}
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.log.Warn("change notice failed", "event_id", event.ID, "error", err)
	}
	return event, nil
}
