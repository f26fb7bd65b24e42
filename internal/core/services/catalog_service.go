package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
	"github.com/srgjo27/altair_ticket/internal/platform/monitoring"
)

// CatalogService serves the read side: event lists, seat grids and change
// subscriptions.
type CatalogService struct {
	eventRepo ports.EventRepository
	cache     ports.SeatCache
	notifier  ports.ChangeNotifier
	cacheTTL  time.Duration
	log       *slog.Logger
}

func NewCatalogService(eventRepo ports.EventRepository, cache ports.SeatCache, notifier ports.ChangeNotifier, cacheTTL time.Duration, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		eventRepo: eventRepo,
		cache:     cache,
		notifier:  notifier,
		cacheTTL:  cacheTTL,
		log:       logger,
	}
}

func (s *CatalogService) ListEvents(ctx context.Context, onlyAvailable bool) ([]domain.Event, error) {
	return s.eventRepo.List(ctx, onlyAvailable)
}

func (s *CatalogService) GetEvent(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// Seats returns the event's grid, from cache when warm. Cache failures
// degrade to a storage read.
func (s *CatalogService) Seats(ctx context.Context, eventID uuid.UUID) (*domain.SeatGrid, error) {
	grid, err := s.cache.Get(ctx, eventID)
	if err != nil {
		s.log.Warn("seat cache read failed", "event_id", eventID, "error", err)
	}
	if grid != nil {
		monitoring.RecordCacheLookup(true)
		return grid, nil
	}
	monitoring.RecordCacheLookup(false)

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, eventID, event.Seats, s.cacheTTL); err != nil {
		s.log.Warn("seat cache write failed", "event_id", eventID, "error", err)
		return &event.Seats, nil
	}

	// A purchase may have invalidated the key between our read and the Set.
	// Re-read and drop the entry if it no longer matches storage.
	fresh, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.invalidate(ctx, eventID)
		return &event.Seats, nil
	}
	if !fresh.Seats.Equal(event.Seats) {
		s.invalidate(ctx, eventID)
	}
	return &fresh.Seats, nil
}

func (s *CatalogService) invalidate(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("seat cache invalidate failed", "event_id", eventID, "error", err)
	}
}

// Watch subscribes to changes of an existing event.
func (s *CatalogService) Watch(ctx context.Context, eventID uuid.UUID) (<-chan domain.Change, func(), error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, nil, err
	}
	return s.notifier.Subscribe(ctx, eventID)
}
