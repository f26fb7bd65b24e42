package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
	"github.com/srgjo27/altair_ticket/internal/platform/monitoring"
)

// Reconciler releases seats that are marked taken on a live event but have
// no ticket behind them.
type Reconciler struct {
	ticketRepo ports.TicketRepository
	cache      ports.SeatCache
	notifier   ports.ChangeNotifier
	interval   time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func NewReconciler(ticketRepo ports.TicketRepository, cache ports.SeatCache, notifier ports.ChangeNotifier, interval time.Duration, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		ticketRepo: ticketRepo,
		cache:      cache,
		notifier:   notifier,
		interval:   interval,
		log:        logger,
		now:        time.Now,
	}
}

// RunBackgroundCleanup runs Sweep every interval until ctx is done.
func (r *Reconciler) RunBackgroundCleanup(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			if _, err := r.Sweep(ctx); err != nil {
				r.log.Error("seat reconciliation failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	r.log.Info("background worker started", "interval", r.interval.String())
	scheduler.Start()

	<-ctx.Done()
	if err := scheduler.Shutdown(); err != nil {
		r.log.Warn("scheduler shutdown", "error", err)
	}
	r.log.Info("background worker stopped")
	return nil
}

// Sweep releases every orphaned seat it finds and returns how many it freed.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	refs, err := r.ticketRepo.FindOrphanedSeats(ctx)
	if err != nil {
		return 0, fmt.Errorf("find orphaned seats: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}
	r.log.Info("orphaned seats found", "count", len(refs))

	released := 0
	touched := make(map[uuid.UUID]struct{})
	for _, ref := range refs {
		if err := r.ticketRepo.ReleaseOrphanedSeat(ctx, ref); err != nil {
			r.log.Error("release orphaned seat failed", "event_id", ref.EventID, "row", ref.Row, "col", ref.Col, "error", err)
			continue
		}
		released++
		touched[ref.EventID] = struct{}{}
		if err := r.notifier.Publish(ctx, domain.SeatChange(domain.ChangeSeatReleased, ref, r.now().UTC())); err != nil {
			r.log.Warn("change notice failed", "event_id", ref.EventID, "error", err)
		}
	}
	for id := range touched {
		if err := r.cache.Invalidate(ctx, id); err != nil {
			r.log.Warn("seat cache invalidate failed", "event_id", id, "error", err)
		}
	}
	monitoring.RecordReconciled(released)
	return released, nil
}
