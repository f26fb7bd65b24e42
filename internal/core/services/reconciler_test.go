package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/altair_ticket/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSweep_ReleasesOrphanedSeats(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.buy(t, alice, 0, 0)

	// seat taken with no ticket behind it, as a crashed non-transactional
	// cancel would leave it
	w.store.PutRawSeat(w.event.ID, domain.Seat{Row: 1, Col: 1, Category: domain.CategoryOro, PurchasedBy: "ghost"})

	n, err := w.reconcile.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, w.seat(t, 1, 1).IsAvailable)
	assert.False(t, w.seat(t, 0, 0).IsAvailable)
	w.assertSeatsMatchTickets(t, alice)

	n, err = w.reconcile.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweep_SkipsCancelledEvents(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.store.PutRawSeat(w.event.ID, domain.Seat{Row: 1, Col: 1, Category: domain.CategoryOro, PurchasedBy: "ghost"})
	_, err := w.cancel.CancelEvent(ctx, organizer, w.event.ID)
	require.NoError(t, err)

	n, err := w.reconcile.Sweep(ctx)

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	cache := mocks.NewSeatCache(t)
	notifier := mocks.NewChangeNotifier(t)
	r := services.NewReconciler(tickets, cache, notifier, time.Minute, discardLogger())
	ctx := context.Background()

	ev := publishedEvent(t)
	bad := domain.SeatRef{EventID: ev.ID, Row: 0, Col: 0}
	good := domain.SeatRef{EventID: ev.ID, Row: 0, Col: 1}

	tickets.On("FindOrphanedSeats", ctx).Return([]domain.SeatRef{bad, good}, nil)
	tickets.On("ReleaseOrphanedSeat", ctx, bad).Return(domain.ErrStorageUnavailable)
	tickets.On("ReleaseOrphanedSeat", ctx, good).Return(nil)
	notifier.On("Publish", ctx, mock.Anything).Return(nil).Once()
	cache.On("Invalidate", ctx, ev.ID).Return(nil).Once()

	n, err := r.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSweep_FindFailure(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	r := services.NewReconciler(tickets, mocks.NewSeatCache(t), mocks.NewChangeNotifier(t), time.Minute, discardLogger())

	tickets.On("FindOrphanedSeats", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := r.Sweep(context.Background())
	assert.Error(t, err)
}

func TestRunBackgroundCleanup_StopsWithContext(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	tickets.On("FindOrphanedSeats", mock.Anything).Return(nil, nil).Maybe()
	r := services.NewReconciler(tickets, mocks.NewSeatCache(t), mocks.NewChangeNotifier(t), 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.RunBackgroundCleanup(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
