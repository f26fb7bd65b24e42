package services_test

import (
	"context"
	"testing"

	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/altair_ticket/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelEvent_CascadeAlertsEachHolderOnce(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	for _, u := range []domain.Caller{alice, bob} {
		_, err := w.alerts.SaveProfile(ctx, u, u.UserID+" Doe", u.UserID+"@example.com")
		require.NoError(t, err)
	}
	w.buy(t, alice, 0, 0)
	w.buy(t, alice, 0, 1)
	w.buy(t, bob, 3, 3)

	res, err := w.cancel.CancelEvent(ctx, organizer, w.event.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, res.TicketsVoided)
	assert.Equal(t, []string{"alice", "bob"}, res.UsersNotified)

	ev, err := w.store.Events().GetByID(ctx, w.event.ID)
	require.NoError(t, err)
	assert.False(t, ev.EventAvailable)

	for _, u := range []domain.Caller{alice, bob} {
		tickets, err := w.store.Tickets().ListByUser(ctx, u.UserID)
		require.NoError(t, err)
		for _, tk := range tickets {
			assert.False(t, tk.Available, tk.ID)
		}
		alerts, err := w.alerts.Alerts(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, []string{domain.CancellationAlert("Noche de Rock")}, alerts, u.UserID)
	}

	// seats stay blocked on a dead event
	assert.False(t, w.seat(t, 0, 0).IsAvailable)
	w.assertSeatsMatchTickets(t, alice, bob)
	w.publisher.AssertCalled(t, "EventCancelled", mock.Anything, mock.AnythingOfType("*domain.CascadeResult"))
}

func TestCancelEvent_Twice(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	_, err := w.cancel.CancelEvent(ctx, organizer, w.event.ID)
	require.NoError(t, err)

	_, err = w.cancel.CancelEvent(ctx, organizer, w.event.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelEvent_OnlyOwningOrganizer(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.cancel.CancelEvent(ctx, alice, w.event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	other := domain.Caller{UserID: "org-2", Role: domain.RoleOrganizer}
	_, err = w.cancel.CancelEvent(ctx, other, w.event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.cancel.CancelEvent(ctx, domain.Caller{}, w.event.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

type cancelMocks struct {
	events    *mocks.EventRepository
	cache     *mocks.SeatCache
	notifier  *mocks.ChangeNotifier
	publisher *mocks.EventPublisher
}

func newCancellationService(t *testing.T, attempts int) (*services.CancellationService, cancelMocks) {
	m := cancelMocks{
		events:    mocks.NewEventRepository(t),
		cache:     mocks.NewSeatCache(t),
		notifier:  mocks.NewChangeNotifier(t),
		publisher: mocks.NewEventPublisher(t),
	}
	svc := services.NewCancellationService(m.events, mocks.NewTicketRepository(t), m.cache, m.notifier, m.publisher,
		services.RetryPolicy{MaxAttempts: attempts}, discardLogger())
	return svc, m
}

func TestCancelEvent_RetriesWholeBatch(t *testing.T) {
	svc, m := newCancellationService(t, 3)
	ctx := context.Background()
	ev := publishedEvent(t)
	alert := domain.CancellationAlert(ev.Name)
	want := &domain.CascadeResult{EventID: ev.ID, TicketsVoided: 2, UsersNotified: []string{"alice"}}

	m.events.On("GetByID", ctx, ev.ID).Return(ev, nil)
	m.events.On("CancelCascade", ctx, ev.ID, alert).Return(nil, domain.ErrStorageUnavailable).Twice()
	m.events.On("CancelCascade", ctx, ev.ID, alert).Return(want, nil).Once()
	m.cache.On("Invalidate", ctx, ev.ID).Return(nil)
	m.notifier.On("Publish", ctx, mock.Anything).Return(nil)
	m.publisher.On("EventCancelled", ctx, want).Return(nil)

	res, err := svc.CancelEvent(ctx, organizer, ev.ID)

	require.NoError(t, err)
	assert.Equal(t, want, res)
	m.events.AssertNumberOfCalls(t, "CancelCascade", 3)
}

func TestCancelEvent_GivesUpAfterMaxAttempts(t *testing.T) {
	svc, m := newCancellationService(t, 2)
	ctx := context.Background()
	ev := publishedEvent(t)

	m.events.On("GetByID", ctx, ev.ID).Return(ev, nil)
	m.events.On("CancelCascade", ctx, ev.ID, mock.Anything).Return(nil, domain.ErrStorageUnavailable)

	_, err := svc.CancelEvent(ctx, organizer, ev.ID)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	m.events.AssertNumberOfCalls(t, "CancelCascade", 2)
	m.publisher.AssertNotCalled(t, "EventCancelled", mock.Anything, mock.Anything)
}

func TestCancelEvent_RetryFindsEarlierCommit(t *testing.T) {
	svc, m := newCancellationService(t, 3)
	ctx := context.Background()
	ev := publishedEvent(t)

	m.events.On("GetByID", ctx, ev.ID).Return(ev, nil)
	m.events.On("CancelCascade", ctx, ev.ID, mock.Anything).Return(nil, domain.ErrStorageUnavailable).Once()
	m.events.On("CancelCascade", ctx, ev.ID, mock.Anything).Return(nil, domain.ErrInvalidTransition).Once()
	m.cache.On("Invalidate", ctx, ev.ID).Return(nil)
	m.notifier.On("Publish", ctx, mock.Anything).Return(nil)
	m.publisher.On("EventCancelled", ctx, mock.Anything).Return(nil)

	res, err := svc.CancelEvent(ctx, organizer, ev.ID)

	require.NoError(t, err)
	assert.Equal(t, ev.ID, res.EventID)
}

func TestCancelEvent_ValidationErrorIsNotRetried(t *testing.T) {
	svc, m := newCancellationService(t, 3)
	ctx := context.Background()
	ev := publishedEvent(t)

	m.events.On("GetByID", ctx, ev.ID).Return(ev, nil)
	m.events.On("CancelCascade", ctx, ev.ID, mock.Anything).Return(nil, domain.ErrNotFound).Once()

	_, err := svc.CancelEvent(ctx, organizer, ev.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelTicket_ReleasesSeat(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	ticket := w.buy(t, alice, 2, 4)
	require.False(t, w.seat(t, 2, 4).IsAvailable)

	err := w.cancel.CancelTicket(ctx, alice, ticket.ID)

	require.NoError(t, err)
	_, err = w.store.Tickets().GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	seat := w.seat(t, 2, 4)
	assert.True(t, seat.IsAvailable)
	assert.Empty(t, seat.PurchasedBy)
	w.assertSeatsMatchTickets(t, alice)

	// the seat can be bought again
	w.buy(t, bob, 2, 4)
	w.assertSeatsMatchTickets(t, alice, bob)
}

func TestCancelTicket_OwnerOnly(t *testing.T) {
	w := newWorld(t)
	ticket := w.buy(t, alice, 1, 1)

	err := w.cancel.CancelTicket(context.Background(), bob, ticket.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, w.seat(t, 1, 1).IsAvailable)
}

func TestCancelTicket_VoidedTicket(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	ticket := w.buy(t, alice, 1, 1)
	_, err := w.cancel.CancelEvent(ctx, organizer, w.event.ID)
	require.NoError(t, err)

	err = w.cancel.CancelTicket(ctx, alice, ticket.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
