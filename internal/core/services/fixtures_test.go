package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
	"github.com/srgjo27/altair_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/altair_ticket/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const organizerID = "org-1"

var (
	organizer = domain.Caller{UserID: organizerID, Role: domain.RoleOrganizer}
	alice     = domain.Caller{UserID: "alice", Role: domain.RoleUser}
	bob       = domain.Caller{UserID: "bob", Role: domain.RoleUser}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fullSetup fills the 5x5 grid: row 0 platino, row 1 oro, row 2 plata,
// rows 3 and 4 bronce.
func fullSetup() services.PublishEventRequest {
	rowCategory := []domain.Category{
		domain.CategoryPlatino,
		domain.CategoryOro,
		domain.CategoryPlata,
		domain.CategoryBronce,
		domain.CategoryBronce,
	}
	var cells []services.CellAssignment
	for r, c := range rowCategory {
		for col := 0; col < domain.GridCols; col++ {
			cells = append(cells, services.CellAssignment{Row: r, Col: col, Category: c})
		}
	}
	return services.PublishEventRequest{
		Details: domain.EventDetails{
			Name:       "Noche de Rock",
			ArtistName: "Los Altair",
			PosterURL:  "https://cdn.example.com/poster.png",
			DateTime:   time.Date(2026, 12, 1, 21, 0, 0, 0, time.UTC),
			Location:   domain.Location{Latitude: 19.43, Longitude: -99.13, Name: "Foro Sol"},
		},
		Targets: map[domain.Category]int{
			domain.CategoryPlatino: 5,
			domain.CategoryOro:     5,
			domain.CategoryPlata:   5,
			domain.CategoryBronce:  10,
		},
		Prices: map[domain.Category]decimal.Decimal{
			domain.CategoryPlatino: decimal.NewFromInt(100),
			domain.CategoryOro:     decimal.NewFromInt(75),
			domain.CategoryPlata:   decimal.NewFromInt(50),
			domain.CategoryBronce:  decimal.RequireFromString("25.50"),
		},
		Assignments: cells,
	}
}

func publishedEvent(t *testing.T) *domain.Event {
	t.Helper()
	draft, err := services.BuildDraft(fullSetup())
	require.NoError(t, err)
	_, ev, err := draft.Publish(uuid.New(), organizerID, fullSetup().Details, time.Now().UTC())
	require.NoError(t, err)
	return ev
}

// world wires every service to one in-memory store, with mocks only for the
// payment processor and the message broker.
type world struct {
	store     *memory.Store
	event     *domain.Event
	gateway   *mocks.PaymentGateway
	publisher *mocks.EventPublisher
	purchase  *services.PurchaseService
	cancel    *services.CancellationService
	alerts    *services.AlertService
	reconcile *services.Reconciler
}

func newWorld(t *testing.T) *world {
	t.Helper()
	gateway := mocks.NewPaymentGateway(t)
	gateway.On("Capture", mock.Anything, mock.Anything).Return(nil).Maybe()
	gateway.On("Void", mock.Anything, mock.Anything).Return(nil).Maybe()
	w := newWorldWith(t, gateway)
	w.gateway = gateway
	return w
}

// newWorldWith is newWorld with a caller-scripted payment gateway.
func newWorldWith(t *testing.T, gateway ports.PaymentGateway) *world {
	t.Helper()
	store := memory.NewStore()
	cache := memory.NewSeatCache()
	notifier := memory.NewNotifier()

	publisher := mocks.NewEventPublisher(t)
	publisher.On("TicketPurchased", mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.On("TicketCancelled", mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.On("EventCancelled", mock.Anything, mock.Anything).Return(nil).Maybe()

	ev := publishedEvent(t)
	require.NoError(t, store.Events().Create(context.Background(), ev))

	log := discardLogger()
	return &world{
		store:     store,
		event:     ev,
		publisher: publisher,
		purchase:  services.NewPurchaseService(store.Events(), store.Tickets(), cache, notifier, publisher, gateway, log),
		cancel: services.NewCancellationService(store.Events(), store.Tickets(), cache, notifier, publisher,
			services.RetryPolicy{MaxAttempts: 3}, log),
		alerts:    services.NewAlertService(store.Users()),
		reconcile: services.NewReconciler(store.Tickets(), cache, notifier, time.Minute, log),
	}
}

// authorized is a processor confirmation opened for exactly this buyer and
// seat at the seat's price.
func authorized(t *testing.T, ev *domain.Event, caller domain.Caller, row, col int, intentID string) domain.PaymentConfirmation {
	t.Helper()
	seat, err := ev.Seats.At(row, col)
	require.NoError(t, err)
	price, err := ev.PriceFor(seat.Category)
	require.NoError(t, err)
	return domain.PaymentConfirmation{
		IntentID:    intentID,
		Outcome:     domain.PaymentAuthorized,
		AmountCents: domain.AmountInCents(price),
		Metadata:    domain.PaymentMetadata(ev.ID, caller.UserID, row, col),
	}
}

func (w *world) buy(t *testing.T, caller domain.Caller, row, col int) *domain.Ticket {
	t.Helper()
	ticket, err := w.purchase.CommitPurchase(context.Background(), caller, w.event.ID, row, col, authorized(t, w.event, caller, row, col, "pi_"+caller.UserID))
	require.NoError(t, err)
	return ticket
}

func (w *world) seat(t *testing.T, row, col int) domain.Seat {
	t.Helper()
	ev, err := w.store.Events().GetByID(context.Background(), w.event.ID)
	require.NoError(t, err)
	seat, err := ev.Seats.At(row, col)
	require.NoError(t, err)
	return seat
}

// assertSeatsMatchTickets checks that a seat is taken exactly when one
// ticket points at it.
func (w *world) assertSeatsMatchTickets(t *testing.T, users ...domain.Caller) {
	t.Helper()
	ctx := context.Background()
	owners := make(map[[2]int]int)
	for _, u := range users {
		tickets, err := w.store.Tickets().ListByUser(ctx, u.UserID)
		require.NoError(t, err)
		for _, tk := range tickets {
			if tk.EventID == w.event.ID {
				owners[[2]int{tk.Seat.Row, tk.Seat.Col}]++
			}
		}
	}
	ev, err := w.store.Events().GetByID(ctx, w.event.ID)
	require.NoError(t, err)
	for _, s := range ev.Seats.Seats {
		n := owners[[2]int{s.Row, s.Col}]
		if s.IsAvailable {
			require.Zerof(t, n, "seat %d-%d is open but has %d tickets", s.Row, s.Col, n)
		} else {
			require.Equalf(t, 1, n, "seat %d-%d is taken but has %d tickets", s.Row, s.Col, n)
		}
	}
}
