package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Name      string  `json:"name"`
}

// EventDetails holds the descriptive fields the organizer fills in.
type EventDetails struct {
	Name        string    `json:"eventName"`
	ArtistName  string    `json:"artistName"`
	Category    string    `json:"eventCategory"`
	Description string    `json:"eventDescription"`
	PosterURL   string    `json:"poster"`
	DateTime    time.Time `json:"eventDate"`
	Location    Location  `json:"location"`
}

type Event struct {
	ID          uuid.UUID `json:"id"`
	OrganizerID string    `json:"organizerId"`
	EventDetails
	Seats          SeatGrid                     `json:"seats"`
	Prices         map[Category]decimal.Decimal `json:"prices"`
	EventAvailable bool                         `json:"eventAvailable"`
	CreatedAt      time.Time                    `json:"createdAt"`
}

func (e *Event) PriceFor(c Category) (decimal.Decimal, error) {
	p, ok := e.Prices[c]
	if !ok || !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no price for category %q", ErrInvalidInput, c)
	}
	return p, nil
}

// PurchasableSeat returns the seat if the event is live and the seat is open.
func (e *Event) PurchasableSeat(row, col int) (Seat, error) {
	if !e.EventAvailable {
		return Seat{}, fmt.Errorf("%w: event %s was cancelled", ErrInvalidTransition, e.ID)
	}
	seat, err := e.Seats.At(row, col)
	if err != nil {
		return Seat{}, err
	}
	if !seat.IsAvailable {
		return Seat{}, fmt.Errorf("%w: seat %d-%d", ErrSeatUnavailable, row, col)
	}
	return seat, nil
}

// CascadeResult summarizes what an event cancellation touched.
type CascadeResult struct {
	EventID       uuid.UUID `json:"eventId"`
	TicketsVoided int       `json:"ticketsVoided"`
	UsersNotified []string  `json:"usersNotified"`
}

func CancellationAlert(eventName string) string {
	return fmt.Sprintf("The event %q has been cancelled. Your ticket is no longer valid.", eventName)
}

func (e *Event) Clone() *Event {
	cp := *e
	cp.Seats = e.Seats.Clone()
	cp.Prices = make(map[Category]decimal.Decimal, len(e.Prices))
	for k, v := range e.Prices {
		cp.Prices[k] = v
	}
	return &cp
}
