package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TicketSeat struct {
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Category Category `json:"category"`
}

type Ticket struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	EventID      uuid.UUID       `json:"eventId"`
	Seat         TicketSeat      `json:"seat"`
	PosterURL    string          `json:"poster"`
	Price        decimal.Decimal `json:"price"`
	PaymentRef   string          `json:"paymentRef,omitempty"`
	PurchaseDate time.Time       `json:"purchaseDate"`
	Available    bool            `json:"available"`
}

// TicketID is deterministic in (user, event, seat) so the same buyer can
// never hold two ticket records for one seat.
func TicketID(userID string, eventID uuid.UUID, row, col int) string {
	return fmt.Sprintf("%s_%s_%d_%d", userID, eventID, row, col)
}

func NewTicket(userID string, ev *Event, seat Seat, price decimal.Decimal, paymentRef string, now time.Time) *Ticket {
	return &Ticket{
		ID:      TicketID(userID, ev.ID, seat.Row, seat.Col),
		UserID:  userID,
		EventID: ev.ID,
		Seat: TicketSeat{
			Row:      seat.Row,
			Col:      seat.Col,
			Category: seat.Category,
		},
		PosterURL:    ev.PosterURL,
		Price:        price,
		PaymentRef:   paymentRef,
		PurchaseDate: now,
		Available:    true,
	}
}

func (t *Ticket) SeatRef() SeatRef {
	return SeatRef{EventID: t.EventID, Row: t.Seat.Row, Col: t.Seat.Col}
}
