package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Selection is the client-local pick of at most one seat. It never touches
// storage; selecting a new seat replaces the previous one.
type Selection struct {
	EventID  uuid.UUID
	selected *Position
}

func (s Selection) Select(row, col int) Selection {
	return Selection{EventID: s.EventID, selected: &Position{Row: row, Col: col}}
}

func (s Selection) Clear() Selection {
	return Selection{EventID: s.EventID}
}

func (s Selection) Selected() (Position, bool) {
	if s.selected == nil {
		return Position{}, false
	}
	return *s.selected, true
}

func (s Selection) IsSelected(row, col int) bool {
	return s.selected != nil && s.selected.Row == row && s.selected.Col == col
}

type PaymentOutcome string

const (
	PaymentAuthorized PaymentOutcome = "authorized"
	PaymentCaptured   PaymentOutcome = "captured"
	PaymentDeclined   PaymentOutcome = "declined"
	PaymentError      PaymentOutcome = "error"
)

// Intent metadata keys binding a payment to one seat of one event.
const (
	MetaEventID = "event_id"
	MetaUserID  = "user_id"
	MetaRow     = "row"
	MetaCol     = "col"
)

func PaymentMetadata(eventID uuid.UUID, userID string, row, col int) map[string]string {
	return map[string]string{
		MetaEventID: eventID.String(),
		MetaUserID:  userID,
		MetaRow:     strconv.Itoa(row),
		MetaCol:     strconv.Itoa(col),
	}
}

// PaymentIntent is what the processor hands back before card entry.
type PaymentIntent struct {
	ID           string          `json:"id"`
	ClientSecret string          `json:"clientSecret"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentConfirmation is the processor's view of an intent: its outcome,
// the authorized amount in minor units and the metadata it was opened with.
type PaymentConfirmation struct {
	IntentID    string            `json:"intentId"`
	Outcome     PaymentOutcome    `json:"outcome"`
	Reason      string            `json:"reason,omitempty"`
	AmountCents int64             `json:"amountCents"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Err maps an outcome that cannot pay for a seat onto the error taxonomy.
func (p PaymentConfirmation) Err() error {
	switch p.Outcome {
	case PaymentAuthorized, PaymentCaptured:
		return nil
	case PaymentDeclined:
		return fmt.Errorf("%w: %s", ErrPaymentDeclined, p.Reason)
	default:
		return fmt.Errorf("%w: %s", ErrPaymentProcessor, p.Reason)
	}
}

// Covers reports whether the payment was opened for exactly this seat at
// this price. A payment for another seat, buyer or amount is ErrInvalidInput.
func (p PaymentConfirmation) Covers(eventID uuid.UUID, userID string, row, col int, price decimal.Decimal) error {
	for key, want := range PaymentMetadata(eventID, userID, row, col) {
		if got := p.Metadata[key]; got != want {
			return fmt.Errorf("%w: payment %s was opened for %s %q, not %q", ErrInvalidInput, p.IntentID, key, got, want)
		}
	}
	if want := AmountInCents(price); p.AmountCents != want {
		return fmt.Errorf("%w: payment %s authorized %d cents, seat costs %d", ErrInvalidInput, p.IntentID, p.AmountCents, want)
	}
	return nil
}

// AmountInCents converts a decimal price to the processor's minor units.
func AmountInCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

type ChangeKind string

const (
	ChangeSeatPurchased  ChangeKind = "seat.purchased"
	ChangeSeatReleased   ChangeKind = "seat.released"
	ChangeEventCancelled ChangeKind = "event.cancelled"
	ChangeEventPublished ChangeKind = "event.published"
)

// Change is pushed to subscribers of an event whenever its grid or ticket
// set moves.
type Change struct {
	EventID uuid.UUID  `json:"eventId"`
	Kind    ChangeKind `json:"kind"`
	Row     *int       `json:"row,omitempty"`
	Col     *int       `json:"col,omitempty"`
	At      time.Time  `json:"at"`
}

func SeatChange(kind ChangeKind, ref SeatRef, at time.Time) Change {
	row, col := ref.Row, ref.Col
	return Change{EventID: ref.EventID, Kind: kind, Row: &row, Col: &col, At: at}
}
