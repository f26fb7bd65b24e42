package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryAllocation tracks how many seats of one tier the organizer wants
// and how many of those are still waiting to be placed on the grid.
type CategoryAllocation struct {
	Category  Category        `json:"category"`
	Target    int             `json:"target"`
	Remaining int             `json:"remaining"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// EventDraft is the organizer-side setup state of an event before publish.
// Like SeatGrid it is a value: transitions return a new draft.
type EventDraft struct {
	Grid        SeatGrid
	Allocations map[Category]CategoryAllocation
	Published   bool
}

func NewEventDraft() EventDraft {
	allocs := make(map[Category]CategoryAllocation, len(Categories))
	for _, c := range Categories {
		allocs[c] = CategoryAllocation{Category: c, UnitPrice: decimal.Zero}
	}
	return EventDraft{
		Grid:        NewSeatGrid(GridRows, GridCols),
		Allocations: allocs,
	}
}

func (d EventDraft) Clone() EventDraft {
	allocs := make(map[Category]CategoryAllocation, len(d.Allocations))
	for k, v := range d.Allocations {
		allocs[k] = v
	}
	return EventDraft{Grid: d.Grid.Clone(), Allocations: allocs, Published: d.Published}
}

func (d EventDraft) Remaining(c Category) int {
	return d.Allocations[c].Remaining
}

func (d EventDraft) editable() error {
	if d.Published {
		return fmt.Errorf("%w: event already published", ErrInvalidTransition)
	}
	return nil
}

// SetTarget fixes how many seats a category gets. The sum of all targets is
// capped at MaxTotalSeats.
func (d EventDraft) SetTarget(c Category, count int) (EventDraft, error) {
	if err := d.editable(); err != nil {
		return d, err
	}
	if !c.Valid() {
		return d, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
	}
	if count < 0 {
		return d, fmt.Errorf("%w: negative seat count for %s", ErrInvalidInput, c)
	}

	others := 0
	for cat, a := range d.Allocations {
		if cat != c {
			others += a.Target
		}
	}
	if count+others > MaxTotalSeats {
		return d, fmt.Errorf("%w: %d + %d > %d", ErrCapacityExceeded, count, others, MaxTotalSeats)
	}

	assigned := d.Grid.CountByCategory()[c]
	if count < assigned {
		return d, fmt.Errorf("%w: %d %s seats are already on the grid", ErrInvalidInput, assigned, c)
	}

	next := d.Clone()
	a := next.Allocations[c]
	a.Target = count
	a.Remaining = count - assigned
	next.Allocations[c] = a
	return next, nil
}

func (d EventDraft) SetPrice(c Category, price decimal.Decimal) (EventDraft, error) {
	if err := d.editable(); err != nil {
		return d, err
	}
	if !c.Valid() {
		return d, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
	}
	if price.IsNegative() {
		return d, fmt.Errorf("%w: negative price for %s", ErrInvalidInput, c)
	}
	next := d.Clone()
	a := next.Allocations[c]
	a.UnitPrice = price
	next.Allocations[c] = a
	return next, nil
}

// AssignCategory places a category on a cell. Assigning the category a cell
// already holds toggles it off. Moving a cell from one category to another
// gives the old category its unit back.
func (d EventDraft) AssignCategory(row, col int, c Category) (EventDraft, error) {
	if err := d.editable(); err != nil {
		return d, err
	}
	if !c.Valid() {
		return d, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
	}
	seat, err := d.Grid.At(row, col)
	if err != nil {
		return d, err
	}
	if seat.Category == c {
		return d.ToggleOff(row, col)
	}
	if d.Allocations[c].Remaining <= 0 {
		return d, fmt.Errorf("%w: no %s seats left", ErrCategoryExhausted, c)
	}

	next := d.Clone()
	if seat.IsAssigned() {
		prev := next.Allocations[seat.Category]
		prev.Remaining++
		next.Allocations[seat.Category] = prev
	}
	a := next.Allocations[c]
	a.Remaining--
	next.Allocations[c] = a

	i, _ := next.Grid.index(row, col)
	next.Grid.Seats[i].Category = c
	next.Grid.Seats[i].IsAvailable = true
	return next, nil
}

// ToggleOff clears a cell and returns its unit to the category. Clearing an
// unassigned cell does nothing.
func (d EventDraft) ToggleOff(row, col int) (EventDraft, error) {
	if err := d.editable(); err != nil {
		return d, err
	}
	seat, err := d.Grid.At(row, col)
	if err != nil {
		return d, err
	}
	if !seat.IsAssigned() {
		return d, nil
	}

	next := d.Clone()
	a := next.Allocations[seat.Category]
	a.Remaining++
	next.Allocations[seat.Category] = a

	i, _ := next.Grid.index(row, col)
	next.Grid.Seats[i] = Seat{Row: row, Col: col, IsAvailable: true}
	return next, nil
}

// Validate checks every publish precondition and reports all failures at once.
func (d EventDraft) Validate() error {
	var errs []error
	if !d.Grid.IsFullyAssigned() {
		errs = append(errs, errors.New("not every seat has a category"))
	}
	counts := d.Grid.CountByCategory()
	for _, c := range Categories {
		a := d.Allocations[c]
		if counts[c] != a.Target {
			errs = append(errs, fmt.Errorf("%s has %d seats on the grid but %d allocated", c, counts[c], a.Target))
		}
		if !a.UnitPrice.IsPositive() {
			errs = append(errs, fmt.Errorf("%s has no price", c))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPublishPrecondition, errors.Join(errs...))
	}
	return nil
}

// Publish freezes the draft into an Event. The draft itself is returned
// marked as published so no further setup transition is accepted.
func (d EventDraft) Publish(id uuid.UUID, organizerID string, details EventDetails, now time.Time) (EventDraft, *Event, error) {
	if err := d.editable(); err != nil {
		return d, nil, err
	}
	if organizerID == "" {
		return d, nil, ErrNotAuthenticated
	}
	if err := d.Validate(); err != nil {
		return d, nil, err
	}

	next := d.Clone()
	next.Published = true

	prices := make(map[Category]decimal.Decimal, len(Categories))
	for _, c := range Categories {
		prices[c] = next.Allocations[c].UnitPrice
	}

	ev := &Event{
		ID:             id,
		OrganizerID:    organizerID,
		EventDetails:   details,
		Seats:          next.Grid.Clone(),
		Prices:         prices,
		EventAvailable: true,
		CreatedAt:      now,
	}
	return next, ev, nil
}
