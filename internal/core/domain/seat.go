package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type Seat struct {
	Row         int      `json:"row"`
	Col         int      `json:"col"`
	Category    Category `json:"category"`
	IsAvailable bool     `json:"isAvailable"`
	PurchasedBy string   `json:"purchasedBy,omitempty"`
}

func (s Seat) IsAssigned() bool {
	return s.Category != CategoryNone
}

// SeatRef addresses one seat of one event.
type SeatRef struct {
	EventID uuid.UUID
	Row     int
	Col     int
}

// SeatGrid is an immutable snapshot of an event's seats in row-major order.
// Every transition returns a new grid and leaves the receiver untouched.
type SeatGrid struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Seats []Seat `json:"seats"`
}

func NewSeatGrid(rows, cols int) SeatGrid {
	seats := make([]Seat, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			seats = append(seats, Seat{Row: r, Col: c, IsAvailable: true})
		}
	}
	return SeatGrid{Rows: rows, Cols: cols, Seats: seats}
}

func (g SeatGrid) index(row, col int) (int, error) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return 0, fmt.Errorf("%w: seat %d-%d is outside the %dx%d grid", ErrNotFound, row, col, g.Rows, g.Cols)
	}
	return row*g.Cols + col, nil
}

func (g SeatGrid) Clone() SeatGrid {
	seats := make([]Seat, len(g.Seats))
	copy(seats, g.Seats)
	return SeatGrid{Rows: g.Rows, Cols: g.Cols, Seats: seats}
}

func (g SeatGrid) Equal(other SeatGrid) bool {
	return g.Rows == other.Rows && g.Cols == other.Cols && slices.Equal(g.Seats, other.Seats)
}

func (g SeatGrid) At(row, col int) (Seat, error) {
	i, err := g.index(row, col)
	if err != nil {
		return Seat{}, err
	}
	return g.Seats[i], nil
}

func (g SeatGrid) with(row, col int, fn func(*Seat) error) (SeatGrid, error) {
	i, err := g.index(row, col)
	if err != nil {
		return g, err
	}
	next := g.Clone()
	if err := fn(&next.Seats[i]); err != nil {
		return g, err
	}
	return next, nil
}

// Reserve flips an available seat to unavailable and records the buyer.
func (g SeatGrid) Reserve(row, col int, userID string) (SeatGrid, error) {
	if userID == "" {
		return g, ErrNotAuthenticated
	}
	return g.with(row, col, func(s *Seat) error {
		if !s.IsAvailable {
			return fmt.Errorf("%w: seat %d-%d", ErrSeatUnavailable, row, col)
		}
		s.IsAvailable = false
		s.PurchasedBy = userID
		return nil
	})
}

// Release reopens a seat. Releasing an open seat is a no-op.
func (g SeatGrid) Release(row, col int) (SeatGrid, error) {
	return g.with(row, col, func(s *Seat) error {
		s.IsAvailable = true
		s.PurchasedBy = ""
		return nil
	})
}

func (g SeatGrid) IsFullyAssigned() bool {
	if len(g.Seats) == 0 {
		return false
	}
	for _, s := range g.Seats {
		if !s.IsAssigned() {
			return false
		}
	}
	return true
}

func (g SeatGrid) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, s := range g.Seats {
		if s.IsAssigned() {
			counts[s.Category]++
		}
	}
	return counts
}

func (g SeatGrid) AvailableCount() int {
	n := 0
	for _, s := range g.Seats {
		if s.IsAvailable {
			n++
		}
	}
	return n
}
