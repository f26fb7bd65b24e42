// Package memory keeps events, tickets and users in process. Every write
// runs under one lock, which gives the same conditional-write and
// all-or-nothing guarantees the Postgres adapter gets from transactions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type Store struct {
	mu      sync.RWMutex
	events  map[uuid.UUID]*domain.Event
	tickets map[string]*domain.Ticket
	users   map[string]*domain.User
}

func NewStore() *Store {
	return &Store{
		events:  make(map[uuid.UUID]*domain.Event),
		tickets: make(map[string]*domain.Ticket),
		users:   make(map[string]*domain.User),
	}
}

func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	cp := *t
	return &cp
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	cp.Alerts = append([]string(nil), u.Alerts...)
	return &cp
}

// Events returns the store as a ports.EventRepository.
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// Tickets returns the store as a ports.TicketRepository.
func (s *Store) Tickets() *TicketRepository { return &TicketRepository{s: s} }

// Users returns the store as a ports.UserRepository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

type EventRepository struct{ s *Store }

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[event.ID]; ok {
		return fmt.Errorf("%w: event %s already exists", domain.ErrInvalidInput, event.ID)
	}
	r.s.events[event.ID] = event.Clone()
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ev, ok := r.s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", domain.ErrNotFound, eventID)
	}
	return ev.Clone(), nil
}

func (r *EventRepository) List(ctx context.Context, onlyAvailable bool) ([]domain.Event, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Event, 0, len(r.s.events))
	for _, ev := range r.s.events {
		if onlyAvailable && !ev.EventAvailable {
			continue
		}
		out = append(out, *ev.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (r *EventRepository) CancelCascade(ctx context.Context, eventID uuid.UUID, alert string) (*domain.CascadeResult, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", domain.ErrNotFound, eventID)
	}
	if !ev.EventAvailable {
		return nil, fmt.Errorf("%w: event %s is already cancelled", domain.ErrInvalidTransition, eventID)
	}

	ev.EventAvailable = false
	res := &domain.CascadeResult{EventID: eventID, UsersNotified: []string{}}
	holders := make(map[string]struct{})
	for _, t := range r.s.tickets {
		if t.EventID != eventID {
			continue
		}
		t.Available = false
		res.TicketsVoided++
		holders[t.UserID] = struct{}{}
	}
	for uid := range holders {
		u, ok := r.s.users[uid]
		if !ok {
			continue
		}
		u.Alerts = append(u.Alerts, alert)
		res.UsersNotified = append(res.UsersNotified, uid)
	}
	sort.Strings(res.UsersNotified)
	return res, nil
}

type TicketRepository struct{ s *Store }

func (r *TicketRepository) Purchase(ctx context.Context, ticket *domain.Ticket) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.events[ticket.EventID]
	if !ok {
		return fmt.Errorf("%w: event %s", domain.ErrNotFound, ticket.EventID)
	}
	if !ev.EventAvailable {
		return fmt.Errorf("%w: event %s was cancelled", domain.ErrInvalidTransition, ev.ID)
	}
	if _, dup := r.s.tickets[ticket.ID]; dup {
		return fmt.Errorf("%w: ticket %s already exists", domain.ErrSeatUnavailable, ticket.ID)
	}
	grid, err := ev.Seats.Reserve(ticket.Seat.Row, ticket.Seat.Col, ticket.UserID)
	if err != nil {
		return err
	}
	ev.Seats = grid
	r.s.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, fmt.Errorf("%w: ticket %s", domain.ErrNotFound, ticketID)
	}
	return copyTicket(t), nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.After(out[j].PurchaseDate) })
	return out, nil
}

func (r *TicketRepository) Cancel(ctx context.Context, ticket *domain.Ticket) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return fmt.Errorf("%w: ticket %s", domain.ErrNotFound, ticket.ID)
	}
	if ev, ok := r.s.events[ticket.EventID]; ok {
		grid, err := ev.Seats.Release(ticket.Seat.Row, ticket.Seat.Col)
		if err != nil {
			return err
		}
		ev.Seats = grid
	}
	delete(r.s.tickets, ticket.ID)
	return nil
}

func (r *TicketRepository) orphaned(ev *domain.Event, seat domain.Seat) bool {
	if seat.IsAvailable || !ev.EventAvailable {
		return false
	}
	_, ok := r.s.tickets[domain.TicketID(seat.PurchasedBy, ev.ID, seat.Row, seat.Col)]
	return !ok
}

func (r *TicketRepository) FindOrphanedSeats(ctx context.Context) ([]domain.SeatRef, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var refs []domain.SeatRef
	for _, ev := range r.s.events {
		for _, seat := range ev.Seats.Seats {
			if r.orphaned(ev, seat) {
				refs = append(refs, domain.SeatRef{EventID: ev.ID, Row: seat.Row, Col: seat.Col})
			}
		}
	}
	return refs, nil
}

func (r *TicketRepository) ReleaseOrphanedSeat(ctx context.Context, ref domain.SeatRef) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.events[ref.EventID]
	if !ok {
		return fmt.Errorf("%w: event %s", domain.ErrNotFound, ref.EventID)
	}
	seat, err := ev.Seats.At(ref.Row, ref.Col)
	if err != nil {
		return err
	}
	if !r.orphaned(ev, seat) {
		return nil
	}
	grid, err := ev.Seats.Release(ref.Row, ref.Col)
	if err != nil {
		return err
	}
	ev.Seats = grid
	return nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	return copyUser(u), nil
}

// Save upserts the profile fields and never touches existing alerts.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := copyUser(user)
	if existing, ok := r.s.users[user.ID]; ok {
		cp.Alerts = existing.Alerts
	} else if cp.Alerts == nil {
		cp.Alerts = []string{}
	}
	r.s.users[user.ID] = cp
	return nil
}

func (r *UserRepository) RemoveAlert(ctx context.Context, userID string, index int) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	alerts, err := domain.RemoveAlert(u.Alerts, index)
	if err != nil {
		return err
	}
	u.Alerts = alerts
	return nil
}

func (r *UserRepository) ClearAlerts(ctx context.Context, userID string) error {
	if err := alive(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	u.Alerts = []string{}
	return nil
}

// PutRawSeat overwrites one seat without any checks. It exists so tests can
// reproduce the half-applied writes a non-transactional backend may leave.
func (s *Store) PutRawSeat(eventID uuid.UUID, seat domain.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[eventID]; ok {
		ev.Seats.Seats[seat.Row*ev.Seats.Cols+seat.Col] = seat
	}
}
