package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type EventRepository struct {
	mock.Mock
}

func NewEventRepository(t testingT) *EventRepository {
	m := &EventRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

func (_m *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	ret := _m.Called(ctx, eventID)
	var r0 *domain.Event
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Event)
	}
	return r0, ret.Error(1)
}

func (_m *EventRepository) List(ctx context.Context, onlyAvailable bool) ([]domain.Event, error) {
	ret := _m.Called(ctx, onlyAvailable)
	var r0 []domain.Event
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Event)
	}
	return r0, ret.Error(1)
}

func (_m *EventRepository) CancelCascade(ctx context.Context, eventID uuid.UUID, alert string) (*domain.CascadeResult, error) {
	ret := _m.Called(ctx, eventID, alert)
	var r0 *domain.CascadeResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.CascadeResult)
	}
	return r0, ret.Error(1)
}

type TicketRepository struct {
	mock.Mock
}

func NewTicketRepository(t testingT) *TicketRepository {
	m := &TicketRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *TicketRepository) Purchase(ctx context.Context, ticket *domain.Ticket) error {
	ret := _m.Called(ctx, ticket)
	return ret.Error(0)
}

func (_m *TicketRepository) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ret := _m.Called(ctx, ticketID)
	var r0 *domain.Ticket
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Ticket)
	}
	return r0, ret.Error(1)
}

func (_m *TicketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	ret := _m.Called(ctx, userID)
	var r0 []domain.Ticket
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Ticket)
	}
	return r0, ret.Error(1)
}

func (_m *TicketRepository) Cancel(ctx context.Context, ticket *domain.Ticket) error {
	ret := _m.Called(ctx, ticket)
	return ret.Error(0)
}

func (_m *TicketRepository) FindOrphanedSeats(ctx context.Context) ([]domain.SeatRef, error) {
	ret := _m.Called(ctx)
	var r0 []domain.SeatRef
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.SeatRef)
	}
	return r0, ret.Error(1)
}

func (_m *TicketRepository) ReleaseOrphanedSeat(ctx context.Context, ref domain.SeatRef) error {
	ret := _m.Called(ctx, ref)
	return ret.Error(0)
}

type UserRepository struct {
	mock.Mock
}

func NewUserRepository(t testingT) *UserRepository {
	m := &UserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	ret := _m.Called(ctx, userID)
	var r0 *domain.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *UserRepository) RemoveAlert(ctx context.Context, userID string, index int) error {
	ret := _m.Called(ctx, userID, index)
	return ret.Error(0)
}

func (_m *UserRepository) ClearAlerts(ctx context.Context, userID string) error {
	ret := _m.Called(ctx, userID)
	return ret.Error(0)
}
