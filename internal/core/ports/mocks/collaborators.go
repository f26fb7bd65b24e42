package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type SeatCache struct {
	mock.Mock
}

func NewSeatCache(t testingT) *SeatCache {
	m := &SeatCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *SeatCache) Get(ctx context.Context, eventID uuid.UUID) (*domain.SeatGrid, error) {
	ret := _m.Called(ctx, eventID)
	var r0 *domain.SeatGrid
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.SeatGrid)
	}
	return r0, ret.Error(1)
}

func (_m *SeatCache) Set(ctx context.Context, eventID uuid.UUID, grid domain.SeatGrid, ttl time.Duration) error {
	ret := _m.Called(ctx, eventID, grid, ttl)
	return ret.Error(0)
}

func (_m *SeatCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	ret := _m.Called(ctx, eventID)
	return ret.Error(0)
}

type ChangeNotifier struct {
	mock.Mock
}

func NewChangeNotifier(t testingT) *ChangeNotifier {
	m := &ChangeNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *ChangeNotifier) Publish(ctx context.Context, change domain.Change) error {
	ret := _m.Called(ctx, change)
	return ret.Error(0)
}

func (_m *ChangeNotifier) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan domain.Change, func(), error) {
	ret := _m.Called(ctx, eventID)
	var r0 <-chan domain.Change
	if v := ret.Get(0); v != nil {
		r0 = v.(<-chan domain.Change)
	}
	var r1 func()
	if v := ret.Get(1); v != nil {
		r1 = v.(func())
	}
	return r0, r1, ret.Error(2)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *EventPublisher) TicketPurchased(ctx context.Context, ticket *domain.Ticket) error {
	ret := _m.Called(ctx, ticket)
	return ret.Error(0)
}

func (_m *EventPublisher) TicketCancelled(ctx context.Context, ticket *domain.Ticket) error {
	ret := _m.Called(ctx, ticket)
	return ret.Error(0)
}

func (_m *EventPublisher) EventCancelled(ctx context.Context, result *domain.CascadeResult) error {
	ret := _m.Called(ctx, result)
	return ret.Error(0)
}

type PaymentGateway struct {
	mock.Mock
}

func NewPaymentGateway(t testingT) *PaymentGateway {
	m := &PaymentGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *PaymentGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, metadata map[string]string) (*domain.PaymentIntent, error) {
	ret := _m.Called(ctx, amount, metadata)
	var r0 *domain.PaymentIntent
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.PaymentIntent)
	}
	return r0, ret.Error(1)
}

func (_m *PaymentGateway) Confirm(ctx context.Context, intentID, paymentMethod string) (*domain.PaymentConfirmation, error) {
	ret := _m.Called(ctx, intentID, paymentMethod)
	var r0 *domain.PaymentConfirmation
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.PaymentConfirmation)
	}
	return r0, ret.Error(1)
}

func (_m *PaymentGateway) Lookup(ctx context.Context, intentID string) (*domain.PaymentConfirmation, error) {
	ret := _m.Called(ctx, intentID)
	var r0 *domain.PaymentConfirmation
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.PaymentConfirmation)
	}
	return r0, ret.Error(1)
}

func (_m *PaymentGateway) Capture(ctx context.Context, intentID string) error {
	ret := _m.Called(ctx, intentID)
	return ret.Error(0)
}

func (_m *PaymentGateway) Void(ctx context.Context, intentID string) error {
	ret := _m.Called(ctx, intentID)
	return ret.Error(0)
}
