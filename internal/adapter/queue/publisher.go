// Package queue publishes ticket and event lifecycle messages to RabbitMQ.
// Callers treat failures as non-fatal: the write has already committed.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

const (
	QueueTicketPurchased = "ticket.purchased"
	QueueTicketCancelled = "ticket.cancelled"
	QueueEventCancelled  = "event.cancelled"
)

// Message is the envelope every consumer receives.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	conn *amqp.Connection
	open func() (amqpChannel, error)
	now  func() time.Time

	mu       sync.Mutex
	declared map[string]bool
}

// NewPublisher dials the broker once; each publish opens its own channel.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	p := newPublisher(func() (amqpChannel, error) {
		return conn.Channel()
	})
	p.conn = conn
	return p, nil
}

func newPublisher(open func() (amqpChannel, error)) *Publisher {
	return &Publisher{
		open:     open,
		now:      func() time.Time { return time.Now().UTC() },
		declared: make(map[string]bool),
	}
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

func (p *Publisher) TicketPurchased(ctx context.Context, ticket *domain.Ticket) error {
	return p.publish(ctx, QueueTicketPurchased, ticket)
}

func (p *Publisher) TicketCancelled(ctx context.Context, ticket *domain.Ticket) error {
	return p.publish(ctx, QueueTicketCancelled, ticket)
}

func (p *Publisher) EventCancelled(ctx context.Context, result *domain.CascadeResult) error {
	return p.publish(ctx, QueueEventCancelled, result)
}

func (p *Publisher) publish(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", queue, err)
	}
	msg := Message{
		ID:         uuid.NewString(),
		Type:       queue,
		OccurredAt: p.now(),
		Data:       data,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", queue, err)
	}

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("rabbitmq channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := p.declare(ch, queue); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", queue, err)
	}
	return nil
}

func (p *Publisher) declare(ch amqpChannel, queue string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declared[queue] {
		return nil
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq declare %s: %w", queue, err)
	}
	p.declared[queue] = true
	return nil
}

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) TicketPurchased(context.Context, *domain.Ticket) error { return nil }
func (NopPublisher) TicketCancelled(context.Context, *domain.Ticket) error { return nil }
func (NopPublisher) EventCancelled(context.Context, *domain.CascadeResult) error { return nil }
