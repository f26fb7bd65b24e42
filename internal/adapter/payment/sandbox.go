package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

// DeclinedMethod is the payment method the sandbox always rejects, named
// after the processor's own test token.
const DeclinedMethod = "pm_card_chargeDeclined"

type intentState string

const (
	stateCreated    intentState = "created"
	stateAuthorized intentState = "authorized"
	stateCaptured   intentState = "captured"
	stateVoided     intentState = "voided"
)

type sandboxIntent struct {
	state       intentState
	amountCents int64
	metadata    map[string]string
}

// Sandbox is an in-process gateway for local runs without processor keys.
type Sandbox struct {
	mu      sync.Mutex
	intents map[string]*sandboxIntent
}

func NewSandbox() *Sandbox {
	return &Sandbox{intents: make(map[string]*sandboxIntent)}
}

func (s *Sandbox) CreateIntent(_ context.Context, amount decimal.Decimal, metadata map[string]string) (*domain.PaymentIntent, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	id := "pi_" + uuid.NewString()
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	s.mu.Lock()
	s.intents[id] = &sandboxIntent{state: stateCreated, amountCents: domain.AmountInCents(amount), metadata: meta}
	s.mu.Unlock()
	return &domain.PaymentIntent{ID: id, ClientSecret: id + "_secret", Amount: amount}, nil
}

// Confirm authorizes a created intent. An intent that is already authorized
// or captured reports its current state.
func (s *Sandbox) Confirm(_ context.Context, intentID, paymentMethod string) (*domain.PaymentConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: intent %s cannot be confirmed", domain.ErrPaymentProcessor, intentID)
	}
	switch in.state {
	case stateAuthorized, stateCaptured:
		return in.confirmation(intentID), nil
	case stateCreated:
	default:
		return nil, fmt.Errorf("%w: intent %s cannot be confirmed", domain.ErrPaymentProcessor, intentID)
	}
	if paymentMethod == DeclinedMethod {
		conf := in.confirmation(intentID)
		conf.Outcome = domain.PaymentDeclined
		conf.Reason = "Your card was declined."
		return conf, nil
	}
	in.state = stateAuthorized
	return in.confirmation(intentID), nil
}

func (s *Sandbox) Lookup(_ context.Context, intentID string) (*domain.PaymentConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: no intent %s", domain.ErrPaymentProcessor, intentID)
	}
	return in.confirmation(intentID), nil
}

func (s *Sandbox) Capture(_ context.Context, intentID string) error {
	return s.move(intentID, stateAuthorized, stateCaptured)
}

func (s *Sandbox) Void(_ context.Context, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[intentID]
	if !ok {
		return fmt.Errorf("%w: intent %s cannot be voided", domain.ErrPaymentProcessor, intentID)
	}
	switch in.state {
	case stateCreated, stateAuthorized:
		in.state = stateVoided
		return nil
	default:
		return fmt.Errorf("%w: intent %s cannot be voided", domain.ErrPaymentProcessor, intentID)
	}
}

func (s *Sandbox) CreateClientSecret(ctx context.Context, amountCents int64) (string, error) {
	intent, err := s.CreateIntent(ctx, decimal.New(amountCents, -2), nil)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

func (s *Sandbox) move(intentID string, from, to intentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[intentID]
	if !ok {
		return fmt.Errorf("%w: no intent %s", domain.ErrPaymentProcessor, intentID)
	}
	if in.state != from {
		return fmt.Errorf("%w: intent %s is %q", domain.ErrPaymentProcessor, intentID, in.state)
	}
	in.state = to
	return nil
}

func (in *sandboxIntent) confirmation(intentID string) *domain.PaymentConfirmation {
	conf := &domain.PaymentConfirmation{IntentID: intentID, AmountCents: in.amountCents, Metadata: in.metadata}
	switch in.state {
	case stateAuthorized:
		conf.Outcome = domain.PaymentAuthorized
	case stateCaptured:
		conf.Outcome = domain.PaymentCaptured
	case stateVoided:
		conf.Outcome = domain.PaymentDeclined
		conf.Reason = "intent was voided"
	default:
		conf.Outcome = domain.PaymentError
		conf.Reason = fmt.Sprintf("intent is %q", in.state)
	}
	return conf
}
