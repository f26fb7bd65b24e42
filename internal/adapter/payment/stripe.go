// Package payment talks to the card processor. Purchases authorize with
// manual capture so a seat that is lost at commit time voids the hold.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// intents is the slice of the Stripe PaymentIntents client we call.
type intents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Confirm(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeGateway struct {
	intents  intents
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	sc := client.New(secretKey, nil)
	return newStripeGateway(sc.PaymentIntents, currency)
}

func newStripeGateway(api intents, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{intents: api, currency: currency}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, metadata map[string]string) (*domain.PaymentIntent, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(domain.AmountInCents(amount)),
		Currency:      stripe.String(g.currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create intent: %v", domain.ErrPaymentProcessor, err)
	}
	return &domain.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: amount}, nil
}

// Confirm returns a confirmation for card rejections rather than an error;
// only transport and processor faults come back as errors. Confirming an
// intent that is already authorized returns its current state, so a retried
// purchase can reuse the hold.
func (g *StripeGateway) Confirm(ctx context.Context, intentID, paymentMethod string) (*domain.PaymentConfirmation, error) {
	params := &stripe.PaymentIntentConfirmParams{PaymentMethod: stripe.String(paymentMethod)}
	params.Context = ctx

	pi, err := g.intents.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return &domain.PaymentConfirmation{IntentID: intentID, Outcome: domain.PaymentDeclined, Reason: stripeErr.Msg}, nil
		}
		if current, lerr := g.Lookup(ctx, intentID); lerr == nil && current.Err() == nil {
			return current, nil
		}
		return nil, fmt.Errorf("%w: confirm intent: %v", domain.ErrPaymentProcessor, err)
	}
	return confirmationFor(pi), nil
}

func confirmationFor(pi *stripe.PaymentIntent) *domain.PaymentConfirmation {
	conf := &domain.PaymentConfirmation{IntentID: pi.ID, AmountCents: pi.Amount, Metadata: pi.Metadata}
	switch pi.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		conf.Outcome = domain.PaymentAuthorized
	case stripe.PaymentIntentStatusSucceeded:
		conf.Outcome = domain.PaymentCaptured
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
		conf.Outcome = domain.PaymentDeclined
		if pi.LastPaymentError != nil {
			conf.Reason = pi.LastPaymentError.Msg
		}
	default:
		conf.Outcome = domain.PaymentError
		conf.Reason = fmt.Sprintf("unexpected intent status %q", pi.Status)
	}
	return conf
}

func (g *StripeGateway) Lookup(ctx context.Context, intentID string) (*domain.PaymentConfirmation, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.intents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %s: %v", domain.ErrPaymentProcessor, intentID, err)
	}
	return confirmationFor(pi), nil
}

func (g *StripeGateway) Capture(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	if _, err := g.intents.Capture(intentID, params); err != nil {
		return fmt.Errorf("%w: capture %s: %v", domain.ErrPaymentProcessor, intentID, err)
	}
	return nil
}

func (g *StripeGateway) Void(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.intents.Cancel(intentID, params); err != nil {
		return fmt.Errorf("%w: void %s: %v", domain.ErrPaymentProcessor, intentID, err)
	}
	return nil
}

// CreateClientSecret backs the standalone relay endpoint: amount is already
// in minor units and the intent captures automatically.
func (g *StripeGateway) CreateClientSecret(ctx context.Context, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(g.currency),
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPaymentProcessor, err)
	}
	return pi.ClientSecret, nil
}
