package payment

import (
	"context"
	"fmt"

	logging "github.com/op/go-logging"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Stripe creates payment intents through the Stripe API.
type Stripe struct {
	client paymentintent.Client
}

// Option adjusts the Stripe backend configuration.
type Option func(*stripe.BackendConfig)

// WithBackendURL points the client at a different API host.
func WithBackendURL(url string) Option {
	return func(cfg *stripe.BackendConfig) {
		cfg.URL = stripe.String(url)
	}
}

// NewStripe builds a client authenticated with secretKey. Each intent is
// attempted exactly once.
func NewStripe(secretKey string, opts ...Option) *Stripe {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{logger},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return &Stripe{client: paymentintent.Client{B: backend, Key: secretKey}}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent for %d %s: %w", amount, currency, err)
	}
	return &Intent{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// stripeLogger routes Stripe's leveled logs into the service log.
type stripeLogger struct {
	*logging.Logger
}

func (l stripeLogger) Warnf(format string, v ...any) {
	l.Warningf(format, v...)
}
