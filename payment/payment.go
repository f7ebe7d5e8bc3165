// Package payment creates card payment intents with the payment provider.
package payment

import (
	"context"
	"math"

	logging "github.com/op/go-logging"
)

var logger = logging.MustGetLogger("payment")

// CurrencyUSD is the only currency the restaurant charges in.
const CurrencyUSD = "usd"

// Intent is the provider's handle for a pending card payment. The client
// secret is handed to the browser to confirm the payment.
type Intent struct {
	ID           string
	Amount       int64
	Currency     string
	ClientSecret string
}

// IntentCreator requests a payment intent for amount, given in minor currency units.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
}

// MinorUnits converts a major-unit price (dollars) into minor units (cents).
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
