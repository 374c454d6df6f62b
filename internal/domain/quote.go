package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrQuoteUnavailable marks a transient lookup failure: the alert is skipped
// for the current cycle and retried on the next one.
var ErrQuoteUnavailable = errors.New("quote unavailable")

type QuoteSource interface {
	GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}
