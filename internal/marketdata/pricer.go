// Package marketdata fetches live quotes and candles from public exchange
// endpoints. Failures here never reach the state store; callers fall back
// to the synthetic data path.
package marketdata

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alpinex/alpinex/internal/domain"
)

// Pricer returns the current market price for a pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}

// KlineProvider returns recent OHLCV candles for a pair.
type KlineProvider interface {
	GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.Candle, error)
}
