// Package pricefeed perturbs every held asset's price by a bounded random
// walk on a fixed interval, standing in for a live market data stream.
package pricefeed

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alpinex/alpinex/internal/domain"
	"github.com/alpinex/alpinex/internal/store"
)

// DefaultInterval matches the original 2s UI refresh cadence.
const DefaultInterval = 2 * time.Second

// maxDeltaPct bounds a single tick to ±1%.
const maxDeltaPct = 0.01

var oneHundred = decimal.NewFromInt(100)

// Tick applies one simulated price movement to an asset.
// delta is the fractional price change, e.g. 0.01 for +1%.
// change24h accumulates additively instead of tracking a true
// trailing window; the UI only needs a rough drift figure.
func Tick(a domain.Asset, delta decimal.Decimal) domain.Asset {
	a.Price = a.Price.Mul(decimal.NewFromInt(1).Add(delta))
	a.Change24h = a.Change24h.Add(delta.Mul(oneHundred))
	return a.Revalue()
}

// Feed drives the store's ledgers with simulated price ticks.
type Feed struct {
	store    *store.Store
	interval time.Duration
	logger   *zap.Logger
	rnd      *rand.Rand
}

// New creates a feed ticking at the given interval (DefaultInterval if zero).
func New(st *store.Store, interval time.Duration, logger *zap.Logger) *Feed {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		store:    st,
		interval: interval,
		logger:   logger,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ticks until ctx is cancelled. The ticker is owned here and torn down
// on exit so no update can land after the owner is gone.
func (f *Feed) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("price feed started", zap.Duration("interval", f.interval))
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("price feed stopped")
			return nil
		case <-ticker.C:
			f.store.ApplyPriceTicks(func(a domain.Asset) domain.Asset {
				delta := decimal.NewFromFloat((f.rnd.Float64() - 0.5) * 2 * maxDeltaPct)
				return Tick(a, delta)
			})
		}
	}
}
