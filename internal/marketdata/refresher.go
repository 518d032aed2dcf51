package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alpinex/alpinex/internal/simulator/market"
	"github.com/alpinex/alpinex/internal/store"
	"github.com/alpinex/alpinex/pkg/retrier"
)

// DefaultPollInterval cadence for re-anchoring the simulator at live quotes.
const DefaultPollInterval = 10 * time.Second

// Refresher polls a live pricer for the current pair and re-anchors the
// market simulator at the fetched quote. On failure it logs and keeps the
// synthetic anchor; no error ever propagates into the store.
type Refresher struct {
	store    *store.Store
	sim      *market.Simulator
	pricer   Pricer
	retrier  *retrier.Retrier
	interval time.Duration
	logger   *zap.Logger
}

// NewRefresher creates a refresher polling at the given interval
// (DefaultPollInterval if zero).
func NewRefresher(st *store.Store, sim *market.Simulator, pricer Pricer, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		store:    st,
		sim:      sim,
		pricer:   pricer,
		retrier:  retrier.New(retrier.WithMaxRetries(2), retrier.WithInitialInterval(500*time.Millisecond)),
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	pair := r.store.Snapshot().CurrentPair

	var quote decimal.Decimal
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		p, err := r.pricer.GetPrice(ctx, pair)
		if err != nil {
			return err
		}
		quote = p
		return nil
	})
	if err != nil {
		r.logger.Warn("live quote unavailable, keeping synthetic prices",
			zap.String("pair", pair.String()),
			zap.Error(err))
		return
	}

	r.sim.SetBasePrice(pair, quote)
	r.logger.Debug("market simulator re-anchored",
		zap.String("pair", pair.String()),
		zap.String("price", quote.String()))
}
