// Command alpinex runs the demonstration crypto exchange: a custodial
// "HODL" wallet and an active trading view backed by simulated market
// data, served over HTTP.
//
// Usage:
//
//	alpinex --config config.yaml
//	alpinex -register (runs the account creation wizard first)
//
// With -livedata, BINANCE_API_KEY / BINANCE_API_SECRET may optionally be
// set; public market data works without them.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alpinex/alpinex/config"
	"github.com/alpinex/alpinex/internal/domain"
	"github.com/alpinex/alpinex/internal/marketdata"
	"github.com/alpinex/alpinex/internal/onboarding"
	"github.com/alpinex/alpinex/internal/simulator/market"
	"github.com/alpinex/alpinex/internal/simulator/pricefeed"
	"github.com/alpinex/alpinex/internal/store"
	"github.com/alpinex/alpinex/internal/web"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	st := store.New(logger, initialState(cfg))

	if cfg.Register {
		if err := onboarding.RunWizard(st); err != nil {
			logger.Fatal("account creation failed", zap.Error(err))
		}
	} else {
		// demo session without a registered identity
		st.SetAuthenticated(true)
	}

	sim := market.NewSimulator(seedQuotes(st))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	feed := pricefeed.New(st, cfg.TickInterval, logger)
	g.Go(func() error {
		return feed.Run(ctx)
	})

	if cfg.LiveData {
		client := binance.NewClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET"))
		pricer := marketdata.NewBinancePricer(client)
		refresher := marketdata.NewRefresher(st, sim, pricer, cfg.PollPriceInterval, logger)
		g.Go(func() error {
			return refresher.Run(ctx)
		})

		klines := marketdata.NewBinanceKlineProvider(client)
		go seedLiveCandles(ctx, klines, sim, cfg.Pair, logger)
	}

	server := web.NewServer(cfg.ListenAddr, st, sim, logger)
	server.BookRefreshInterval = cfg.BookRefreshInterval
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.CertCacheDir)
		}
		return server.Start(ctx)
	})

	logger.Info("alpinex started",
		zap.String("addr", cfg.ListenAddr),
		zap.String("pair", cfg.Pair.String()))

	if err := g.Wait(); err != nil {
		logger.Error("shutdown with error", zap.Error(err))
	}
}

func initialState(cfg config.Config) store.State {
	state := store.DefaultState()
	state.CurrentPair = cfg.Pair
	return state
}

// seedLiveCandles backfills the chart with real minute candles so the trading
// view opens on live history instead of a synthetic walk. Best effort, the
// synthetic series stays in place when the venue is unreachable.
func seedLiveCandles(ctx context.Context, klines marketdata.KlineProvider, sim *market.Simulator, pair domain.Pair, logger *zap.Logger) {
	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	series, err := klines.GetKlines(fetchCtx, pair, "1m", market.DefaultCandleCount)
	if err != nil {
		logger.Warn("live candle history unavailable, keeping synthetic series",
			zap.String("pair", pair.String()), zap.Error(err))
		return
	}
	sim.SeedCandles(pair, series)
	logger.Info("chart seeded with live candles",
		zap.String("pair", pair.String()), zap.Int("count", len(series)))
}

// seedQuotes anchors the market simulator at the ledgers' current prices
// so the book and the charts open near the portfolio valuation.
func seedQuotes(st *store.Store) map[string]decimal.Decimal {
	snapshot := st.Snapshot()
	quotes := make(map[string]decimal.Decimal)
	for _, a := range append(snapshot.HodlAssets, snapshot.TradeAssets...) {
		pair := a.Symbol + snapshot.CurrentPair.Quote
		quotes[pair] = a.Price
	}
	return quotes
}
