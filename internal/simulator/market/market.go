// Package market generates mock order books, trade feeds and candle series
// for the trading view. Nothing here is matched or settled; the data only
// has to look like a live venue.
package market

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alpinex/alpinex/internal/domain"
)

const (
	// BookDepth price levels generated per side.
	BookDepth = 15
	// DefaultCandleCount length of a freshly generated series.
	DefaultCandleCount = 300
	// candleVolatility fractional volatility per candle.
	candleVolatility = 0.002
)

// Simulator produces synthetic market data anchored at a base price per pair.
// A live quote, when available, re-anchors the walk via SetBasePrice.
type Simulator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	base  map[string]decimal.Decimal
	chart map[string][]domain.Candle
}

// NewSimulator creates a simulator with the given starting quotes.
func NewSimulator(base map[string]decimal.Decimal) *Simulator {
	anchors := make(map[string]decimal.Decimal, len(base))
	for sym, price := range base {
		anchors[sym] = price
	}
	return &Simulator{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		base:  anchors,
		chart: make(map[string][]domain.Candle),
	}
}

// SetBasePrice re-anchors the synthetic walk for a pair at a live quote.
func (s *Simulator) SetBasePrice(pair domain.Pair, price decimal.Decimal) {
	if price.LessThanOrEqual(decimal.Zero) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base[pair.Symbol()] = price
}

func (s *Simulator) basePrice(pair domain.Pair) decimal.Decimal {
	if p, ok := s.base[pair.Symbol()]; ok {
		return p
	}
	p := decimal.NewFromFloat(43200)
	s.base[pair.Symbol()] = p
	return p
}

// OrderBook regenerates the book for a pair: BookDepth bids below the base
// price and BookDepth asks above it, asks ordered highest first.
func (s *Simulator) OrderBook(pair domain.Pair) domain.OrderBook {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.basePrice(pair)
	bids := make([]domain.OrderBookEntry, 0, BookDepth)
	asks := make([]domain.OrderBookEntry, 0, BookDepth)

	for i := 0; i < BookDepth; i++ {
		step := decimal.NewFromFloat(float64(i+1) * (s.rnd.Float64()*5 + 1))
		amount := decimal.NewFromFloat(s.rnd.Float64()*10 + 0.1)

		bidPrice := base.Sub(step)
		bids = append(bids, domain.OrderBookEntry{
			Price:  bidPrice,
			Amount: amount,
			Total:  bidPrice.Mul(amount),
		})

		askAmount := decimal.NewFromFloat(s.rnd.Float64()*10 + 0.1)
		askPrice := base.Add(step)
		asks = append(asks, domain.OrderBookEntry{
			Price:  askPrice,
			Amount: askAmount,
			Total:  askPrice.Mul(askAmount),
		})
	}

	// asks are rendered top-down, highest price first
	for i, j := 0, len(asks)-1; i < j; i, j = i+1, j-1 {
		asks[i], asks[j] = asks[j], asks[i]
	}

	spread := asks[len(asks)-1].Price.Sub(bids[0].Price)
	return domain.OrderBook{Bids: bids, Asks: asks, Spread: spread}
}

// Trades generates n recent trades around the base price, newest first.
func (s *Simulator) Trades(pair domain.Pair, n int) []domain.MarketTrade {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.basePrice(pair)
	trades := make([]domain.MarketTrade, 0, n)
	now := time.Now()
	for i := 0; i < n; i++ {
		jitter := decimal.NewFromFloat((s.rnd.Float64() - 0.5) * 10)
		side := domain.OrderSideBuy
		if s.rnd.Float64() < 0.5 {
			side = domain.OrderSideSell
		}
		trades = append(trades, domain.MarketTrade{
			ID:        uuid.New().String(),
			Price:     base.Add(jitter),
			Amount:    decimal.NewFromFloat(s.rnd.Float64()*2 + 0.001),
			Side:      side,
			Timestamp: now.Add(-time.Duration(i) * time.Second),
		})
	}
	return trades
}

// Candles returns the candle series for a pair, generating it on first use.
// The series is a random walk seeded at the base price.
func (s *Simulator) Candles(pair domain.Pair, interval time.Duration, n int) []domain.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		n = DefaultCandleCount
	}
	key := pair.Symbol()
	if series, ok := s.chart[key]; ok && len(series) == n {
		return append([]domain.Candle(nil), series...)
	}

	series := s.generate(s.basePrice(pair), interval, n)
	s.chart[key] = series
	return append([]domain.Candle(nil), series...)
}

// SeedCandles replaces the cached series for a pair with live history and
// re-anchors the base price at its last close.
func (s *Simulator) SeedCandles(pair domain.Pair, series []domain.Candle) {
	if len(series) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pair.Symbol()
	s.chart[key] = append([]domain.Candle(nil), series...)
	s.base[key] = series[len(series)-1].Close
}

// Advance nudges the last candle of the series the way a live feed would:
// close drifts, high/low stretch, volume accrues.
func (s *Simulator) Advance(pair domain.Pair) []domain.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.chart[pair.Symbol()]
	if !ok || len(series) == 0 {
		return nil
	}

	last := series[len(series)-1]
	change := decimal.NewFromFloat((s.rnd.Float64() - 0.5) * 0.001)
	last.Close = last.Close.Mul(decimal.NewFromInt(1).Add(change))
	if last.Close.GreaterThan(last.High) {
		last.High = last.Close
	}
	if last.Close.LessThan(last.Low) {
		last.Low = last.Close
	}
	last.Volume = last.Volume.Add(decimal.NewFromFloat(s.rnd.Float64() * 10000))
	series[len(series)-1] = last

	return append([]domain.Candle(nil), series...)
}

func (s *Simulator) generate(base decimal.Decimal, interval time.Duration, n int) []domain.Candle {
	if interval <= 0 {
		interval = time.Minute
	}
	series := make([]domain.Candle, 0, n)
	price := base
	start := time.Now().Add(-time.Duration(n) * interval)

	for i := 0; i < n; i++ {
		change := decimal.NewFromFloat((s.rnd.Float64() - 0.5) * candleVolatility)
		open := price
		closePrice := open.Mul(decimal.NewFromInt(1).Add(change))

		high := open
		if closePrice.GreaterThan(high) {
			high = closePrice
		}
		high = high.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(s.rnd.Float64() * candleVolatility * 0.5)))

		low := open
		if closePrice.LessThan(low) {
			low = closePrice
		}
		low = low.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(s.rnd.Float64() * candleVolatility * 0.5)))

		openTime := start.Add(time.Duration(i) * interval)
		series = append(series, domain.Candle{
			OpenTime:  openTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    decimal.NewFromFloat(s.rnd.Float64() * 1000000),
			CloseTime: openTime.Add(interval),
		})
		price = closePrice
	}
	return series
}
