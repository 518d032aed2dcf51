package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpinex/alpinex/internal/domain"
)

var btcusdt = domain.Pair{Base: "BTC", Quote: "USDT"}

func newTestSimulator() *Simulator {
	return NewSimulator(map[string]decimal.Decimal{
		"BTCUSDT": decimal.NewFromFloat(43200.50),
	})
}

func TestOrderBook_Shape(t *testing.T) {
	sim := newTestSimulator()
	book := sim.OrderBook(btcusdt)

	require.Len(t, book.Bids, BookDepth)
	require.Len(t, book.Asks, BookDepth)

	base := decimal.NewFromFloat(43200.50)

	// bids descend away from the base price
	for i, bid := range book.Bids {
		assert.True(t, bid.Price.LessThan(base), "bid %d at %s not below base", i, bid.Price)
		assert.True(t, bid.Total.Equal(bid.Price.Mul(bid.Amount)))
		if i > 0 {
			assert.True(t, bid.Price.LessThan(book.Bids[i-1].Price))
		}
	}

	// asks are listed highest first, the best ask sits last
	for i, ask := range book.Asks {
		assert.True(t, ask.Price.GreaterThan(base), "ask %d at %s not above base", i, ask.Price)
		assert.True(t, ask.Total.Equal(ask.Price.Mul(ask.Amount)))
		if i > 0 {
			assert.True(t, ask.Price.LessThan(book.Asks[i-1].Price))
		}
	}

	bestBid := book.Bids[0].Price
	bestAsk := book.Asks[len(book.Asks)-1].Price
	assert.True(t, book.Spread.Equal(bestAsk.Sub(bestBid)))
	assert.True(t, book.Spread.GreaterThan(decimal.Zero))
}

func TestTrades_NewestFirst(t *testing.T) {
	sim := newTestSimulator()
	trades := sim.Trades(btcusdt, 10)

	require.Len(t, trades, 10)
	for i, tr := range trades {
		assert.NotEmpty(t, tr.ID)
		assert.True(t, tr.Price.GreaterThan(decimal.Zero))
		assert.True(t, tr.Amount.GreaterThan(decimal.Zero))
		if i > 0 {
			assert.False(t, tr.Timestamp.After(trades[i-1].Timestamp), "trade %d newer than its predecessor", i)
		}
	}
}

func TestCandles_SeriesProperties(t *testing.T) {
	sim := newTestSimulator()
	series := sim.Candles(btcusdt, time.Minute, 50)

	require.Len(t, series, 50)
	for i, c := range series {
		assert.True(t, c.High.GreaterThanOrEqual(c.Open), "candle %d high below open", i)
		assert.True(t, c.High.GreaterThanOrEqual(c.Close), "candle %d high below close", i)
		assert.True(t, c.Low.LessThanOrEqual(c.Open), "candle %d low above open", i)
		assert.True(t, c.Low.LessThanOrEqual(c.Close), "candle %d low above close", i)
		assert.True(t, c.CloseTime.After(c.OpenTime))
		if i > 0 {
			assert.True(t, c.OpenTime.After(series[i-1].OpenTime), "timestamps must be strictly increasing")
			// each candle opens where the previous one closed
			assert.True(t, c.Open.Equal(series[i-1].Close))
		}
	}
}

func TestCandles_SeriesIsCached(t *testing.T) {
	sim := newTestSimulator()

	first := sim.Candles(btcusdt, time.Minute, 50)
	second := sim.Candles(btcusdt, time.Minute, 50)
	assert.Equal(t, first, second)

	// a different requested length regenerates the series
	third := sim.Candles(btcusdt, time.Minute, 60)
	require.Len(t, third, 60)
}

func TestAdvance_OnlyTouchesLastCandle(t *testing.T) {
	sim := newTestSimulator()
	before := sim.Candles(btcusdt, time.Minute, 50)

	after := sim.Advance(btcusdt)
	require.Len(t, after, 50)

	assert.Equal(t, before[:len(before)-1], after[:len(after)-1])

	last := after[len(after)-1]
	assert.True(t, last.High.GreaterThanOrEqual(last.Close))
	assert.True(t, last.Low.LessThanOrEqual(last.Close))
	assert.True(t, last.Volume.GreaterThanOrEqual(before[len(before)-1].Volume))
}

func TestAdvance_WithoutSeriesReturnsNil(t *testing.T) {
	sim := newTestSimulator()
	assert.Nil(t, sim.Advance(domain.Pair{Base: "ETH", Quote: "USDT"}))
}

func TestSetBasePrice(t *testing.T) {
	sim := newTestSimulator()

	sim.SetBasePrice(btcusdt, decimal.NewFromInt(50000))
	book := sim.OrderBook(btcusdt)
	assert.True(t, book.Bids[0].Price.LessThan(decimal.NewFromInt(50000)))
	assert.True(t, book.Asks[len(book.Asks)-1].Price.GreaterThan(decimal.NewFromInt(50000)))

	// non-positive quotes are ignored
	sim.SetBasePrice(btcusdt, decimal.Zero)
	book = sim.OrderBook(btcusdt)
	assert.True(t, book.Bids[0].Price.GreaterThan(decimal.NewFromInt(40000)))
}
