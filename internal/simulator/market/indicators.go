package market

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/alpinex/alpinex/internal/domain"
)

// Overlay technical indicator series computed over candle closes,
// streamed alongside the chart.
type Overlay struct {
	EMA20 []decimal.Decimal `json:"ema20"`
	RSI14 []decimal.Decimal `json:"rsi14"`
}

const (
	emaPeriod = 20
	rsiPeriod = 14
)

// ComputeOverlay derives EMA20 and RSI14 from a candle series.
func ComputeOverlay(candles []domain.Candle) (Overlay, error) {
	if len(candles) < emaPeriod+rsiPeriod {
		return Overlay{}, errors.Errorf("not enough candles: need %d, got %d", emaPeriod+rsiPeriod, len(candles))
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i], _ = c.Close.Float64()
	}

	ema := trend.NewEmaWithPeriod[float64](emaPeriod)
	emaOut := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))

	rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
	rsiOut := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))

	return Overlay{
		EMA20: toDecimals(emaOut),
		RSI14: toDecimals(rsiOut),
	}, nil
}

func toDecimals(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
