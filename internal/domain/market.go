package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle OHLCV market data for one interval.
type Candle struct {
	OpenTime  time.Time       `json:"openTime"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	CloseTime time.Time       `json:"closeTime"`
}

// OrderBookEntry one price level of the book.
type OrderBookEntry struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Total  decimal.Decimal `json:"total"`
}

// OrderBook bid and ask levels around the current price.
// Asks are ordered highest price first, bids highest price first.
type OrderBook struct {
	Bids   []OrderBookEntry `json:"bids"`
	Asks   []OrderBookEntry `json:"asks"`
	Spread decimal.Decimal  `json:"spread"`
}

// MarketTrade a recently executed trade shown in the trade feed.
type MarketTrade struct {
	ID        string          `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Side      OrderSide       `json:"side"`
	Timestamp time.Time       `json:"timestamp"`
}
