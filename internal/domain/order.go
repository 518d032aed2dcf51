package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType how an order should be priced.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStopLimit OrderType = "stop-limit"
)

// IsValid checks if the OrderType value is valid.
func (t OrderType) IsValid() bool {
	return t == OrderTypeMarket || t == OrderTypeLimit || t == OrderTypeStopLimit
}

// OrderSide buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// IsValid checks if the OrderSide value is valid.
func (s OrderSide) IsValid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// OrderStatus lifecycle state of an order.
// Transitions: open -> filled, open -> cancelled. Filled and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the OrderStatus value is valid.
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusOpen || s == OrderStatusFilled || s == OrderStatusCancelled
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// Order a client-submitted order. Orders are never executed or matched here,
// only recorded and status-transitioned.
type Order struct {
	ID     string          `json:"id"`
	Pair   Pair            `json:"pair"`
	Type   OrderType       `json:"type"`
	Side   OrderSide       `json:"side"`
	Amount decimal.Decimal `json:"amount"`
	// Price is nil only for market orders.
	Price     *decimal.Decimal `json:"price,omitempty"`
	Filled    decimal.Decimal  `json:"filled"`
	Status    OrderStatus      `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewOrder creates an order in its initial state: open, nothing filled.
func NewOrder(pair Pair, typ OrderType, side OrderSide, amount decimal.Decimal, price *decimal.Decimal) Order {
	return Order{
		ID:        uuid.New().String(),
		Pair:      pair,
		Type:      typ,
		Side:      side,
		Amount:    amount,
		Price:     price,
		Filled:    decimal.Zero,
		Status:    OrderStatusOpen,
		Timestamp: time.Now(),
	}
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	if o.Price != nil {
		p := *o.Price
		o.Price = &p
	}
	return o
}
