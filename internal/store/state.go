package store

import (
	"github.com/shopspring/decimal"

	"github.com/alpinex/alpinex/internal/domain"
)

// State is the single aggregate owned by the Store. Readers always get a
// deep copy, never a reference into the live aggregate.
type State struct {
	Mode            domain.Mode          `json:"mode"`
	User            *domain.User         `json:"user"`
	IsAuthenticated bool                 `json:"isAuthenticated"`
	HodlAssets      []domain.Asset       `json:"hodlAssets"`
	TradeAssets     []domain.Asset       `json:"tradeAssets"`
	CurrentPair     domain.Pair          `json:"currentPair"`
	Orders          []domain.Order       `json:"orders"`
	Transactions    []domain.Transaction `json:"transactions"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.HodlAssets = append([]domain.Asset(nil), s.HodlAssets...)
	out.TradeAssets = append([]domain.Asset(nil), s.TradeAssets...)
	out.Orders = make([]domain.Order, len(s.Orders))
	for i, o := range s.Orders {
		out.Orders[i] = o.Clone()
	}
	out.Transactions = append([]domain.Transaction(nil), s.Transactions...)
	return out
}

func seedAsset(symbol, name, logo string, balance, change24h, price decimal.Decimal) domain.Asset {
	return domain.Asset{
		Symbol:    symbol,
		Name:      name,
		Logo:      logo,
		Balance:   balance,
		Change24h: change24h,
		Price:     price,
	}.Revalue()
}

// DefaultState returns the demo account the exchange boots with:
// a custodial wallet holding BTC/ETH/USDC and a trading wallet
// holding BTC/ETH/USDT.
func DefaultState() State {
	return State{
		Mode: domain.ModeTrade,
		HodlAssets: []domain.Asset{
			seedAsset("BTC", "Bitcoin", "₿",
				decimal.NewFromFloat(0.5432), decimal.NewFromFloat(2.34), decimal.NewFromFloat(43200.50)),
			seedAsset("ETH", "Ethereum", "Ξ",
				decimal.NewFromFloat(12.8765), decimal.NewFromFloat(-1.23), decimal.NewFromFloat(2247.89)),
			seedAsset("USDC", "USD Coin", "$",
				decimal.NewFromFloat(5000.00), decimal.NewFromFloat(0.01), decimal.NewFromInt(1)),
		},
		TradeAssets: []domain.Asset{
			seedAsset("BTC", "Bitcoin", "₿",
				decimal.NewFromFloat(0.1234), decimal.NewFromFloat(2.34), decimal.NewFromFloat(43200.50)),
			seedAsset("ETH", "Ethereum", "Ξ",
				decimal.NewFromFloat(5.4321), decimal.NewFromFloat(-1.23), decimal.NewFromFloat(2247.89)),
			seedAsset("USDT", "Tether", "₮",
				decimal.NewFromFloat(10000.00), decimal.NewFromFloat(-0.02), decimal.NewFromInt(1)),
		},
		CurrentPair: domain.Pair{Base: "BTC", Quote: "USDT"},
	}
}
