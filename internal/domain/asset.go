// Package domain defines core data structures used throughout the exchange demo.
package domain

import "github.com/shopspring/decimal"

// Wallet identifies one of the two independent asset ledgers.
type Wallet string

const (
	// WalletHodl custodial savings ledger.
	WalletHodl Wallet = "hodl"
	// WalletTrade active trading ledger.
	WalletTrade Wallet = "trade"
)

// String returns the string representation.
func (w Wallet) String() string {
	return string(w)
}

// IsValid checks if the Wallet value is valid.
func (w Wallet) IsValid() bool {
	return w == WalletHodl || w == WalletTrade
}

// Mode view mode of the application, mirrors the two wallets.
type Mode string

const (
	// ModeHodl custodial savings view.
	ModeHodl Mode = "hodl"
	// ModeTrade active trading view.
	ModeTrade Mode = "trade"
)

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks if the Mode value is valid.
func (m Mode) IsValid() bool {
	return m == ModeHodl || m == ModeTrade
}

// Asset a balance of one currency held in a ledger.
// Value must always equal Balance * Price; call Revalue after
// touching Balance or Price.
type Asset struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Logo      string          `json:"logo"`
	Balance   decimal.Decimal `json:"balance"`
	Value     decimal.Decimal `json:"value"`
	Change24h decimal.Decimal `json:"change24h"`
	Price     decimal.Decimal `json:"price"`
}

// Revalue restores the Value = Balance * Price invariant and returns the asset.
func (a Asset) Revalue() Asset {
	a.Value = a.Balance.Mul(a.Price)
	return a
}
