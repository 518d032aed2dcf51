package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType kind of ledger movement being recorded.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeBuy        TransactionType = "buy"
	TransactionTypeSell       TransactionType = "sell"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// IsValid checks if the TransactionType value is valid.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal,
		TransactionTypeBuy, TransactionTypeSell, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction an append-only log record, newest-first ordering.
type Transaction struct {
	ID        string            `json:"id"`
	Type      TransactionType   `json:"type"`
	Asset     string            `json:"asset"`
	Amount    decimal.Decimal   `json:"amount"`
	Value     decimal.Decimal   `json:"value"`
	Status    TransactionStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	From      string            `json:"from,omitempty"`
	To        string            `json:"to,omitempty"`
}

// NewTransferTransaction records a completed transfer of an asset between wallets.
func NewTransferTransaction(symbol string, amount, value decimal.Decimal, from, to Wallet) Transaction {
	return Transaction{
		ID:        uuid.New().String(),
		Type:      TransactionTypeTransfer,
		Asset:     symbol,
		Amount:    amount,
		Value:     value,
		Status:    TransactionStatusCompleted,
		Timestamp: time.Now(),
		From:      from.String(),
		To:        to.String(),
	}
}
