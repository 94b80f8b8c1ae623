package types

import "time"

// ClosedTrade is a position that has been fully or partially closed.
type ClosedTrade struct {
	Position
	ExitPrice   float64     `json:"exitPrice" yaml:"exitPrice"`
	ExitTime    time.Time   `json:"exitTime" yaml:"exitTime"`
	RealizedPnL float64     `json:"realizedPnL" yaml:"realizedPnL"`
	CloseReason CloseReason `json:"closeReason" yaml:"closeReason"`
	// Duration is precomputed by the backend, e.g. "2h 15m". May be empty.
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
}

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdraw    TransactionType = "withdraw"
	TransactionTypeFee         TransactionType = "fee"
	TransactionTypeFunding     TransactionType = "funding"
	TransactionTypeRealizedPnL TransactionType = "realized_pnl"
	TransactionTypeReset       TransactionType = "reset"
)

// LedgerTransaction is a balance-affecting entry unrelated to any single position.
type LedgerTransaction struct {
	ID            string          `json:"id" yaml:"id"`
	Type          TransactionType `json:"type" yaml:"type"`
	Amount        float64         `json:"amount" yaml:"amount"`
	BalanceBefore float64         `json:"balanceBefore" yaml:"balanceBefore"`
	BalanceAfter  float64         `json:"balanceAfter" yaml:"balanceAfter"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt" yaml:"createdAt"`
}
