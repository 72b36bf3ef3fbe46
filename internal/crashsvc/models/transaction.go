package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxBet        TransactionType = "bet"
	TxWin        TransactionType = "win"
)

// Transaction is one append-only row of the balances ledger. A row is
// never updated or deleted; the wallet balance is SUM(dr) - SUM(cr).
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	TType     TransactionType `json:"ttype"`
	Dr        decimal.Decimal `json:"dr"`
	Cr        decimal.Decimal `json:"cr"`
	TRef      string          `json:"tref"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
