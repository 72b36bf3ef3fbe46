package models

import (
	"github.com/shopspring/decimal"
)

type RoundState string

const (
	StateWaiting RoundState = "WAITING"
	StateRunning RoundState = "RUNNING"
	StateCrashed RoundState = "CRASHED"
)

type PlayerStatus string

const (
	StatusInGame    PlayerStatus = "IN_GAME"
	StatusCashedOut PlayerStatus = "CASHED_OUT"
)

// PlayerEntry is one player's participation in the current round. It is
// in-memory only; an in-progress round does not survive a restart.
type PlayerEntry struct {
	UserID            string           `json:"user_id"`
	Name              string           `json:"name"`
	BetAmount         decimal.Decimal  `json:"bet_amount"`
	Status            PlayerStatus     `json:"status"`
	CashOutMultiplier *decimal.Decimal `json:"cash_out_multiplier,omitempty"`
}
