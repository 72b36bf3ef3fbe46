package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameType string

const GameCosmicCrash GameType = "COSMIC_CRASH"

// GameHistory records one resolved player outcome. Written once at
// settlement, never mutated.
type GameHistory struct {
	UserID    string          `json:"user_id"`
	GameType  GameType        `json:"game_type"`
	BetAmount decimal.Decimal `json:"bet_amount"`
	WinAmount decimal.Decimal `json:"win_amount"`
	Result    string          `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}
