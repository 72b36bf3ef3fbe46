package comm

import (
	"encoding/json"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "place-bet", "cash-out"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// Broadcast topics produced by the round engine. The socket service fans
// these out to every connected client.
const (
	TopicRoundState     = "round-state"
	TopicMultiplierTick = "multiplier-tick"
	TopicCrashResult    = "crash-result"
	TopicCrashHistory   = "crash-history"
	TopicPlayerList     = "player-list"
)

type PlayerData struct {
	Name    string `json:"name"`
	UID     string `json:"uid"`
	Balance string `json:"balance"`
}

type BetRequest struct {
	UID    string          `json:"uid"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type CashOutRequest struct {
	UID string `json:"uid"`
}

type BetRes struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type CashOutRes struct {
	Status     string `json:"status"`
	Multiplier string `json:"multiplier,omitempty"`
	Winnings   string `json:"winnings,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// GameState is the synchronous snapshot returned on get-state.
type GameState struct {
	State             string               `json:"state"`
	CurrentMultiplier string               `json:"current_multiplier"`
	Players           []models.PlayerEntry `json:"players"`
	CrashHistory      []string             `json:"crash_history"`
}

type PaymentRequest struct {
	UID    string          `json:"uid"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentRes struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Balance   string `json:"balance,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type TransactionsRequest struct {
	UID   string `json:"uid"`
	Limit int    `json:"limit"`
}

type TransactionsRes struct {
	Status       string               `json:"status"`
	Transactions []models.Transaction `json:"transactions"`
	Timestamp    int64                `json:"timestamp"`
}

type GameHistoryRequest struct {
	UID   string `json:"uid"`
	Limit int    `json:"limit"`
}

type GameHistoryRes struct {
	Status    string               `json:"status"`
	Records   []models.GameHistory `json:"records"`
	Timestamp int64                `json:"timestamp"`
}
