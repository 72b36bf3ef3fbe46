package admin

import (
	"context"
	"time"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/astra-games/crash-services/internal/crashsvc/names"
	"github.com/shopspring/decimal"
)

const unknownUser = "Unknown User"

type HistorySource interface {
	ListRecent(ctx context.Context, limit int) ([]models.GameHistory, error)
	ListRecentWins(ctx context.Context, limit int) ([]models.GameHistory, error)
	Count(ctx context.Context) (int64, error)
}

type LedgerSource interface {
	ListRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	CountTransactions(ctx context.Context) (int64, error)
}

type UserSource interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

// Transaction is a ledger row joined with the owner's display name.
type Transaction struct {
	Name string `json:"name"`
	models.Transaction
}

// GameRecord is a game outcome joined with the owner's display name.
type GameRecord struct {
	Name string `json:"name"`
	models.GameHistory
}

// BigWin is the public dashboard shape. Name is a generated alias, never
// the player's display name.
type BigWin struct {
	Name      string          `json:"name"`
	GameType  models.GameType `json:"game_type"`
	BetAmount decimal.Decimal `json:"bet_amount"`
	WinAmount decimal.Decimal `json:"win_amount"`
	Result    string          `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

type Stats struct {
	TotalUsers        int   `json:"total_users"`
	TotalTransactions int64 `json:"total_transactions"`
	TotalGamesPlayed  int64 `json:"total_games_played"`
}

// Service serves the management views: cross-user transaction and game
// listings, aggregate counts and the public big-wins feed.
type Service struct {
	history HistorySource
	ledger  LedgerSource
	users   UserSource
}

func NewService(history HistorySource, ledger LedgerSource, users UserSource) *Service {
	return &Service{history: history, ledger: ledger, users: users}
}

func (s *Service) nameMap(ctx context.Context) (map[string]string, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	m := make(map[string]string, len(users))
	for _, u := range users {
		m[u.UID] = u.Name
	}
	return m, nil
}

func lookupName(m map[string]string, uid string) string {
	if name, ok := m[uid]; ok {
		return name
	}
	return unknownUser
}

// RecentTransactions returns the newest ledger rows across all users with
// display names attached.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	userMap, err := s.nameMap(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.ledger.ListRecentTransactions(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, Transaction{
			Name:        lookupName(userMap, t.UserID),
			Transaction: t,
		})
	}
	return out, nil
}

// RecentGames returns the newest game outcomes across all users with
// display names attached.
func (s *Service) RecentGames(ctx context.Context, limit int) ([]GameRecord, error) {
	userMap, err := s.nameMap(ctx)
	if err != nil {
		return nil, err
	}

	games, err := s.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]GameRecord, 0, len(games))
	for _, g := range games {
		out = append(out, GameRecord{
			Name:        lookupName(userMap, g.UserID),
			GameHistory: g,
		})
	}
	return out, nil
}

// RecentBigWins returns the newest winning outcomes under generated aliases
// for the public dashboard.
func (s *Service) RecentBigWins(ctx context.Context, limit int) ([]BigWin, error) {
	games, err := s.history.ListRecentWins(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]BigWin, 0, len(games))
	for _, g := range games {
		out = append(out, BigWin{
			Name:      names.Generate(),
			GameType:  g.GameType,
			BetAmount: g.BetAmount,
			WinAmount: g.WinAmount,
			Result:    g.Result,
			CreatedAt: g.CreatedAt,
		})
	}
	return out, nil
}

// Statistics returns aggregate counts for the management dashboard.
func (s *Service) Statistics(ctx context.Context) (Stats, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	txCount, err := s.ledger.CountTransactions(ctx)
	if err != nil {
		return Stats{}, err
	}

	gameCount, err := s.history.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalUsers:        len(users),
		TotalTransactions: txCount,
		TotalGamesPlayed:  gameCount,
	}, nil
}

func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.users.ListAll(ctx)
}
