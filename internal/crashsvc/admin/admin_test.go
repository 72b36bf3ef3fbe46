package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeHistory struct {
	recent []models.GameHistory
	wins   []models.GameHistory
	count  int64
	err    error
}

func (f *fakeHistory) ListRecent(ctx context.Context, limit int) ([]models.GameHistory, error) {
	return f.recent, f.err
}

func (f *fakeHistory) ListRecentWins(ctx context.Context, limit int) ([]models.GameHistory, error) {
	return f.wins, f.err
}

func (f *fakeHistory) Count(ctx context.Context) (int64, error) {
	return f.count, f.err
}

type fakeLedger struct {
	txs   []models.Transaction
	count int64
	err   error
}

func (f *fakeLedger) ListRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeLedger) CountTransactions(ctx context.Context) (int64, error) {
	return f.count, f.err
}

type fakeUsers struct {
	users []models.User
	err   error
}

func (f *fakeUsers) ListAll(ctx context.Context) ([]models.User, error) {
	return f.users, f.err
}

func game(uid, win string) models.GameHistory {
	return models.GameHistory{
		UserID:    uid,
		GameType:  models.GameCosmicCrash,
		BetAmount: dec("10"),
		WinAmount: dec(win),
		Result:    "Win. Cashed out at 1.50x",
		CreatedAt: time.Now(),
	}
}

func TestService_RecentTransactionsJoinsDisplayNames(t *testing.T) {
	svc := NewService(
		&fakeHistory{},
		&fakeLedger{txs: []models.Transaction{
			{ID: 2, UserID: "u1", TType: models.TxBet, Cr: dec("10")},
			{ID: 1, UserID: "ghost", TType: models.TxDeposit, Dr: dec("50")},
		}},
		&fakeUsers{users: []models.User{{UID: "u1", Name: "BraveTiger42"}}},
	)

	txs, err := svc.RecentTransactions(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "BraveTiger42", txs[0].Name)
	assert.Equal(t, int64(2), txs[0].ID)
	assert.Equal(t, "Unknown User", txs[1].Name, "missing user falls back to a placeholder")
}

func TestService_RecentGamesJoinsDisplayNames(t *testing.T) {
	svc := NewService(
		&fakeHistory{recent: []models.GameHistory{game("u1", "15.00"), game("gone", "0.00")}},
		&fakeLedger{},
		&fakeUsers{users: []models.User{{UID: "u1", Name: "BraveTiger42"}}},
	)

	games, err := svc.RecentGames(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "BraveTiger42", games[0].Name)
	assert.Equal(t, "u1", games[0].UserID)
	assert.Equal(t, "Unknown User", games[1].Name)
}

func TestService_RecentBigWinsUseGeneratedAliases(t *testing.T) {
	svc := NewService(
		&fakeHistory{wins: []models.GameHistory{game("u1", "15.00")}},
		&fakeLedger{},
		&fakeUsers{users: []models.User{{UID: "u1", Name: "BraveTiger42"}}},
	)

	wins, err := svc.RecentBigWins(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, wins, 1)

	assert.NotEmpty(t, wins[0].Name)
	assert.NotEqual(t, "BraveTiger42", wins[0].Name, "real display name must not leak")
	assert.True(t, wins[0].WinAmount.Equal(dec("15.00")))
	assert.Contains(t, wins[0].Result, "1.50x")
}

func TestService_StatisticsAggregatesCounts(t *testing.T) {
	svc := NewService(
		&fakeHistory{count: 120},
		&fakeLedger{count: 340},
		&fakeUsers{users: []models.User{{UID: "u1"}, {UID: "u2"}, {UID: "u3"}}},
	)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, int64(340), stats.TotalTransactions)
	assert.Equal(t, int64(120), stats.TotalGamesPlayed)
}

func TestService_SourceErrorsPropagate(t *testing.T) {
	boom := errors.New("store down")

	svc := NewService(&fakeHistory{}, &fakeLedger{}, &fakeUsers{err: boom})
	_, err := svc.RecentTransactions(context.Background(), 50)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Statistics(context.Background())
	assert.ErrorIs(t, err, boom)

	svc = NewService(&fakeHistory{err: boom}, &fakeLedger{}, &fakeUsers{})
	_, err = svc.RecentBigWins(context.Background(), 20)
	assert.ErrorIs(t, err, boom)
}
