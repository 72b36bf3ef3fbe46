package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/astra-games/crash-services/internal/crashsvc/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger applies deltas against an in-memory balance with the same
// contract as the Postgres store: serialized per call, negative balance
// rejected with nothing written, one transaction row per committed delta.
type memLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	txs      map[string][]models.Transaction
	calls    int
}

func newMemLedger() *memLedger {
	return &memLedger{
		balances: make(map[string]decimal.Decimal),
		txs:      make(map[string][]models.Transaction),
	}
}

func (m *memLedger) ApplyDelta(ctx context.Context, userID string, delta decimal.Decimal, ttype models.TransactionType) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	newBalance := m.balances[userID].Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, store.ErrInsufficientFunds
	}

	m.balances[userID] = newBalance
	dr, cr := delta, decimal.Zero
	if delta.IsNegative() {
		dr, cr = decimal.Zero, delta.Neg()
	}
	m.txs[userID] = append(m.txs[userID], models.Transaction{
		UserID: userID,
		TType:  ttype,
		Dr:     dr,
		Cr:     cr,
		Status: "completed",
	})
	return newBalance, nil
}

func (m *memLedger) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *memLedger) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.txs[userID]...), nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_InvalidAmountsNeverReachTheStore(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "u1", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Withdraw(ctx, "u1", dec("-5"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.PlaceBet(ctx, "u1", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, 0, ledger.calls)
	txs, _ := ledger.ListTransactions(ctx, "u1", 0)
	assert.Empty(t, txs)
}

func TestService_ProcessWinIgnoresNonPositiveAmounts(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	require.NoError(t, svc.ProcessWin(ctx, "u1", decimal.Zero))
	require.NoError(t, svc.ProcessWin(ctx, "u1", dec("-3")))
	assert.Equal(t, 0, ledger.calls)
}

func TestService_WithdrawInsufficientFundsLeavesBalanceUntouched(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "u1", dec("50"))
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, "u1", dec("200"))
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)

	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("50")), "balance changed: %s", balance)

	txs, _ := svc.Transactions(ctx, "u1", 0)
	assert.Len(t, txs, 1) // only the deposit
}

func TestService_TransactionRecordsCarryAbsoluteAmounts(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "u1", dec("100"))
	require.NoError(t, err)
	_, err = svc.PlaceBet(ctx, "u1", dec("10"))
	require.NoError(t, err)
	require.NoError(t, svc.ProcessWin(ctx, "u1", dec("15")))
	_, err = svc.Withdraw(ctx, "u1", dec("30"))
	require.NoError(t, err)

	txs, _ := svc.Transactions(ctx, "u1", 0)
	require.Len(t, txs, 4)

	assert.Equal(t, models.TxDeposit, txs[0].TType)
	assert.True(t, txs[0].Dr.Equal(dec("100")))

	assert.Equal(t, models.TxBet, txs[1].TType)
	assert.True(t, txs[1].Cr.Equal(dec("10")))

	assert.Equal(t, models.TxWin, txs[2].TType)
	assert.True(t, txs[2].Dr.Equal(dec("15")))

	assert.Equal(t, models.TxWithdrawal, txs[3].TType)
	assert.True(t, txs[3].Cr.Equal(dec("30")))
}

func TestService_ConcurrentDeltasOnOneUser(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "u1", dec("1000"))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers * 2)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.Deposit(ctx, "u1", dec("5"))
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Withdraw(ctx, "u1", dec("5"))
		}()
	}
	wg.Wait()

	// Every withdraw had funds available, so deposits and withdrawals cancel.
	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("1000")), "got %s", balance)

	txs, _ := svc.Transactions(ctx, "u1", 0)
	assert.Len(t, txs, workers*2+1)
}
