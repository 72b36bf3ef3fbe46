package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
)

type LedgerStore struct {
	db *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{db: db}
}

// ApplyDelta adds a signed amount to the user's balance and appends the
// matching ledger row in one transaction. The user row is locked FOR UPDATE
// so concurrent deltas for the same user serialize; deltas for different
// users proceed in parallel. A delta that would drive the balance negative
// rolls back with ErrInsufficientFunds and writes nothing.
func (s *LedgerStore) ApplyDelta(ctx context.Context, userID string, delta decimal.Decimal, ttype models.TransactionType) (decimal.Decimal, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var uid string
	err = tx.QueryRow(ctx, `SELECT uid FROM users WHERE uid = $1 FOR UPDATE`, userID).Scan(&uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("lock user row: %w", err)
	}

	var totalDr, totalCr decimal.Decimal
	err = tx.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(dr), 0),
            COALESCE(SUM(cr), 0)
        FROM balances
        WHERE user_id = $1 AND status = 'completed'
    `, userID).Scan(&totalDr, &totalCr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum balance rows: %w", err)
	}

	balance := totalDr.Sub(totalCr)
	newBalance := balance.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, ErrInsufficientFunds
	}

	dr, cr := delta, decimal.Zero
	if delta.IsNegative() {
		dr, cr = decimal.Zero, delta.Neg()
	}

	tref := uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO balances (user_id, ttype, dr, cr, tref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'completed', NOW())
	`, userID, string(ttype), dr, cr, tref)
	if err != nil {
		return decimal.Zero, fmt.Errorf("insert balance row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit tx: %w", err)
	}

	return newBalance, nil
}

func (s *LedgerStore) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var totalDr, totalCr decimal.Decimal

	err := s.db.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(dr), 0),
            COALESCE(SUM(cr), 0)
        FROM balances
        WHERE user_id = $1 AND status = 'completed'
    `, userID).Scan(&totalDr, &totalCr)

	if err != nil {
		return decimal.Zero, err
	}

	balance := totalDr.Sub(totalCr)
	return balance, nil
}

func (s *LedgerStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, ttype, dr, cr, tref, status, created_at
		FROM balances
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// ListRecentTransactions returns the newest ledger rows across all users.
func (s *LedgerStore) ListRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, ttype, dr, cr, tref, status, created_at
		FROM balances
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *LedgerStore) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM balances`).Scan(&n)
	return n, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.TType,
			&t.Dr,
			&t.Cr,
			&t.TRef,
			&t.Status,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return txs, nil
}
