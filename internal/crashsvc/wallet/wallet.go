package wallet

import (
	"context"
	"errors"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount rejects non-positive deposit/withdraw/bet amounts before
// any store access.
var ErrInvalidAmount = errors.New("amount must be positive")

// Ledger is the atomic balance-mutation primitive. ApplyDelta must apply the
// signed delta and append exactly one transaction row as one indivisible
// unit, rejecting a negative resulting balance with no partial write.
type Ledger interface {
	ApplyDelta(ctx context.Context, userID string, delta decimal.Decimal, ttype models.TransactionType) (decimal.Decimal, error)
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
}

type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// Deposit adds funds to the user's balance. Returns the new balance.
func (s *Service) Deposit(ctx context.Context, uid string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return s.ledger.ApplyDelta(ctx, uid, amount, models.TxDeposit)
}

// Withdraw removes funds from the user's balance. Returns the new balance.
func (s *Service) Withdraw(ctx context.Context, uid string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return s.ledger.ApplyDelta(ctx, uid, amount.Neg(), models.TxWithdrawal)
}

// PlaceBet debits the stake from the user's balance. Returns the new balance.
func (s *Service) PlaceBet(ctx context.Context, uid string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return s.ledger.ApplyDelta(ctx, uid, amount.Neg(), models.TxBet)
}

// ProcessWin credits winnings. A non-positive amount is a no-op, not an error.
func (s *Service) ProcessWin(ctx context.Context, uid string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	_, err := s.ledger.ApplyDelta(ctx, uid, amount, models.TxWin)
	return err
}

func (s *Service) Balance(ctx context.Context, uid string) (decimal.Decimal, error) {
	return s.ledger.GetBalance(ctx, uid)
}

func (s *Service) Transactions(ctx context.Context, uid string, limit int) ([]models.Transaction, error) {
	return s.ledger.ListTransactions(ctx, uid, limit)
}
