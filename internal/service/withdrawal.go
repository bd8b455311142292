package service

import (
	"context"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

type WithdrawalService struct {
	store       storage.Store
	minWithdraw int64
}

func NewWithdrawalService(store storage.Store, minWithdraw int64) *WithdrawalService {
	return &WithdrawalService{store: store, minWithdraw: minWithdraw}
}

func (s *WithdrawalService) MinWithdraw() int64 {
	return s.minWithdraw
}

// Request debits the amount and creates a pending request atomically.
// The debit is pessimistic: funds leave the visible balance before any
// admin review, so concurrent requests cannot spend the same Gold twice.
func (s *WithdrawalService) Request(ctx context.Context, userID, amount int64, account string) (*domain.Withdrawal, error) {
	if amount < s.minWithdraw {
		return nil, domain.ErrInvalidAmount
	}
	return s.store.CreateWithdrawal(ctx, userID, amount, account)
}

func (s *WithdrawalService) Get(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	return s.store.GetWithdrawal(ctx, id)
}

func (s *WithdrawalService) ListPending(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.store.ListPendingWithdrawals(ctx)
}

// Resolve transitions a pending request. Approval keeps the earlier debit;
// rejection refunds the exact debited amount atomically with the status
// change. A second resolve fails with ErrAlreadyResolved and changes
// nothing, which makes duplicate admin taps safe.
func (s *WithdrawalService) Resolve(ctx context.Context, id, adminTgID int64, approve bool, comment string) (*domain.Withdrawal, error) {
	return s.store.ResolveWithdrawal(ctx, id, adminTgID, approve, comment)
}
