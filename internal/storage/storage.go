// Package storage defines the ledger store contract. Every mutating
// operation is atomic with respect to its own invariant set: a balance
// change and its accompanying row either both happen or neither does,
// and duplicate submissions resolve to one state change plus idempotent
// no-op errors (domain.ErrTaskAlreadyDone, domain.ErrAlreadyResolved).
package storage

import (
	"context"

	"github.com/set-night/goldbot/internal/domain"
)

type NewTask struct {
	Title       string
	Description string
	Reward      int64
	ChannelRef  string
}

type Store interface {
	// Users.
	FindOrCreateUser(ctx context.Context, tgID int64, firstName, username string) (*domain.User, bool, error)
	GetUser(ctx context.Context, tgID int64) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	ListUserTelegramIDs(ctx context.Context) ([]int64, error)
	SetBanned(ctx context.Context, tgID int64, banned bool) error
	// AdjustBalance applies a signed delta and journals it. A delta that
	// would push the balance negative fails with ErrInsufficientBalance.
	AdjustBalance(ctx context.Context, tgID int64, delta int64, description string) (int64, error)

	// Sponsors.
	CreateSponsor(ctx context.Context, channelRef, title string) (*domain.Sponsor, error)
	ListSponsors(ctx context.Context) ([]domain.Sponsor, error)
	ListActiveSponsors(ctx context.Context) ([]domain.Sponsor, error)
	SetSponsorActive(ctx context.Context, id int64, active bool) error

	// Tasks.
	CreateTask(ctx context.Context, t NewTask) (*domain.Task, error)
	GetActiveTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	// ListAvailableTasks returns active tasks the user has not completed.
	ListAvailableTasks(ctx context.Context, userID int64) ([]domain.Task, error)
	SetTaskActive(ctx context.Context, id int64, active bool) error
	// CompleteTask marks the (task, user) pair done and credits the reward
	// in one atomic unit. A pair already done fails with ErrTaskAlreadyDone
	// and credits nothing.
	CompleteTask(ctx context.Context, userID, taskID int64) (*domain.Task, error)

	// Withdrawals.
	// CreateWithdrawal debits the amount and inserts the pending row
	// atomically (pessimistic debit).
	CreateWithdrawal(ctx context.Context, userID, amount int64, account string) (*domain.Withdrawal, error)
	GetWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error)
	ListPendingWithdrawals(ctx context.Context) ([]domain.Withdrawal, error)
	// ResolveWithdrawal transitions a pending request to approved or
	// rejected; rejection refunds the exact debited amount in the same
	// atomic unit. A resolved request fails with ErrAlreadyResolved.
	ResolveWithdrawal(ctx context.Context, id, adminTgID int64, approve bool, comment string) (*domain.Withdrawal, error)

	// Admins.
	IsAdmin(ctx context.Context, tgID int64) (bool, error)
	UpsertAdmin(ctx context.Context, tgID int64, role domain.AdminRole) error
	RemoveAdmin(ctx context.Context, tgID int64) error

	Stats(ctx context.Context) (*domain.Stats, error)
}
