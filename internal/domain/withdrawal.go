package domain

import (
	"time"

	"github.com/google/uuid"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is created in pending with an immediate balance debit.
// Once approved or rejected it is immutable.
type Withdrawal struct {
	ID          int64
	PublicID    uuid.UUID
	UserID      int64
	Amount      int64
	Account     string
	Status      WithdrawalStatus
	Comment     string
	ProcessedBy *int64 // admin telegram id
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

func (w *Withdrawal) Resolved() bool {
	return w.Status != WithdrawalPending
}
