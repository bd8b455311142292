package domain

import "time"

type TxType string

const (
	TxTypeDebit  TxType = "debit"
	TxTypeCredit TxType = "credit"
)

// Transaction is a journal row written alongside every balance mutation.
// Amount is always positive; TxType carries the direction.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      int64
	TxType      TxType
	Description string
	CreatedAt   time.Time
}
