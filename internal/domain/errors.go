package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSponsorNotFound     = errors.New("sponsor not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyDone     = errors.New("task already completed")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrAlreadyResolved     = errors.New("withdrawal already resolved")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNotSubscribed       = errors.New("sponsor subscription required")
)
