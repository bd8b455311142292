package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/goldbot/internal/domain"
)

const withdrawalColumns = `id, public_id, user_id, amount, account, status, comment, processed_by, processed_at, created_at`

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.PublicID, &w.UserID, &w.Amount, &w.Account,
		&w.Status, &w.Comment, &w.ProcessedBy, &w.ProcessedAt, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) CreateWithdrawal(ctx context.Context, userID, amount int64, account string) (*domain.Withdrawal, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the balance row so concurrent requests for the same funds
	// serialize; only one of N full-balance submissions can pass the check.
	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	if balance < amount {
		return nil, domain.ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET balance = balance - $2, updated_at = now() WHERE id = $1`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO withdrawals (public_id, user_id, amount, account)
		VALUES ($1, $2, $3, $4)
		RETURNING `+withdrawalColumns, uuid.New(), userID, amount, account)
	w, err := scanWithdrawal(row)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}

	if err := journal(ctx, tx, userID, -amount, fmt.Sprintf("withdrawal %s", w.PublicID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return w, nil
}

func (s *Store) GetWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := s.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	w, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	return w, nil
}

func (s *Store) ListPendingWithdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = 'pending' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var out []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		err := rows.Scan(&w.ID, &w.PublicID, &w.UserID, &w.Amount, &w.Account,
			&w.Status, &w.Comment, &w.ProcessedBy, &w.ProcessedAt, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) ResolveWithdrawal(ctx context.Context, id, adminTgID int64, approve bool, comment string) (*domain.Withdrawal, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	w, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("lock withdrawal: %w", err)
	}

	if w.Resolved() {
		return nil, domain.ErrAlreadyResolved
	}

	status := domain.WithdrawalRejected
	if approve {
		status = domain.WithdrawalApproved
	}

	row = tx.QueryRow(ctx, `
		UPDATE withdrawals
		SET status = $2, comment = $3, processed_by = $4, processed_at = now()
		WHERE id = $1
		RETURNING `+withdrawalColumns, id, string(status), comment, adminTgID)
	w, err = scanWithdrawal(row)
	if err != nil {
		return nil, fmt.Errorf("resolve withdrawal: %w", err)
	}

	// Rejection refunds the exact debited amount, not a recomputed value.
	if !approve {
		_, err = tx.Exec(ctx,
			`UPDATE users SET balance = balance + $2, updated_at = now() WHERE id = $1`,
			w.UserID, w.Amount)
		if err != nil {
			return nil, fmt.Errorf("refund balance: %w", err)
		}
		if err := journal(ctx, tx, w.UserID, w.Amount, fmt.Sprintf("withdrawal %s rejected", w.PublicID)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return w, nil
}
