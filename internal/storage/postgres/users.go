package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/goldbot/internal/domain"
)

const userColumns = `id, tg_id, first_name, username, balance, completed_tasks, is_banned, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.Username, &u.Balance,
		&u.CompletedTasks, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindOrCreateUser(ctx context.Context, tgID int64, firstName, username string) (*domain.User, bool, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID)
	u, err := scanUser(row)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	// Concurrent first interactions race on the insert; ON CONFLICT keeps
	// it a single row and returns it either way.
	row = s.db.QueryRow(ctx, `
		INSERT INTO users (tg_id, first_name, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (tg_id) DO UPDATE SET updated_at = now()
		RETURNING `+userColumns, tgID, firstName, username)
	u, err = scanUser(row)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

func (s *Store) GetUser(ctx context.Context, tgID int64) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *Store) ListUserTelegramIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT tg_id FROM users WHERE NOT is_banned ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SetBanned(ctx context.Context, tgID int64, banned bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET is_banned = $2, updated_at = now() WHERE tg_id = $1`, tgID, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) AdjustBalance(ctx context.Context, tgID int64, delta int64, description string) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID, balance int64
	err = tx.QueryRow(ctx,
		`SELECT id, balance FROM users WHERE tg_id = $1 FOR UPDATE`, tgID).Scan(&userID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("lock user: %w", err)
	}

	if balance+delta < 0 {
		return 0, domain.ErrInsufficientBalance
	}

	var newBalance int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $2, updated_at = now() WHERE id = $1 RETURNING balance`,
		userID, delta).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}

	if err := journal(ctx, tx, userID, delta, description); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newBalance, nil
}

// journal writes a gold_transactions row for a signed balance delta.
func journal(ctx context.Context, tx pgx.Tx, userID, delta int64, description string) error {
	txType := domain.TxTypeCredit
	amount := delta
	if delta < 0 {
		txType = domain.TxTypeDebit
		amount = -delta
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO gold_transactions (user_id, amount, tx_type, description)
		VALUES ($1, $2, $3, $4)`, userID, amount, string(txType), description)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}
