package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

const taskColumns = `id, task_type, title, description, reward, channel_ref, is_active, created_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Type, &t.Title, &t.Description, &t.Reward,
		&t.ChannelRef, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()
	var out []domain.Task
	for rows.Next() {
		var t domain.Task
		err := rows.Scan(&t.ID, &t.Type, &t.Title, &t.Description, &t.Reward,
			&t.ChannelRef, &t.IsActive, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, nt storage.NewTask) (*domain.Task, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO tasks (task_type, title, description, reward, channel_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		string(domain.TaskTypeSubscribe), nt.Title, nt.Description, nt.Reward, nt.ChannelRef)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *Store) GetActiveTask(ctx context.Context, id int64) (*domain.Task, error) {
	row := s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND is_active`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return scanTasks(rows)
}

func (s *Store) ListAvailableTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks t
		WHERE t.is_active AND NOT EXISTS (
			SELECT 1 FROM task_completions c
			WHERE c.task_id = t.id AND c.user_id = $1 AND c.status = 'done'
		)
		ORDER BY t.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list available tasks: %w", err)
	}
	return scanTasks(rows)
}

func (s *Store) SetTaskActive(ctx context.Context, id int64, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE tasks SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set task active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *Store) CompleteTask(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND is_active FOR UPDATE`, taskID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	// The unique (task_id, user_id) constraint makes the transition to
	// done happen at most once; the WHERE clause lets an earlier
	// new/rejected row still be upgraded.
	tag, err := tx.Exec(ctx, `
		INSERT INTO task_completions (task_id, user_id, status, checked_at)
		VALUES ($1, $2, 'done', now())
		ON CONFLICT (task_id, user_id) DO UPDATE
			SET status = 'done', checked_at = now()
			WHERE task_completions.status <> 'done'`, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrTaskAlreadyDone
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET balance = balance + $2, completed_tasks = completed_tasks + 1,
			updated_at = now()
		WHERE id = $1`, userID, t.Reward)
	if err != nil {
		return nil, fmt.Errorf("credit reward: %w", err)
	}

	if err := journal(ctx, tx, userID, t.Reward, fmt.Sprintf("task reward: %s", t.Title)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}
