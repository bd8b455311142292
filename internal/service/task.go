package service

import (
	"context"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

type TaskService struct {
	store storage.Store
	gate  Membership
}

func NewTaskService(store storage.Store, gate Membership) *TaskService {
	return &TaskService{store: store, gate: gate}
}

// Open returns the task if it exists and is active.
func (s *TaskService) Open(ctx context.Context, taskID int64) (*domain.Task, error) {
	return s.store.GetActiveTask(ctx, taskID)
}

// Available lists active tasks the user has not completed yet.
func (s *TaskService) Available(ctx context.Context, userID int64) ([]domain.Task, error) {
	return s.store.ListAvailableTasks(ctx, userID)
}

func (s *TaskService) Create(ctx context.Context, t storage.NewTask) (*domain.Task, error) {
	if t.Reward <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	return s.store.CreateTask(ctx, t)
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.store.ListTasks(ctx)
}

func (s *TaskService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetTaskActive(ctx, id, active)
}

// AttemptCompletion runs the full check-and-credit flow:
// task lookup, membership gate, then the atomic completion record plus
// reward credit. The membership miss mutates nothing; a repeat attempt
// after completion fails with ErrTaskAlreadyDone and credits nothing.
func (s *TaskService) AttemptCompletion(ctx context.Context, user *domain.User, taskID int64) (*domain.Task, error) {
	task, err := s.store.GetActiveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.gate.IsMember(ctx, task.ChannelRef, user.TelegramID) {
		return nil, domain.ErrNotSubscribed
	}

	return s.store.CompleteTask(ctx, user.ID, taskID)
}
