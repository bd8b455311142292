package domain

import "time"

type TaskType string

const (
	TaskTypeSubscribe TaskType = "subscribe"
)

type Task struct {
	ID          int64
	Type        TaskType
	Title       string
	Description string
	Reward      int64
	ChannelRef  string
	IsActive    bool
	CreatedAt   time.Time
}

type CompletionStatus string

const (
	CompletionNew      CompletionStatus = "new"
	CompletionDone     CompletionStatus = "done"
	CompletionRejected CompletionStatus = "rejected"
)

// TaskCompletion is unique per (task, user). A pair transitions to done
// at most once; the reward is credited exactly once with that transition.
type TaskCompletion struct {
	ID        int64
	TaskID    int64
	UserID    int64
	Status    CompletionStatus
	CheckedAt time.Time
}
