// Package memory implements the ledger store in process memory. It keeps
// the same transactional contract as the postgres backend by serializing
// every operation behind one mutex, which makes it suitable for tests
// and for local development without a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

type Store struct {
	mu sync.Mutex

	users       map[int64]*domain.User // by internal id
	usersByTgID map[int64]int64
	sponsors    []*domain.Sponsor
	tasks       map[int64]*domain.Task
	taskOrder   []int64
	completions map[[2]int64]*domain.TaskCompletion // (taskID, userID)
	withdrawals map[int64]*domain.Withdrawal
	wdOrder     []int64
	admins      map[int64]domain.AdminRole
	journal     []domain.Transaction

	nextUserID    int64
	nextSponsorID int64
	nextTaskID    int64
	nextWdID      int64
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:       make(map[int64]*domain.User),
		usersByTgID: make(map[int64]int64),
		tasks:       make(map[int64]*domain.Task),
		completions: make(map[[2]int64]*domain.TaskCompletion),
		withdrawals: make(map[int64]*domain.Withdrawal),
		admins:      make(map[int64]domain.AdminRole),
	}
}

func (s *Store) FindOrCreateUser(_ context.Context, tgID int64, firstName, username string) (*domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.usersByTgID[tgID]; ok {
		u := *s.users[id]
		return &u, false, nil
	}

	s.nextUserID++
	now := time.Now()
	u := &domain.User{
		ID:         s.nextUserID,
		TelegramID: tgID,
		FirstName:  firstName,
		Username:   username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.users[u.ID] = u
	s.usersByTgID[tgID] = u.ID
	out := *u
	return &out, true, nil
}

func (s *Store) GetUser(_ context.Context, tgID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByTgIDLocked(tgID)
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) userByTgIDLocked(tgID int64) (*domain.User, error) {
	id, ok := s.usersByTgID[tgID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}

func (s *Store) ListUserTelegramIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.users))
	for uid := int64(1); uid <= s.nextUserID; uid++ {
		if u, ok := s.users[uid]; ok && !u.IsBanned {
			ids = append(ids, u.TelegramID)
		}
	}
	return ids, nil
}

func (s *Store) SetBanned(_ context.Context, tgID int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByTgID[tgID]
	if !ok {
		return domain.ErrUserNotFound
	}
	s.users[id].IsBanned = banned
	s.users[id].UpdatedAt = time.Now()
	return nil
}

func (s *Store) AdjustBalance(_ context.Context, tgID int64, delta int64, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByTgID[tgID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	u := s.users[id]
	if u.Balance+delta < 0 {
		return 0, domain.ErrInsufficientBalance
	}
	u.Balance += delta
	u.UpdatedAt = time.Now()
	s.journalLocked(u.ID, delta, description)
	return u.Balance, nil
}

func (s *Store) journalLocked(userID, delta int64, description string) {
	txType := domain.TxTypeCredit
	amount := delta
	if delta < 0 {
		txType = domain.TxTypeDebit
		amount = -delta
	}
	s.journal = append(s.journal, domain.Transaction{
		ID:          int64(len(s.journal) + 1),
		UserID:      userID,
		Amount:      amount,
		TxType:      txType,
		Description: description,
		CreatedAt:   time.Now(),
	})
}

// Journal returns a copy of the transaction journal, oldest first.
func (s *Store) Journal() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, len(s.journal))
	copy(out, s.journal)
	return out
}

func (s *Store) CreateSponsor(_ context.Context, channelRef, title string) (*domain.Sponsor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSponsorID++
	sp := &domain.Sponsor{
		ID:         s.nextSponsorID,
		ChannelRef: channelRef,
		Title:      title,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	s.sponsors = append(s.sponsors, sp)
	out := *sp
	return &out, nil
}

func (s *Store) ListSponsors(_ context.Context) ([]domain.Sponsor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Sponsor, 0, len(s.sponsors))
	for _, sp := range s.sponsors {
		out = append(out, *sp)
	}
	return out, nil
}

func (s *Store) ListActiveSponsors(_ context.Context) ([]domain.Sponsor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Sponsor
	for _, sp := range s.sponsors {
		if sp.IsActive {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (s *Store) SetSponsorActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.sponsors {
		if sp.ID == id {
			sp.IsActive = active
			return nil
		}
	}
	return domain.ErrSponsorNotFound
}

func (s *Store) CreateTask(_ context.Context, nt storage.NewTask) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	t := &domain.Task{
		ID:          s.nextTaskID,
		Type:        domain.TaskTypeSubscribe,
		Title:       nt.Title,
		Description: nt.Description,
		Reward:      nt.Reward,
		ChannelRef:  nt.ChannelRef,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	out := *t
	return &out, nil
}

func (s *Store) GetActiveTask(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || !t.IsActive {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (s *Store) ListTasks(_ context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		out = append(out, *s.tasks[id])
	}
	return out, nil
}

func (s *Store) ListAvailableTasks(_ context.Context, userID int64) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Task
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		if !t.IsActive {
			continue
		}
		if c, ok := s.completions[[2]int64{t.ID, userID}]; ok && c.Status == domain.CompletionDone {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *Store) SetTaskActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.IsActive = active
	return nil
}

func (s *Store) CompleteTask(_ context.Context, userID, taskID int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok || !t.IsActive {
		return nil, domain.ErrTaskNotFound
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	key := [2]int64{taskID, userID}
	if c, ok := s.completions[key]; ok && c.Status == domain.CompletionDone {
		return nil, domain.ErrTaskAlreadyDone
	}

	s.completions[key] = &domain.TaskCompletion{
		ID:        int64(len(s.completions) + 1),
		TaskID:    taskID,
		UserID:    userID,
		Status:    domain.CompletionDone,
		CheckedAt: time.Now(),
	}
	u.Balance += t.Reward
	u.CompletedTasks++
	u.UpdatedAt = time.Now()
	s.journalLocked(userID, t.Reward, fmt.Sprintf("task reward: %s", t.Title))

	out := *t
	return &out, nil
}

func (s *Store) CreateWithdrawal(_ context.Context, userID, amount int64, account string) (*domain.Withdrawal, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Balance < amount {
		return nil, domain.ErrInsufficientBalance
	}

	u.Balance -= amount
	u.UpdatedAt = time.Now()

	s.nextWdID++
	w := &domain.Withdrawal{
		ID:        s.nextWdID,
		PublicID:  uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Account:   account,
		Status:    domain.WithdrawalPending,
		CreatedAt: time.Now(),
	}
	s.withdrawals[w.ID] = w
	s.wdOrder = append(s.wdOrder, w.ID)
	s.journalLocked(userID, -amount, fmt.Sprintf("withdrawal %s", w.PublicID))

	out := *w
	return &out, nil
}

func (s *Store) GetWithdrawal(_ context.Context, id int64) (*domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	out := *w
	return &out, nil
}

func (s *Store) ListPendingWithdrawals(_ context.Context) ([]domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Withdrawal
	for _, id := range s.wdOrder {
		if w := s.withdrawals[id]; w.Status == domain.WithdrawalPending {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (s *Store) ResolveWithdrawal(_ context.Context, id, adminTgID int64, approve bool, comment string) (*domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	if w.Resolved() {
		return nil, domain.ErrAlreadyResolved
	}

	now := time.Now()
	w.Comment = comment
	w.ProcessedBy = &adminTgID
	w.ProcessedAt = &now
	if approve {
		w.Status = domain.WithdrawalApproved
	} else {
		w.Status = domain.WithdrawalRejected
		u := s.users[w.UserID]
		u.Balance += w.Amount
		u.UpdatedAt = now
		s.journalLocked(w.UserID, w.Amount, fmt.Sprintf("withdrawal %s rejected", w.PublicID))
	}

	out := *w
	return &out, nil
}

func (s *Store) IsAdmin(_ context.Context, tgID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.admins[tgID]
	return ok, nil
}

func (s *Store) UpsertAdmin(_ context.Context, tgID int64, role domain.AdminRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[tgID] = role
	return nil
}

func (s *Store) RemoveAdmin(_ context.Context, tgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admins[tgID] == domain.RoleOwner {
		return nil
	}
	delete(s.admins, tgID)
	return nil
}

func (s *Store) Stats(_ context.Context) (*domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st domain.Stats
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(now.Weekday()))

	for _, u := range s.users {
		st.TotalUsers++
		if u.CreatedAt.After(dayStart) {
			st.UsersToday++
		}
		if u.CreatedAt.After(weekStart) {
			st.UsersThisWeek++
		}
		if u.IsBanned {
			st.BannedUsers++
		}
		st.TotalBalance += u.Balance
		st.CompletedTasks += int64(u.CompletedTasks)
	}
	for _, w := range s.withdrawals {
		switch w.Status {
		case domain.WithdrawalPending:
			st.PendingWithdrawals++
			st.PendingAmount += w.Amount
		case domain.WithdrawalApproved:
			st.PaidOutAmount += w.Amount
		}
	}
	return &st, nil
}
