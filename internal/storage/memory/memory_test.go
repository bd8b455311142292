package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/set-night/goldbot/internal/domain"
	"github.com/set-night/goldbot/internal/storage"
)

func newUser(t *testing.T, s *Store, tgID int64) *domain.User {
	t.Helper()
	u, _, err := s.FindOrCreateUser(context.Background(), tgID, "Test", "test")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func newTask(t *testing.T, s *Store, reward int64) *domain.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), storage.NewTask{
		Title:      "join channel",
		Reward:     reward,
		ChannelRef: "@channel",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestFindOrCreateUserIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	u1, created, err := s.FindOrCreateUser(ctx, 42, "A", "a")
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	u2, created, err := s.FindOrCreateUser(ctx, 42, "A", "a")
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("expected same user row, got %d and %d", u1.ID, u2.ID)
	}
}

func TestCompleteTaskCreditsExactlyOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	task := newTask(t, s, 50)

	if _, err := s.CompleteTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if _, err := s.CompleteTask(ctx, u.ID, task.ID); !errors.Is(err, domain.ErrTaskAlreadyDone) {
		t.Fatalf("second completion: expected ErrTaskAlreadyDone, got %v", err)
	}

	got, err := s.GetUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Balance != 50 {
		t.Fatalf("expected balance 50 after double completion, got %d", got.Balance)
	}
	if got.CompletedTasks != 1 {
		t.Fatalf("expected 1 completed task, got %d", got.CompletedTasks)
	}
}

func TestCompleteTaskConcurrentDoubleTap(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	task := newTask(t, s, 50)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CompleteTask(ctx, u.ID, task.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes int
	for err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, domain.ErrTaskAlreadyDone) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful completion, got %d", successes)
	}

	got, _ := s.GetUser(ctx, 1)
	if got.Balance != 50 || got.CompletedTasks != 1 {
		t.Fatalf("expected balance 50 and 1 completion, got %d and %d", got.Balance, got.CompletedTasks)
	}
}

func TestCompleteInactiveTaskNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	task := newTask(t, s, 50)

	if err := s.SetTaskActive(ctx, task.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CompleteTask(ctx, u.ID, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestListAvailableTasksExcludesCompleted(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	done := newTask(t, s, 10)
	open := newTask(t, s, 20)

	if _, err := s.CompleteTask(ctx, u.ID, done.ID); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ListAvailableTasks(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ID != open.ID {
		t.Fatalf("expected only task %d available, got %+v", open.ID, tasks)
	}
}

func TestConcurrentWithdrawalsSpendBalanceOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	if _, err := s.AdjustBalance(ctx, 1, 100, "seed"); err != nil {
		t.Fatal(err)
	}

	// N concurrent requests for the full balance: exactly one may pass.
	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateWithdrawal(ctx, u.ID, 100, "acc")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes int
	for err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful withdrawal, got %d", successes)
	}

	got, _ := s.GetUser(ctx, 1)
	if got.Balance != 0 {
		t.Fatalf("expected balance 0, got %d", got.Balance)
	}
	pending, _ := s.ListPendingWithdrawals(ctx)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending withdrawal, got %d", len(pending))
	}
}

func TestRejectRefundsExactAmount(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	if _, err := s.AdjustBalance(ctx, 1, 80, "seed"); err != nil {
		t.Fatal(err)
	}

	w, err := s.CreateWithdrawal(ctx, u.ID, 80, "acc")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetUser(ctx, 1); got.Balance != 0 {
		t.Fatalf("expected balance 0 after debit, got %d", got.Balance)
	}

	resolved, err := s.ResolveWithdrawal(ctx, w.ID, 99, false, "no")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != domain.WithdrawalRejected {
		t.Fatalf("expected rejected, got %s", resolved.Status)
	}
	if got, _ := s.GetUser(ctx, 1); got.Balance != 80 {
		t.Fatalf("expected refunded balance 80, got %d", got.Balance)
	}
}

func TestResolveTwiceIsNoOp(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)
	s.AdjustBalance(ctx, 1, 100, "seed")

	w, err := s.CreateWithdrawal(ctx, u.ID, 100, "acc")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.ResolveWithdrawal(ctx, w.ID, 99, true, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ResolveWithdrawal(ctx, w.ID, 99, false, ""); !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}

	// The rejected-branch refund must not have run.
	if got, _ := s.GetUser(ctx, 1); got.Balance != 0 {
		t.Fatalf("expected balance 0 after approve + duplicate reject, got %d", got.Balance)
	}
}

func TestAdjustBalanceCannotGoNegative(t *testing.T) {
	s := New()
	ctx := context.Background()
	newUser(t, s, 1)

	if _, err := s.AdjustBalance(ctx, 1, -10, "oops"); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

// TestLedgerConservation drives a mixed scenario and checks the
// balance equals credits minus debits as recorded in the journal.
func TestLedgerConservation(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser(t, s, 1)

	t1 := newTask(t, s, 50)
	t2 := newTask(t, s, 70)
	s.CompleteTask(ctx, u.ID, t1.ID)
	s.CompleteTask(ctx, u.ID, t2.ID)

	w1, _ := s.CreateWithdrawal(ctx, u.ID, 100, "acc") // approved: debit stands
	w2, _ := s.CreateWithdrawal(ctx, u.ID, 20, "acc")  // rejected: refunded
	s.ResolveWithdrawal(ctx, w1.ID, 9, true, "")
	s.ResolveWithdrawal(ctx, w2.ID, 9, false, "")

	var journalSum int64
	for _, tx := range s.Journal() {
		switch tx.TxType {
		case domain.TxTypeCredit:
			journalSum += tx.Amount
		case domain.TxTypeDebit:
			journalSum -= tx.Amount
		}
	}

	got, _ := s.GetUser(ctx, 1)
	if got.Balance != 20 {
		t.Fatalf("expected balance 20 (50+70-100-20+20), got %d", got.Balance)
	}
	if journalSum != got.Balance {
		t.Fatalf("journal sum %d does not match balance %d", journalSum, got.Balance)
	}
}
