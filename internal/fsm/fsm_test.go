package fsm

import "testing"

func TestIdleByDefault(t *testing.T) {
	r := NewRegistry()
	if st := r.Get(1); st.Step != StepIdle {
		t.Fatalf("expected StepIdle, got %v", st.Step)
	}
}

func TestAdvanceKeepsAccumulator(t *testing.T) {
	r := NewRegistry()
	r.Start(1, State{Step: StepWithdrawAmount})
	r.Set(1, State{Step: StepWithdrawAccount, WithdrawAmount: 250})

	st := r.Get(1)
	if st.Step != StepWithdrawAccount {
		t.Fatalf("expected StepWithdrawAccount, got %v", st.Step)
	}
	if st.WithdrawAmount != 250 {
		t.Fatalf("expected accumulated amount 250, got %d", st.WithdrawAmount)
	}
}

func TestStartReportsAbandonedFlow(t *testing.T) {
	r := NewRegistry()

	if abandoned := r.Start(1, State{Step: StepWithdrawAmount}); abandoned {
		t.Fatal("starting from Idle must not report an abandoned flow")
	}
	if abandoned := r.Start(1, State{Step: StepBroadcastText}); !abandoned {
		t.Fatal("starting over a mid-flow slot must report abandonment")
	}

	// Last write wins: the new flow owns the slot.
	if st := r.Get(1); st.Step != StepBroadcastText {
		t.Fatalf("expected StepBroadcastText, got %v", st.Step)
	}
}

func TestClearReturnsToIdle(t *testing.T) {
	r := NewRegistry()
	r.Start(7, State{Step: StepTaskTitle, TaskTitle: "x"})
	r.Clear(7)
	if st := r.Get(7); st.Step != StepIdle || st.TaskTitle != "" {
		t.Fatalf("expected empty Idle state, got %+v", st)
	}
}

func TestStatesAreIndependentPerUser(t *testing.T) {
	r := NewRegistry()
	r.Start(1, State{Step: StepWithdrawAmount})
	r.Start(2, State{Step: StepBroadcastText})

	if st := r.Get(1); st.Step != StepWithdrawAmount {
		t.Fatalf("user 1: expected StepWithdrawAmount, got %v", st.Step)
	}
	if st := r.Get(2); st.Step != StepBroadcastText {
		t.Fatalf("user 2: expected StepBroadcastText, got %v", st.Step)
	}
}
