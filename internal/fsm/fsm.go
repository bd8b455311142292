// Package fsm holds per-user conversation state for multi-step input
// flows. State is in-memory only; nothing durable depends on it
// surviving a restart.
package fsm

import "sync"

// Step is the closed set of conversation steps. Idle means no flow is
// in progress.
type Step int

const (
	StepIdle Step = iota
	StepWithdrawAmount
	StepWithdrawAccount
	StepBroadcastText
	StepSponsorRef
	StepTaskTitle
	StepTaskReward
	StepTaskChannel
	StepBalanceTarget
	StepBalanceDelta
)

// State is one user's slot: the current step plus the input collected so
// far by the active flow.
type State struct {
	Step Step

	// Withdraw flow.
	WithdrawAmount int64

	// Task creation flow.
	TaskTitle       string
	TaskDescription string
	TaskReward      int64

	// Balance adjustment flow.
	BalanceTarget int64
}

// Registry keeps one State per user. A user is in exactly one state at a
// time; setting a new one overwrites whatever was there (last-write-wins).
type Registry struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[int64]State)}
}

// Get returns the user's current state; absent users are Idle.
func (r *Registry) Get(tgID int64) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[tgID]
}

// Set overwrites the user's slot. Used to advance within a flow.
func (r *Registry) Set(tgID int64, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[tgID] = st
}

// Start begins a new flow, overwriting the slot, and reports whether a
// non-Idle flow was abandoned by the overwrite.
func (r *Registry) Start(tgID int64, st State) (abandoned bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.states[tgID]
	r.states[tgID] = st
	return prev.Step != StepIdle
}

// Clear returns the user to Idle.
func (r *Registry) Clear(tgID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, tgID)
}
