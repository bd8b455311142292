package handler

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadAction marks a callback token that does not parse. The dispatcher
// acknowledges such presses and mutates nothing.
var ErrBadAction = errors.New("malformed action token")

// ActionKind is the closed set of button actions. Unknown tags are a
// parse error, not a silent fallthrough.
type ActionKind int

const (
	ActionMenu ActionKind = iota
	ActionProfile
	ActionTasks
	ActionTaskOpen
	ActionTaskCheck
	ActionWithdraw
	ActionCheckSponsors
	ActionAdmin
	ActionAdminStats
	ActionAdminWithdrawals
	ActionAdminApprove
	ActionAdminReject
	ActionAdminSponsors
	ActionAdminSponsorAdd
	ActionAdminSponsorToggle
	ActionAdminTasks
	ActionAdminTaskAdd
	ActionAdminTaskToggle
	ActionAdminBalance
	ActionAdminBroadcast
)

// Action is a parsed callback token: a kind plus the numeric suffix for
// the kinds that carry one.
type Action struct {
	Kind ActionKind
	ID   int64
}

// tokens without an id suffix
var plainActions = map[string]ActionKind{
	"menu":           ActionMenu,
	"profile":        ActionProfile,
	"tasks":          ActionTasks,
	"withdraw":       ActionWithdraw,
	"check_sponsors": ActionCheckSponsors,
	"admin":          ActionAdmin,
	"a_stats":        ActionAdminStats,
	"a_w":            ActionAdminWithdrawals,
	"a_sponsors":     ActionAdminSponsors,
	"a_sponsor_add":  ActionAdminSponsorAdd,
	"a_tasks":        ActionAdminTasks,
	"a_task_add":     ActionAdminTaskAdd,
	"a_balance":      ActionAdminBalance,
	"a_broadcast":    ActionAdminBroadcast,
}

// tokens that require an id suffix
var idActions = map[string]ActionKind{
	"task":          ActionTaskOpen,
	"task_check":    ActionTaskCheck,
	"a_w_ok":        ActionAdminApprove,
	"a_w_no":        ActionAdminReject,
	"a_sponsor_off": ActionAdminSponsorToggle,
	"a_task_off":    ActionAdminTaskToggle,
}

// ParseAction parses a callback data token like "tasks" or "task_check:42".
func ParseAction(data string) (Action, error) {
	head, tail, hasID := strings.Cut(data, ":")

	if kind, ok := plainActions[head]; ok {
		if hasID {
			return Action{}, ErrBadAction
		}
		return Action{Kind: kind}, nil
	}

	if kind, ok := idActions[head]; ok {
		if !hasID {
			return Action{}, ErrBadAction
		}
		id, err := strconv.ParseInt(tail, 10, 64)
		if err != nil || id <= 0 {
			return Action{}, ErrBadAction
		}
		return Action{Kind: kind, ID: id}, nil
	}

	return Action{}, ErrBadAction
}

// IsAdminAction reports whether the action belongs to the admin surface.
func (a Action) IsAdminAction() bool {
	switch a.Kind {
	case ActionAdmin, ActionAdminStats, ActionAdminWithdrawals,
		ActionAdminApprove, ActionAdminReject,
		ActionAdminSponsors, ActionAdminSponsorAdd, ActionAdminSponsorToggle,
		ActionAdminTasks, ActionAdminTaskAdd, ActionAdminTaskToggle,
		ActionAdminBalance, ActionAdminBroadcast:
		return true
	default:
		return false
	}
}
