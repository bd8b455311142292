package handler

import (
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		data string
		want Action
	}{
		{"menu", Action{Kind: ActionMenu}},
		{"profile", Action{Kind: ActionProfile}},
		{"tasks", Action{Kind: ActionTasks}},
		{"withdraw", Action{Kind: ActionWithdraw}},
		{"check_sponsors", Action{Kind: ActionCheckSponsors}},
		{"admin", Action{Kind: ActionAdmin}},
		{"a_stats", Action{Kind: ActionAdminStats}},
		{"a_w", Action{Kind: ActionAdminWithdrawals}},
		{"a_broadcast", Action{Kind: ActionAdminBroadcast}},
		{"task:7", Action{Kind: ActionTaskOpen, ID: 7}},
		{"task_check:42", Action{Kind: ActionTaskCheck, ID: 42}},
		{"a_w_ok:3", Action{Kind: ActionAdminApprove, ID: 3}},
		{"a_w_no:3", Action{Kind: ActionAdminReject, ID: 3}},
		{"a_sponsor_off:12", Action{Kind: ActionAdminSponsorToggle, ID: 12}},
		{"a_task_off:5", Action{Kind: ActionAdminTaskToggle, ID: 5}},
	}
	for _, tc := range cases {
		got, err := ParseAction(tc.data)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.data, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: got %+v, want %+v", tc.data, got, tc.want)
		}
	}
}

func TestParseActionRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"unknown",
		"menu:1",           // plain token with a stray suffix
		"task",             // id token without an id
		"task:",            // empty id
		"task:abc",         // non-numeric id
		"task:0",           // ids start at 1
		"task:-3",          // negative id
		"task:7:9",         // extra suffix
		"a_w_ok",           // admin id token without an id
		"TASK:7",           // tags are case-sensitive
		" menu",            // no trimming
		"task_check:1.5",   // fractional id
		"a_sponsor_off:1e3", // scientific notation is not an id
	}
	for _, data := range bad {
		if _, err := ParseAction(data); !errors.Is(err, ErrBadAction) {
			t.Errorf("%q: expected ErrBadAction, got %v", data, err)
		}
	}
}

func TestIsAdminAction(t *testing.T) {
	adminTokens := []string{"admin", "a_stats", "a_w", "a_w_ok:1", "a_w_no:1",
		"a_sponsors", "a_sponsor_add", "a_sponsor_off:1",
		"a_tasks", "a_task_add", "a_task_off:1", "a_balance", "a_broadcast"}
	for _, data := range adminTokens {
		a, err := ParseAction(data)
		if err != nil {
			t.Fatalf("%q: %v", data, err)
		}
		if !a.IsAdminAction() {
			t.Errorf("%q: expected admin action", data)
		}
	}

	userTokens := []string{"menu", "profile", "tasks", "task:1", "task_check:1", "withdraw", "check_sponsors"}
	for _, data := range userTokens {
		a, err := ParseAction(data)
		if err != nil {
			t.Fatalf("%q: %v", data, err)
		}
		if a.IsAdminAction() {
			t.Errorf("%q: must not be an admin action", data)
		}
	}
}
