// Package metrics exposes Prometheus counters for the bot's core flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var UpdatesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "goldbot_updates_processed_total",
	Help: "Inbound Telegram updates processed, by update type.",
}, []string{"type"})

var TaskCompletions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "goldbot_task_completions_total",
	Help: "Task completions that credited a reward.",
})

var WithdrawalsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "goldbot_withdrawals_created_total",
	Help: "Withdrawal requests created (pending, balance debited).",
})

var WithdrawalsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "goldbot_withdrawals_resolved_total",
	Help: "Withdrawal requests resolved, by decision.",
}, []string{"decision"})

var BroadcastMessages = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "goldbot_broadcast_messages_total",
	Help: "Broadcast deliveries, by outcome.",
}, []string{"outcome"})
