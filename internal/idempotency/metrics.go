package idempotency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for executeOutcomes.
const (
	labelLeader         = "leader"
	labelReplay         = "replay"
	labelFollowerReplay = "follower_replay"
	labelRaceReplay     = "race_replay"
	labelPromoted       = "promoted"
	labelConflict       = "conflict"
	labelInProgress     = "in_progress"
	labelTooLarge       = "payload_too_large"
	labelWorkFailed     = "work_failed"
	labelCompleteLost   = "complete_lost"
	labelError          = "error"
)

var (
	executeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "party360_idempotency_outcomes_total",
		Help: "Idempotent executions by operation code and outcome",
	}, []string{"opcode", "outcome"})

	followerWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "party360_idempotency_follower_wait_seconds",
		Help:    "Time followers spent polling for a leader's result",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5},
	}, []string{"opcode", "resolved"})
)
