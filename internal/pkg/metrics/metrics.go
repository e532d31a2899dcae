// Package metrics 引擎的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// intervalsStarted 按类型统计开始的区间
	intervalsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timifocus",
		Subsystem: "ledger",
		Name:      "intervals_started_total",
		Help:      "Intervals started, by kind",
	}, []string{"kind"})

	// intervalsClosed 首次关闭才计数，幂等重复调用不计
	intervalsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timifocus",
		Subsystem: "ledger",
		Name:      "intervals_closed_total",
		Help:      "Intervals closed, by kind and outcome",
	}, []string{"kind", "outcome"})

	startConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "timifocus",
		Subsystem: "ledger",
		Name:      "start_conflicts_total",
		Help:      "Start attempts rejected because an interval was already open",
	})

	notifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timifocus",
		Subsystem: "notifier",
		Name:      "calls_total",
		Help:      "Detached ledger calls issued by the completion notifier",
	}, []string{"op", "result"})

	achievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timifocus",
		Subsystem: "progress",
		Name:      "achievements_unlocked_total",
		Help:      "Achievements unlocked, by key",
	}, []string{"key"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timifocus",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "status"})
)

func RecordIntervalStarted(kind string) {
	intervalsStarted.WithLabelValues(kind).Inc()
}

func RecordIntervalClosed(kind, outcome string) {
	intervalsClosed.WithLabelValues(kind, outcome).Inc()
}

func RecordStartConflict() {
	startConflicts.Inc()
}

// RecordNotifierCall result: ok, retry, dropped
func RecordNotifierCall(op, result string) {
	notifierCalls.WithLabelValues(op, result).Inc()
}

func RecordAchievementUnlocked(key string) {
	achievementsUnlocked.WithLabelValues(key).Inc()
}

func RecordHTTP(route, status string, seconds float64) {
	httpLatency.WithLabelValues(route, status).Observe(seconds)
}
