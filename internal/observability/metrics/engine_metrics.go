// Package metrics exposes prometheus instrumentation for the billing engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scolara_engine_runs_total",
		Help: "Billing engine job invocations.",
	}, []string{"job"})

	engineJobErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scolara_engine_job_errors_total",
		Help: "Billing engine job failures.",
	}, []string{"job"})

	engineJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scolara_engine_job_duration_seconds",
		Help:    "Billing engine job wall time.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	ruleExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scolara_engine_rule_executions_total",
		Help: "Per-rule execution outcomes.",
	}, []string{"status"})

	feesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scolara_engine_fees_generated_total",
		Help: "Tuition fees materialized by the engine.",
	})

	overdueSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scolara_engine_overdue_swept_total",
		Help: "Pending fees flagged overdue by the sweep job.",
	})
)

func IncJobRun(job string) {
	engineRunsTotal.WithLabelValues(job).Inc()
}

func IncJobError(job string) {
	engineJobErrorsTotal.WithLabelValues(job).Inc()
}

func ObserveJobDuration(job string, d time.Duration) {
	engineJobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func ObserveRuleExecution(status string, feesGenerated int) {
	ruleExecutionsTotal.WithLabelValues(status).Inc()
	if feesGenerated > 0 {
		feesGeneratedTotal.Add(float64(feesGenerated))
	}
}

func AddOverdueSwept(count int64) {
	if count > 0 {
		overdueSweptTotal.Add(float64(count))
	}
}
