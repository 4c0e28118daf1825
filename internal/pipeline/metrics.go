package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymweek",
		Subsystem: "ingest",
		Name:      "runs_total",
		Help:      "Ingestion runs by outcome.",
	}, []string{"outcome"})

	skipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gymweek",
		Subsystem: "ingest",
		Name:      "skips_total",
		Help:      "Runs short-circuited by the freshness evaluator.",
	})

	daysPersistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gymweek",
		Subsystem: "ingest",
		Name:      "days_persisted_total",
		Help:      "Day schedules newly persisted.",
	})

	lastSuccessGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymweek",
		Subsystem: "ingest",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent stored submission.",
	})
)

func init() {
	prometheus.MustRegister(runsTotal, skipsTotal, daysPersistedTotal, lastSuccessGauge)
}

func recordRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

func recordSkip() {
	skipsTotal.Inc()
	runsTotal.WithLabelValues("skipped").Inc()
}

func recordDayPersisted() {
	daysPersistedTotal.Inc()
}

func recordSuccessWatermark(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSuccessGauge.Set(float64(ts.Unix()))
}
