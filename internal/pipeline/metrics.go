package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crowsnest-io/crowsnest/internal/intel"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crowsnest",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4m
		},
		[]string{"mode"},
	)

	sourceRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Subsystem: "pipeline",
			Name:      "source_runs_total",
			Help:      "Collector runs by source and outcome",
		},
		[]string{"source", "status"},
	)

	sourceSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Subsystem: "pipeline",
			Name:      "source_signals_total",
			Help:      "Raw signals collected per source",
		},
		[]string{"source"},
	)

	insightsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Subsystem: "pipeline",
			Name:      "insights_generated_total",
			Help:      "Contextual insights produced by the intelligence stage",
		},
	)

	alertLevelGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "crowsnest",
			Subsystem: "pipeline",
			Name:      "alert_level",
			Help:      "Current system alert level (0=low, 1=medium, 2=high)",
		},
	)
)

func observeRun(mode, status string, d time.Duration) {
	runsTotal.WithLabelValues(mode, status).Inc()
	runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func observeSource(source, status string, signals int) {
	sourceRunsTotal.WithLabelValues(source, status).Inc()
	if signals > 0 {
		sourceSignalsTotal.WithLabelValues(source).Add(float64(signals))
	}
}

func observeAnalysis(report *intel.Report) {
	insightsGenerated.Add(float64(len(report.ContextualInsights)))

	switch alertLevel(report) {
	case "high":
		alertLevelGauge.Set(2)
	case "medium":
		alertLevelGauge.Set(1)
	default:
		alertLevelGauge.Set(0)
	}
}
