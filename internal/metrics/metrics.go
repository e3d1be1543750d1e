package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that produced a result.
	OutcomeSuccess = "success"
	// OutcomeRejected labels analyses refused because of unusable input.
	OutcomeRejected = "rejected"
	// OutcomeError labels analyses that failed inside the engine.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siliconsage",
			Name:      "analyses_total",
			Help:      "Total number of build analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "siliconsage",
			Name:      "analysis_seconds",
			Help:      "Build analysis latency in seconds.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
	)

	bottlenecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siliconsage",
			Name:      "bottlenecks_total",
			Help:      "Bottleneck verdicts issued, partitioned by component and severity.",
		},
		[]string{"component", "severity"},
	)

	integrityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "siliconsage",
			Name:      "integrity_score",
			Help:      "Distribution of build integrity scores.",
			Buckets:   []float64{20, 40, 60, 70, 80, 90, 95, 100},
		},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "siliconsage",
			Name:      "rate_limited_total",
			Help:      "Requests refused by the HTTP rate limiter.",
		},
	)
)

// Register attaches the analysis engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		bottlenecksTotal,
		integrityScore,
		rateLimitedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError && label != OutcomeRejected {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveVerdict records the bottleneck classification and integrity score of a finished analysis.
func ObserveVerdict(component, severity string, score int) {
	bottlenecksTotal.WithLabelValues(component, severity).Inc()
	integrityScore.Observe(float64(score))
}

// ObserveRateLimited counts a request refused by the rate limiter.
func ObserveRateLimited() {
	rateLimitedTotal.Inc()
}
