package judge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records grading activity. A nil *Metrics records nothing.
type Metrics struct {
	trials   *prometheus.CounterVec
	verdicts *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the grading collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmjudge_trials_total",
				Help: "Total number of grading trials by result",
			},
			[]string{"result"},
		),
		verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmjudge_verdicts_total",
				Help: "Total number of verdicts by kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fsmjudge_grading_duration_seconds",
				Help:    "Duration of grading runs",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.trials, m.verdicts, m.duration)
	}
	return m
}

func (m *Metrics) trial(passed bool) {
	if m == nil {
		return
	}
	result := "fail"
	if passed {
		result = "pass"
	}
	m.trials.WithLabelValues(result).Inc()
}

func (m *Metrics) verdict(v Verdict, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(string(v.Kind)).Inc()
	m.duration.Observe(elapsed.Seconds())
}
