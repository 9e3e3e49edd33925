package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of the analysis pipeline
type Metrics struct {
	Analyses  *prometheus.CounterVec
	Documents *prometheus.CounterVec
	Duration  prometheus.Histogram
	LastVaR   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them when reg is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundrisk_analyses_total",
			Help: "Completed analyses by validation status.",
		}, []string{"status"}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundrisk_documents_total",
			Help: "Statement documents seen by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundrisk_analysis_duration_seconds",
			Help:    "Time to aggregate and compute one batch.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		LastVaR: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fundrisk_last_var_ratio",
			Help: "Headline VaR of the most recent successful analysis, as a fraction of NAV.",
		}, []string{"horizon"}),
	}

	if reg != nil {
		reg.MustRegister(m.Analyses, m.Documents, m.Duration, m.LastVaR)
	}
	return m
}
