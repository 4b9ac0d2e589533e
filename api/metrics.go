package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/wager-engine/engine"
)

// Settlement sources, used as the "source" label.
const (
	SourceStateless = "stateless"
	SourceMatch     = "match"
	SourceResettle  = "resettle"
)

// Metrics holds the server's Prometheus collectors on a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	parses      *prometheus.CounterVec
	settlements *prometheus.CounterVec
	obligations prometheus.Histogram
	transfers   prometheus.Histogram
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wager",
			Subsystem: "parser",
			Name:      "parses_total",
			Help:      "Wager texts parsed, by outcome (parsed or ask_again).",
		}, []string{"outcome"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wager",
			Subsystem: "engine",
			Name:      "settlements_total",
			Help:      "Settlements computed, by source.",
		}, []string{"source"}),
		obligations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wager",
			Subsystem: "engine",
			Name:      "obligations_per_settlement",
			Help:      "Raw payment obligations produced per settlement.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		transfers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wager",
			Subsystem: "engine",
			Name:      "transfers_per_settlement",
			Help:      "Payments left after consolidation per settlement.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12},
		}),
	}
	m.registry.MustRegister(m.parses, m.settlements, m.obligations, m.transfers)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveParse counts one parse attempt.
func (m *Metrics) ObserveParse(recognized bool) {
	if m == nil {
		return
	}
	outcome := "parsed"
	if !recognized {
		outcome = CodeAskAgain
	}
	m.parses.WithLabelValues(outcome).Inc()
}

// ObserveSettlement records one computed settlement.
func (m *Metrics) ObserveSettlement(source string, s engine.Settlement) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(source).Inc()
	m.obligations.Observe(float64(len(s.Obligations)))
	m.transfers.Observe(float64(s.Consolidated.Transfers()))
}
