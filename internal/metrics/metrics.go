// Package metrics exposes Prometheus counters for assistant turns. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure kinds.
const (
	FailureParse          = "parse"
	FailureDivisionByZero = "division_by_zero"
	FailureOverflow       = "overflow"
	FailurePersistence    = "persistence"
	FailurePanic          = "panic"
)

type Collector struct {
	turns    *prometheus.CounterVec
	intents  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

// New registers the assistant collectors on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Conversation turns handled, by language and response regime.",
		}, []string{"language", "regime"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_intents_total",
			Help: "Classified intents.",
		}, []string{"intent"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_failures_total",
			Help: "Failures turned into user-facing replies, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "Time to produce one reply.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	for _, col := range []prometheus.Collector{c.turns, c.intents, c.failures, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) Turn(language, regime string, took time.Duration) {
	if c == nil {
		return
	}
	c.turns.WithLabelValues(language, regime).Inc()
	c.duration.Observe(took.Seconds())
}

func (c *Collector) Intent(intent string) {
	if c == nil {
		return
	}
	c.intents.WithLabelValues(intent).Inc()
}

func (c *Collector) Failure(kind string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(kind).Inc()
}
