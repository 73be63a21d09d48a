// Package metrics — счётчики Prometheus для get-or-create.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	coalesced      prometheus.Counter
	failures       *prometheus.CounterVec
	encodeDuration prometheus.Histogram
}

// New регистрирует коллекторы в reg (nil — prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrcode",
			Name:      "cache_hits_total",
			Help:      "Requests served from the artifact cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrcode",
			Name:      "cache_misses_total",
			Help:      "Requests that had to encode and publish an artifact.",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrcode",
			Name:      "coalesced_total",
			Help:      "Miss results shared between concurrent callers of the same key.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrcode",
			Name:      "failures_total",
			Help:      "Failed get-or-create calls by error kind.",
		}, []string{"kind"}),
		encodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qrcode",
			Name:      "encode_publish_duration_seconds",
			Help:      "Time spent on the miss path: encode, measure, publish and cache write.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.cacheHits, m.cacheMisses, m.coalesced, m.failures, m.encodeDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Все методы допускают nil-получатель: метрики необязательны.

func (m *Metrics) Hit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) Miss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) Coalesced() {
	if m != nil {
		m.coalesced.Inc()
	}
}

func (m *Metrics) Failure(kind string) {
	if m != nil {
		m.failures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveMiss(d time.Duration) {
	if m != nil {
		m.encodeDuration.Observe(d.Seconds())
	}
}
