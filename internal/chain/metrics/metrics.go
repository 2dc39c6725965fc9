package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments chain RPC calls.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	BreakerOpen     *prometheus.GaugeVec
}

// New registers chain client metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xcmkit_chain_request_duration_seconds",
			Help:    "Duration of chain RPC requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"chain", "method", "outcome"}),
		BreakerOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "xcmkit_chain_breaker_open",
			Help: "1 while the circuit breaker for a chain is open",
		}, []string{"chain"}),
	}
}

func (m *Metrics) ObserveRequest(chain, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(chain, method, outcome).Observe(d.Seconds())
}

func (m *Metrics) SetBreakerOpen(chain string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(chain).Set(v)
}
