package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for directive construction.
type Metrics struct {
	// Built directives by direction and xcm version
	DirectivesBuilt *prometheus.CounterVec

	// Failed builds by error code
	DirectiveFailures *prometheus.CounterVec

	BuildDuration prometheus.Histogram

	// Asset resolutions by resolver source
	AssetResolutions *prometheus.CounterVec
}

// New registers directive metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		DirectivesBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xcmkit_directives_built_total",
			Help: "Total transfer directives built by direction and xcm version",
		}, []string{"direction", "version"}),

		DirectiveFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xcmkit_directive_failures_total",
			Help: "Total failed directive builds by error code",
		}, []string{"code"}),

		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "xcmkit_directive_build_duration_seconds",
			Help:    "Duration of directive construction including asset resolution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		AssetResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xcmkit_asset_resolutions_total",
			Help: "Total asset specifier resolutions by source",
		}, []string{"source"}),
	}
}

func (m *Metrics) IncrementBuilt(direction, version string) {
	if m != nil {
		m.DirectivesBuilt.WithLabelValues(direction, version).Inc()
	}
}

func (m *Metrics) IncrementFailure(code string) {
	if m != nil {
		m.DirectiveFailures.WithLabelValues(code).Inc()
	}
}

// ObserveBuildDuration records the total build time.
func (m *Metrics) ObserveBuildDuration(d time.Duration) {
	if m != nil {
		m.BuildDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementResolution(source string) {
	if m != nil {
		m.AssetResolutions.WithLabelValues(source).Inc()
	}
}
