// Package metrics exposes build statistics in the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/network"
)

// Build outcomes.
const (
	OutcomeClean    = "clean"    // no discarded rows and no findings
	OutcomeFindings = "findings" // warnings or discarded rows
	OutcomeFailed   = "failed"   // validation reported errors
)

// Registry holds the metrics of one process.
type Registry struct {
	BuildsTotal        *prometheus.CounterVec
	BuildDuration      prometheus.Histogram
	RowsTotal          *prometheus.CounterVec
	SourcesFailedTotal *prometheus.CounterVec
	Components         *prometheus.GaugeVec
	Findings           *prometheus.GaugeVec
	LastBuildTimestamp prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		BuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2mgc_builds_total",
				Help: "Completed case builds by outcome",
			},
			[]string{"outcome"},
		),
		BuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "csv2mgc_build_duration_seconds",
				Help:    "Time spent decoding and validating a case",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2mgc_rows_total",
				Help: "Source rows processed by kind and result",
			},
			[]string{"kind", "result"},
		),
		SourcesFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv2mgc_sources_failed_total",
				Help: "Sources skipped because they could not be read",
			},
			[]string{"kind"},
		),
		Components: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "csv2mgc_components",
				Help: "Components in the latest case by collection",
			},
			[]string{"kind"},
		),
		Findings: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "csv2mgc_findings",
				Help: "Validation findings of the latest case by code",
			},
			[]string{"code"},
		),
		LastBuildTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "csv2mgc_last_build_timestamp_seconds",
				Help: "Unix time the latest case was built",
			},
		),
	}
}

// ObserveBuild records a finished build.
func (r *Registry) ObserveBuild(res *network.Result) {
	r.BuildsTotal.WithLabelValues(Outcome(res)).Inc()
	r.BuildDuration.Observe(res.Duration.Seconds())
	r.LastBuildTimestamp.Set(float64(res.Built.Unix()))

	for _, s := range res.Stats {
		kind := string(s.Kind)
		if s.Failed {
			r.SourcesFailedTotal.WithLabelValues(kind).Inc()
			continue
		}
		r.RowsTotal.WithLabelValues(kind, "added").Add(float64(s.Added))
		r.RowsTotal.WithLabelValues(kind, "skipped").Add(float64(s.Skipped))
		r.RowsTotal.WithLabelValues(kind, "discarded").Add(float64(s.Discarded))
	}

	for _, kind := range model.CollectionKinds {
		r.Components.WithLabelValues(kind.Plural()).Set(float64(res.Case.Count(kind)))
	}

	r.Findings.Reset()
	for _, f := range res.Report.Findings {
		r.Findings.WithLabelValues(f.Code).Inc()
	}
}

// Outcome classifies a build result.
func Outcome(res *network.Result) string {
	if res.Report.Failed() {
		return OutcomeFailed
	}
	if len(res.Report.Findings) > 0 {
		return OutcomeFindings
	}
	for _, n := range res.Case.Discarded {
		if n > 0 {
			return OutcomeFindings
		}
	}
	return OutcomeClean
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying Prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
