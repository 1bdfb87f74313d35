package metrics

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Selection outcomes
const (
	OutcomeMatched   = "matched"
	OutcomeNotFound  = "not_found"
	OutcomeAmbiguous = "ambiguous"
)

// Binding outcomes
const (
	BindingBound   = "bound"
	BindingUnset   = "unset"
	BindingInvalid = "invalid"
)

// Metrics holds the scaffold collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cacheRebuilds   prometheus.Counter
	selections      *prometheus.CounterVec
	bindings        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cacheRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "scaffold_action_cache_rebuilds_total",
			Help: "Number of action candidate cache rebuilds.",
		}),
		selections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scaffold_action_selections_total",
			Help: "Action selection results by outcome.",
		}, []string{"outcome"}),
		bindings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scaffold_model_bindings_total",
			Help: "Entity binding results by model and outcome.",
		}, []string{"model", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scaffold_request_duration_seconds",
			Help:    "Duration of CRUD requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scaffold_requests_total",
			Help: "Total number of CRUD requests.",
		}, []string{"route", "method", "status"}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// CacheRebuilt counts one action cache rebuild
func (m *Metrics) CacheRebuilt() {
	if m == nil {
		return
	}
	m.cacheRebuilds.Inc()
}

// Selected counts one selection outcome
func (m *Metrics) Selected(outcome string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(outcome).Inc()
}

// Bound counts one binding outcome for a model
func (m *Metrics) Bound(model, outcome string) {
	if m == nil {
		return
	}
	m.bindings.WithLabelValues(model, outcome).Inc()
}

// ObserveRequest records RED metrics for a handled request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(route, method, code).Inc()
}

// Handler serves the collectors in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Exposition renders the collectors in the text exposition format, for hosts
// that serve /metrics through a scaffold handler rather than net/http.
func (m *Metrics) Exposition() ([]byte, string, error) {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	if m == nil {
		return nil, string(format), nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, format)
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return nil, "", err
		}
	}
	return buf.Bytes(), string(format), nil
}
