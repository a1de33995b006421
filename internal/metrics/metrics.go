// Package metrics exports studyboard's Prometheus counters.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace      = "studyboard"
	resultLabel    = "result"
	operationLabel = "operation"
	actionLabel    = "action"
)

// Result labels.
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultForbidden = "forbidden"
	ResultNotFound  = "not_found"
	ResultFallback  = "fallback"
	ResultBusy      = "busy"
)

// Metrics manages the counters studyboard records. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loginsTotal              *prometheus.CounterVec
	mutationsTotal           *prometheus.CounterVec
	deniedTotal              *prometheus.CounterVec
	assistantRequestsTotal   *prometheus.CounterVec
	assistantResponseSeconds prometheus.Histogram
}

func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	return &Metrics{
		registry: reg,
		loginsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "The total count of login attempts by result.",
		}, []string{resultLabel}),
		mutationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "The total count of entity store mutations by operation and result.",
		}, []string{operationLabel, resultLabel}),
		deniedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "denied_total",
			Help:      "The total count of actions refused by the capability gate.",
		}, []string{actionLabel}),
		assistantRequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "requests_total",
			Help:      "The total count of assistant prompts by result.",
		}, []string{resultLabel}),
		assistantResponseSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "response_seconds",
			Help:      "The response time of the text-generation call.",
		}),
	}, nil
}

func (m *Metrics) AddLogin(result string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) AddMutation(operation, result string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) AddDenied(action string) {
	if m == nil {
		return
	}
	m.deniedTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) AddAssistantRequest(result string) {
	if m == nil {
		return
	}
	m.assistantRequestsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAssistantResponse(d time.Duration) {
	if m == nil {
		return
	}
	m.assistantResponseSeconds.Observe(d.Seconds())
}

// Registry returns the registry of metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
