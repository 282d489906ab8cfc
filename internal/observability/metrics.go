package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks request volume and error codes at the transport edge.
type HTTPMetrics struct {
	RequestsTotal *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
}

// NewHTTPMetrics builds and registers the HTTP collectors.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service_desk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, path and status.",
		}, []string{"method", "path", "status"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service_desk",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Request errors, by method, path and error code.",
		}, []string{"method", "path", "code"}),
	}
	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.ErrorsTotal)
	}
	return m
}

// RecordRequest counts one served request.
func (m *HTTPMetrics) RecordRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
}

// RecordError counts one request error by domain error code.
func (m *HTTPMetrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(method, path, code).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// SweepMetrics exposes SLA sweep results as Prometheus collectors.
type SweepMetrics struct {
	TicketsChecked prometheus.Gauge
	StatusCount    *prometheus.GaugeVec
	BreachesTotal  *prometheus.CounterVec
	WarningsTotal  prometheus.Counter
}

// NewSweepMetrics builds and registers the sweep collectors.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	m := &SweepMetrics{
		TicketsChecked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "service_desk",
			Subsystem: "sla_sweep",
			Name:      "tickets_checked",
			Help:      "Tickets with an active deadline examined by the last sweep.",
		}),
		StatusCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "service_desk",
			Subsystem: "sla_sweep",
			Name:      "status_count",
			Help:      "Tickets per SLA status observed by the last sweep.",
		}, []string{"status"}),
		BreachesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service_desk",
			Subsystem: "sla",
			Name:      "breaches_total",
			Help:      "Breach transitions detected, by ticket priority.",
		}, []string{"priority"}),
		WarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "service_desk",
			Subsystem: "sla",
			Name:      "warnings_total",
			Help:      "Warning transitions detected by the sweep.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.TicketsChecked, m.StatusCount, m.BreachesTotal, m.WarningsTotal)
	}
	return m
}
