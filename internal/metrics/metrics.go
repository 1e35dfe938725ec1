// Package metrics exposes Prometheus collectors for the HTTP surface and the
// claim workflow. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	itemsCreated    prometheus.Counter
	claimsSubmitted prometheus.Counter
	claimsDecided   *prometheus.CounterVec
	messagesSent    prometheus.Counter
}

// New creates a registry with process and Go runtime collectors plus the
// service collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "najdeno",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "najdeno",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		itemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "najdeno",
			Name:      "items_created_total",
			Help:      "Items posted by finders.",
		}),
		claimsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "najdeno",
			Name:      "claims_submitted_total",
			Help:      "New claims recorded (resubmissions are not counted).",
		}),
		claimsDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "najdeno",
			Name:      "claims_decided_total",
			Help:      "Claims approved or rejected by finders.",
		}, []string{"decision"}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "najdeno",
			Name:      "messages_sent_total",
			Help:      "Messages appended to claim threads.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.itemsCreated,
		m.claimsSubmitted,
		m.claimsDecided,
		m.messagesSent,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request. route is the matched
// ServeMux pattern, so ids in paths do not blow up label cardinality.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ItemCreated counts a posted item.
func (m *Metrics) ItemCreated() {
	if m == nil {
		return
	}
	m.itemsCreated.Inc()
}

// ClaimSubmitted counts a newly recorded claim.
func (m *Metrics) ClaimSubmitted() {
	if m == nil {
		return
	}
	m.claimsSubmitted.Inc()
}

// ClaimDecided counts an approval or rejection.
func (m *Metrics) ClaimDecided(decision string) {
	if m == nil {
		return
	}
	m.claimsDecided.WithLabelValues(decision).Inc()
}

// MessageSent counts an appended message.
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}
