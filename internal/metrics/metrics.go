package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogapi"

// Metrics of one application instance
// Every instance has its own registry, so tests and several apps in one process never collide
type Metrics struct {
	registry *prometheus.Registry

	authEvents      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		authEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Session lifecycle events by result",
		}, []string{"event", "result"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "code"}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) AuthEvent(event string, result string) {
	m.authEvents.WithLabelValues(event, result).Inc()
}

func (m *Metrics) ObserveRequest(method string, code int, took time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.requestDuration.Observe(took.Seconds())
}

// Handler serves the registry in prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
