package internalhttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry
	handler  http.Handler
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	commands *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests by route and status code",
	}, []string{"method", "route", "code"})
	m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "calendar",
		Name:      "http_request_duration_seconds",
		Help:      "Time spent handling HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar",
		Name:      "assistant_commands_total",
		Help:      "Assistant requests by outcome",
	}, []string{"outcome"})

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

func (m *metrics) instrument(method, route string, h runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r, pathParams)
		m.requests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) command(outcome string) {
	m.commands.WithLabelValues(outcome).Inc()
}

func (m *metrics) serve(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	m.handler.ServeHTTP(w, r)
}
