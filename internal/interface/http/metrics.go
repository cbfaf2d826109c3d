package httpservice

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spinwheel-network/spinwheel/internal/core/application"
)

const metricsNamespace = "spinwheel"

type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	roundEvents *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		roundEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "rounds",
				Name:      "events_total",
				Help:      "Total number of round events committed, by type.",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.roundEvents,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records count and duration of every request but the metrics
// scrapes themselves.
func (m *metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if len(path) <= 0 {
			path = "unmatched"
		}
		m.requests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.duration.WithLabelValues(c.Request.Method, path).Observe(
			time.Since(start).Seconds(),
		)
	}
}

// trackRoundEvents counts the round events published by the app service
// until ctx is done.
func (m *metrics) trackRoundEvents(ctx context.Context, svc application.Service) error {
	events, err := svc.GetEventsChannel(ctx)
	if err != nil {
		return err
	}

	go func() {
		for event := range events {
			m.roundEvents.WithLabelValues(event.GetType().String()).Inc()
		}
	}()
	return nil
}
