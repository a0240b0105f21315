package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restoran_pos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "restoran_pos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	WavesFired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restoran_pos",
		Subsystem: "pos",
		Name:      "waves_fired_total",
		Help:      "Waves sent to the kitchen.",
	})

	ItemsVoided = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restoran_pos",
		Subsystem: "pos",
		Name:      "items_voided_total",
		Help:      "Order items voided.",
	})

	ItemsRefired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restoran_pos",
		Subsystem: "pos",
		Name:      "items_refired_total",
		Help:      "Order items sent to the kitchen again.",
	})

	IdempotentReplays = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restoran_pos",
		Subsystem: "idempotency",
		Name:      "replays_total",
		Help:      "Write requests answered from a stored response.",
	})

	DelayedWaves = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "restoran_pos",
		Subsystem: "kitchen",
		Name:      "delayed_waves",
		Help:      "Waves past the kitchen delay threshold at the last scan.",
	}, []string{"location_id"})
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		WavesFired,
		ItemsVoided,
		ItemsRefired,
		IdempotentReplays,
		DelayedWaves,
		collectors.NewGoCollector(),
	)
}

// Middleware records request counts and latency by route template.
// Install it before httpx.RequestLogger so it sees the final status.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry at /metrics.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

func SetDelayedWaves(locationID uint, n int) {
	DelayedWaves.WithLabelValues(strconv.FormatUint(uint64(locationID), 10)).Set(float64(n))
}
