// Package metrics exposes Prometheus collectors for the HTTP API and the
// evaluation pipeline.
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

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	Registry = prometheus.NewRegistry()

	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AnswerKeyUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omr_answer_key_uploads_total",
			Help: "Answer key uploads by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omr_evaluations_total",
			Help: "Sheet evaluations by outcome",
		},
		[]string{"outcome"},
	)

	Scores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "omr_evaluation_score",
			Help:    "Distribution of evaluation scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCounter,
		RequestDuration,
		AnswerKeyUploads,
		Evaluations,
		Scores,
	)
}

// Middleware records request counts and latencies per route. Errors are
// rendered through the app's error handler first so the final status is
// recorded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		endpoint := c.Route().Path
		RequestCounter.WithLabelValues(c.Method(), endpoint, strconv.Itoa(c.Response().StatusCode())).Inc()
		RequestDuration.WithLabelValues(c.Method(), endpoint).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
