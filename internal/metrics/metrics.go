// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forwarder"

var (
	// Registry holds the application collectors plus process and Go runtime ones.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	emailMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "messages_total",
			Help:      "Mail messages processed, by outcome.",
		},
		[]string{"status"},
	)

	emailInvoices = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "invoices_created_total",
			Help:      "Invoices created from mail attachments.",
		},
	)

	patternAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "patterns",
			Name:      "attempts_total",
			Help:      "Pattern evaluations, by target field and outcome.",
		},
		[]string{"field", "success"},
	)

	taskRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "runs_total",
			Help:      "Background task executions, by task and outcome.",
		},
		[]string{"task", "outcome"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "run_duration_seconds",
			Help:      "Duration of background task executions.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		},
		[]string{"task"},
	)

	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "imports",
			Name:      "rows_total",
			Help:      "Spreadsheet rows imported, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		emailMessages,
		emailInvoices,
		patternAttempts,
		taskRuns,
		taskDuration,
		importRows,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the matched chi
// route pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func RecordEmailMessage(status string) {
	emailMessages.WithLabelValues(status).Inc()
}

func RecordEmailInvoices(n int) {
	emailInvoices.Add(float64(n))
}

func RecordPatternAttempt(field string, success bool) {
	patternAttempts.WithLabelValues(field, strconv.FormatBool(success)).Inc()
}

func RecordTask(task, outcome string, duration time.Duration) {
	if task == "" {
		task = "unknown"
	}

	taskRuns.WithLabelValues(task, outcome).Inc()
	taskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

func RecordImportRows(created, updated, skipped int) {
	importRows.WithLabelValues("created").Add(float64(created))
	importRows.WithLabelValues("updated").Add(float64(updated))
	importRows.WithLabelValues("skipped").Add(float64(skipped))
}
