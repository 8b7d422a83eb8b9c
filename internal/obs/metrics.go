package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	achievementsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_submitted_total",
			Help: "Achievement submissions accepted, by achievement type.",
		},
		[]string{"type"},
	)

	achievementsModerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_moderated_total",
			Help: "Moderation decisions, by resulting status.",
		},
		[]string{"status"},
	)

	unrecognizedClassifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoring_unrecognized_classifications_total",
		Help: "Submissions whose classification matched no scoring table (scored 0).",
	})
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		achievementsSubmitted,
		achievementsModerated,
		unrecognizedClassifications,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSubmission counts an accepted achievement submission.
func ObserveSubmission(achievementType string) {
	achievementsSubmitted.WithLabelValues(achievementType).Inc()
}

// ObserveModeration counts a moderation decision.
func ObserveModeration(status string) {
	achievementsModerated.WithLabelValues(status).Inc()
}

// ObserveUnrecognizedClassification counts a zero-scored submission.
func ObserveUnrecognizedClassification() {
	unrecognizedClassifications.Inc()
}

// Instrument wraps a handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter records the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
