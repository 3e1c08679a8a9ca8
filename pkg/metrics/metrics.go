package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "evcharge"

// Admission outcomes.
const (
	OutcomeConfirmed   = "confirmed"
	OutcomeValidation  = "validation_error"
	OutcomeNoStation   = "no_station_available"
	OutcomeAllBusy     = "all_stations_busy"
	OutcomeTimeout     = "timeout"
	OutcomePersistence = "persistence_error"
	OutcomeCancelled   = "cancelled"
)

var (
	once sync.Once

	bookingAdmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_admissions_total",
			Help:      "Booking admission attempts by outcome.",
		},
		[]string{"outcome"},
	)

	reservationRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_reservation_retries_total",
			Help:      "Reservations retried on the next-nearest station after a slot conflict.",
		},
	)

	admissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_admission_duration_seconds",
			Help:      "Time spent admitting a booking request.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	indexedStations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_index_size",
			Help:      "Active stations in the in-memory station index.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service and status class.",
		},
		[]string{"service", "code"},
	)

	panics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Handler panics caught by the recovery middleware.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingAdmissions,
			reservationRetries,
			admissionDuration,
			indexedStations,
			httpRequests,
			panics,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func IncAdmission(outcome string) {
	bookingAdmissions.WithLabelValues(outcome).Inc()
}

func IncRetry() {
	reservationRetries.Inc()
}

func ObserveAdmission(d time.Duration) {
	admissionDuration.Observe(d.Seconds())
}

func SetIndexedStations(n int) {
	indexedStations.Set(float64(n))
}

func IncHTTP(service string, status int) {
	httpRequests.WithLabelValues(service, statusClass(status)).Inc()
}

func IncPanic() {
	panics.Inc()
}

func statusClass(status int) string {
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
