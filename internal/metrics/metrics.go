package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookwise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwise_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwise_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
		[]string{"actor"},
	)

	ConflictsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwise_conflicts_detected_total",
			Help: "Total number of booking conflicts detected by type",
		},
		[]string{"type"},
	)

	WaitlistJoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookwise_waitlist_joins_total",
			Help: "Total number of waitlist joins",
		},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookwise_waitlist_promotions_total",
			Help: "Total number of waitlist entries auto-promoted to bookings",
		},
	)

	WaitlistPromotionSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookwise_waitlist_promotion_skips_total",
			Help: "Waitlist entries skipped during auto-promotion due to errors",
		},
	)

	OccurrencesMaterializedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookwise_occurrences_materialized_total",
			Help: "Recurring schedule occurrences materialized into bookings",
		},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookwise_notifications_queued_total",
			Help: "Total number of notification jobs queued",
		},
		[]string{"channel"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordCancellation(actor string) {
	BookingCancellationsTotal.WithLabelValues(actor).Inc()
}

func RecordConflict(conflictType string) {
	ConflictsDetectedTotal.WithLabelValues(conflictType).Inc()
}

func RecordWaitlistJoin() {
	WaitlistJoinsTotal.Inc()
}

func RecordWaitlistPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordWaitlistPromotionSkip() {
	WaitlistPromotionSkipsTotal.Inc()
}

func RecordMaterializedOccurrences(n int) {
	OccurrencesMaterializedTotal.Add(float64(n))
}

func RecordNotificationQueued(channel string) {
	NotificationsQueuedTotal.WithLabelValues(channel).Inc()
}
