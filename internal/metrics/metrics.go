package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojobook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dojobook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojobook_bookings_total",
			Help: "Total number of bookings by admit reason",
		},
		[]string{"reason"},
	)

	BookingDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojobook_booking_denials_total",
			Help: "Total number of denied booking attempts by reason",
		},
		[]string{"reason"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dojobook_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	TrialResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojobook_trial_resets_total",
			Help: "Total number of admin trial resets",
		},
		[]string{"scope"},
	)

	MembershipTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojobook_membership_transitions_total",
			Help: "Total number of membership status transitions",
		},
		[]string{"status"},
	)

	BeginnerUpgradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dojobook_beginner_upgrades_total",
			Help: "Total number of beginner memberships auto-upgraded",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dojobook_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dojobook_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(reason string) {
	BookingsTotal.WithLabelValues(reason).Inc()
}

func RecordBookingDenial(reason string) {
	BookingDenialsTotal.WithLabelValues(reason).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordTrialReset(bulk bool) {
	scope := "single"
	if bulk {
		scope = "bulk"
	}
	TrialResetsTotal.WithLabelValues(scope).Inc()
}

func RecordMembershipTransition(status string) {
	MembershipTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordBeginnerUpgrades(n int) {
	BeginnerUpgradesTotal.Add(float64(n))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
