package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "campusevents_http_requests_total", Help: "Total HTTP requests by method and status"},
		[]string{"method", "status"},
	)
	HTTPDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campusevents_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
	)
	Registrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "campusevents_registrations_total", Help: "Total successful event registrations"},
	)
	BadgesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "campusevents_badges_awarded_total", Help: "Total badges awarded"},
	)
	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "campusevents_reminders_sent_total", Help: "Total reminder emails sent"},
	)
	RemindersFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "campusevents_reminders_failed_total", Help: "Total reminder emails that failed"},
	)
)

func Register() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, Registrations, BadgesAwarded, RemindersSent, RemindersFailed)
}
