package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics prometheus-метрики сервиса
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	MessagesSentTotal    *prometheus.CounterVec
	ReminderJobsTotal    *prometheus.CounterVec
	AppointmentsCreated  prometheus.Counter
	AppointmentsCanceled prometheus.Counter
}

// New регистрирует и возвращает метрики сервиса
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		MessagesSentTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "outbound_messages_total",
			Help:        "Total number of outbound messages by result",
			ConstLabels: labels,
		}, []string{"result"}),

		ReminderJobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "reminder_jobs_total",
			Help:        "Total number of processed reminder jobs by type and result",
			ConstLabels: labels,
		}, []string{"job_type", "result"}),

		AppointmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Total number of created appointments",
			ConstLabels: labels,
		}),

		AppointmentsCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_canceled_total",
			Help:        "Total number of canceled appointments",
			ConstLabels: labels,
		}),
	}
}
