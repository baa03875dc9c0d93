package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// BingX API metrics
	BingXAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bingx_api_requests_total",
			Help: "Total number of BingX API requests",
		},
		[]string{"endpoint", "status"},
	)
	BingXAPIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bingx_api_request_duration_seconds",
			Help: "Duration of BingX API requests in seconds",
		},
		[]string{"endpoint"},
	)
	BingXWebSocketConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bingx_websocket_connected",
			Help: "Whether the BingX market stream is connected (1/0)",
		},
	)

	// Telegram metrics
	TelegramMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_total",
			Help: "Total number of Telegram messages sent",
		},
		[]string{"channel", "status"},
	)

	// Webhook metrics
	WebhookSignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_signals_total",
			Help: "Total number of webhook signals received",
		},
		[]string{"type", "status"},
	)

	// Scheduler metrics
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)
	JobRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "job_run_duration_seconds",
			Help: "Duration of scheduled job runs in seconds",
		},
		[]string{"job"},
	)
	JobTicksSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_ticks_skipped_total",
			Help: "Ticks skipped because the previous run was still in flight",
		},
		[]string{"job"},
	)
)

func InitMetrics() {
	// HTTP metrics
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	// BingX metrics
	prometheus.MustRegister(BingXAPIRequestsTotal)
	prometheus.MustRegister(BingXAPIRequestDuration)
	prometheus.MustRegister(BingXWebSocketConnected)

	// Telegram metrics
	prometheus.MustRegister(TelegramMessagesTotal)

	// Webhook metrics
	prometheus.MustRegister(WebhookSignalsTotal)

	// Scheduler metrics
	prometheus.MustRegister(JobRunsTotal)
	prometheus.MustRegister(JobRunDuration)
	prometheus.MustRegister(JobTicksSkipped)

	// Standard Go metrics
	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
