package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alima_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alima_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	activeFeeds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alima_feed_active_subscriptions",
			Help: "Number of live document feed subscriptions.",
		},
		[]string{"feed"},
	)
	feedErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alima_feed_errors_total",
			Help: "Total number of live feeds that stopped on an error.",
		},
		[]string{"feed"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alima_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alima_ws_events_total",
			Help: "Total number of websocket frames handled.",
		},
		[]string{"event"},
	)
	messagesDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alima_messages_dispatched_total",
			Help: "Total number of messages written by the dispatcher.",
		},
		[]string{"type"},
	)
	mediaUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alima_media_uploads_total",
			Help: "Media relay results by outcome.",
		},
		[]string{"outcome"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alima_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		activeFeeds,
		feedErrorsTotal,
		wsActiveConnections,
		wsEventsTotal,
		messagesDispatchedTotal,
		mediaUploadsTotal,
		amqpPublishErrorsTotal,
	)
}

// Middleware records request count and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			status := c.Response().Status

			httpRequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

func IncFeedActive(feed string) {
	activeFeeds.WithLabelValues(feed).Inc()
}

func DecFeedActive(feed string) {
	activeFeeds.WithLabelValues(feed).Dec()
}

func IncFeedError(feed string) {
	feedErrorsTotal.WithLabelValues(feed).Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncMessageDispatched(messageType string) {
	messagesDispatchedTotal.WithLabelValues(messageType).Inc()
}

func IncMediaUpload(outcome string) {
	mediaUploadsTotal.WithLabelValues(outcome).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
