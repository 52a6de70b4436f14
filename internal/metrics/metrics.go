package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path serves the exposition format.
const Path = "/metrics"

// Auth failure reasons.
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
	ReasonRevokedToken = "revoked_token"
	ReasonLookupError  = "lookup_error"
)

// Metrics owns a private registry, so several apps can coexist in one process.
type Metrics struct {
	reg *prometheus.Registry

	reqDuration  *prometheus.HistogramVec
	reqTotal     *prometheus.CounterVec
	sessions     *prometheus.CounterVec
	authFailures *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		reqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		reqTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_sessions_total",
				Help: "Session tokens opened and closed",
			},
			[]string{"event"},
		),
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_auth_failures_total",
				Help: "Rejected bearer tokens by reason",
			},
			[]string{"reason"},
		),
	}

	m.reg.MustRegister(m.reqDuration, m.reqTotal, m.sessions, m.authFailures)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// SessionOpened counts one new session token.
func (m *Metrics) SessionOpened() {
	m.sessions.WithLabelValues("opened").Inc()
}

// SessionsClosed counts n dropped session tokens.
func (m *Metrics) SessionsClosed(n int) {
	if n <= 0 {
		return
	}
	m.sessions.WithLabelValues("closed").Add(float64(n))
}

// AuthFailed counts a rejected request.
func (m *Metrics) AuthFailed(reason string) {
	m.authFailures.WithLabelValues(reason).Inc()
}

// Attach installs the request-timing middleware and the /metrics endpoint.
// Handler errors are rendered through the app's ErrorHandler before the
// status is read, so error responses land in their own status class.
func (m *Metrics) Attach(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		dur := time.Since(start).Seconds()

		method := c.Method()
		path := normalizeRoutePath(c)
		status := normalizeStatus(c.Response().StatusCode())

		m.reqDuration.WithLabelValues(method, path, status).Observe(dur)
		m.reqTotal.WithLabelValues(method, path, status).Inc()
		return nil
	})

	app.Get(Path, adaptor.HTTPHandler(
		promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})),
	)
}

// normalizeRoutePath returns the route template ("/users/:id") to keep label
// cardinality bounded. Unmatched routes fall back to the raw path.
func normalizeRoutePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil {
		return route.Path
	}
	return c.Path()
}

// normalizeStatus collapses a status code to its class: 2xx, 4xx, 5xx.
func normalizeStatus(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return strconv.Itoa(status)
}
