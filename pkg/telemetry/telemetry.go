package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a global MeterProvider backed by the Prometheus exporter.
func Setup() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics holds the OTel instruments for the API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequestsTotal     otelmetric.Int64Counter
	httpRequestDuration   otelmetric.Float64Histogram
	authValidationsTotal  otelmetric.Int64Counter
	authzDecisionsTotal   otelmetric.Int64Counter
	scopeResolutionsTotal otelmetric.Int64Counter
	loginAttemptsTotal    otelmetric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("placement-portal")
	m := &Metrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("placement_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("placement_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.authValidationsTotal, err = meter.Int64Counter("placement_auth_validations_total",
		otelmetric.WithDescription("Bearer token validations by result")); err != nil {
		return nil, fmt.Errorf("creating auth_validations_total: %w", err)
	}
	if m.authzDecisionsTotal, err = meter.Int64Counter("placement_authz_decisions_total",
		otelmetric.WithDescription("Route authorization decisions by outcome")); err != nil {
		return nil, fmt.Errorf("creating authz_decisions_total: %w", err)
	}
	if m.scopeResolutionsTotal, err = meter.Int64Counter("placement_scope_resolutions_total",
		otelmetric.WithDescription("Tenant scope resolutions by kind")); err != nil {
		return nil, fmt.Errorf("creating scope_resolutions_total: %w", err)
	}
	if m.loginAttemptsTotal, err = meter.Int64Counter("placement_login_attempts_total",
		otelmetric.WithDescription("Credential logins by result")); err != nil {
		return nil, fmt.Errorf("creating login_attempts_total: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, durationSec float64) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		methodAttr(method),
		routeAttr(route),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

func (m *Metrics) RecordAuthValidation(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.authValidationsTotal.Add(ctx, 1, otelmetric.WithAttributes(resultAttr(result)))
}

func (m *Metrics) RecordAuthzDecision(ctx context.Context, method, outcome string) {
	if m == nil {
		return
	}
	m.authzDecisionsTotal.Add(ctx, 1, otelmetric.WithAttributes(methodAttr(method), outcomeAttr(outcome)))
}

func (m *Metrics) RecordScopeResolution(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.scopeResolutionsTotal.Add(ctx, 1, otelmetric.WithAttributes(scopeAttr(kind)))
}

func (m *Metrics) RecordLoginAttempt(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.loginAttemptsTotal.Add(ctx, 1, otelmetric.WithAttributes(resultAttr(result)))
}

// Middleware records one request metric per call. Routes are labelled by the
// matched pattern so ids do not explode label cardinality.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
