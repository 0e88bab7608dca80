package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// httpMetrics holds HTTP-specific metric instruments.
type httpMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
	responseHisto  metric.Int64Histogram
}

// HTTPMetricsMiddleware returns a Gin middleware recording request counts,
// durations, and response sizes with method, path, and status_code labels.
// Paths are recorded as route patterns (e.g. /v1/documents/:id) to keep
// cardinality bounded; response size matters here because document downloads
// dominate egress.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return noopMiddleware
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return noopMiddleware
	}

	responseHisto, err := meter.Int64Histogram(
		fmt.Sprintf("%s_http_response_size_bytes", namespace),
		metric.WithDescription("HTTP response body size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return noopMiddleware
	}

	m := &httpMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
		responseHisto:  responseHisto,
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		attrs := []attribute.KeyValue{
			attribute.String("method", c.Request.Method),
			attribute.String("path", sanitizePath(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		}

		reqCtx := c.Request.Context()
		m.requestCounter.Add(reqCtx, 1, metric.WithAttributes(attrs...))
		m.durationHisto.Record(reqCtx, duration.Seconds(), metric.WithAttributes(attrs...))
		if size := c.Writer.Size(); size >= 0 {
			m.responseHisto.Record(reqCtx, int64(size), metric.WithAttributes(attrs...))
		}
	}
}

func noopMiddleware(c *gin.Context) {
	c.Next()
}

// sanitizePath returns the matched route pattern, or "unknown" when the
// request did not match a route.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
