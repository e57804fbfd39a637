package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rise-and-shine/filemanager/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := metrics.New()

	m.RecordScanFailure(metrics.StageHead)
	m.RecordScanFailure(metrics.StageHead)
	m.RecordScanFailure(metrics.StageList)
	m.RecordUpload("created")
	m.RecordHTTPRequest("GET", "/api/files", 200, 10*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.ConflictScanFailures.WithLabelValues(metrics.StageHead)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ConflictScanFailures.WithLabelValues(metrics.StageList)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Uploads.WithLabelValues("created")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/files", "200")), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.RecordScanFailure(metrics.StageList)
		m.RecordIndexLookup("hit")
		m.RecordUpload("created")
		m.RecordHTTPRequest("GET", "/", 200, time.Second)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_HandlerAndMiddleware(t *testing.T) {
	m := metrics.New()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `filemanager_http_requests_total{method="GET",route="/ping/:id",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
