package middleware

import (
	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/observability/metrics"
)

// NewMetricsMW creates a middleware that counts requests and observes their latency
// by route pattern. A nil m disables it.
func NewMetricsMW(m *metrics.Metrics) server.Middleware {
	return server.Middleware{
		Priority: 600,
		Handler:  m.Middleware(),
	}
}
