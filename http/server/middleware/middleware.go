// Package middleware provides the Fiber middleware stack of the HTTP server.
//
// Middleware Execution Order:
//
// Each middleware declares a Priority value that determines its execution order:
//
//   - Recovery (1000): Catches panics in the middleware chain
//   - Tracing (900): Creates spans for request tracing
//   - Timeout (800): Applies timeouts to request contexts
//   - MetaInject (700): Injects metadata into the request context
//   - Metrics (600): Counts requests and observes latency
//   - Logger (500): Logs request and response details
//   - ErrorHandler (400): Converts errors to standardized responses
//
// Higher priority values are executed earlier in the request pipeline.
//
// Usage Example:
//
//	srv := server.NewHTTPServer(cfg, []server.Middleware{
//		middleware.NewRecoveryMW(logger),
//		middleware.NewTracingMW(),
//		middleware.NewTimeoutMW(5 * time.Second),
//		middleware.NewMetaInjectMW(),
//		middleware.NewMetricsMW(metrics),
//		middleware.NewLoggerMW(logger),
//		middleware.NewErrorHandlerMW(false),
//	})
package middleware
