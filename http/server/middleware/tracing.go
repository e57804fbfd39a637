package middleware

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.23.1"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/meta"
	"github.com/rise-and-shine/filemanager/observability/tracing"
)

// HeaderTraceID carries the trace id back to the client.
const HeaderTraceID = "X-Trace-ID"

// NewTracingMW creates a middleware that provides OpenTelemetry tracing for HTTP requests.
//
// The span is named after the HTTP method and matched route pattern. The trace id is
// stored in the request context and echoed in the X-Trace-ID response header.
func NewTracingMW() server.Middleware {
	return server.Middleware{
		Priority: 900,
		Handler: func(c *fiber.Ctx) error {
			defaultSpanName := fmt.Sprintf("%s %s", c.Method(), "/")

			ctx, span := otel.Tracer("http-server").Start(
				c.UserContext(),
				defaultSpanName,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			setContext(ctx, c)

			err := c.Next()

			routerPattern := c.Route().Path
			if routerPattern != "" && routerPattern != "/" {
				span.SetName(fmt.Sprintf("%s %s", c.Method(), routerPattern))
			}

			status := c.Response().StatusCode()
			if err != nil && status < 400 {
				status = server.StatusCode(err)
			}

			span.SetAttributes(
				semconv.HTTPRequestMethodKey.String(c.Method()),
				semconv.HTTPRouteKey.String(routerPattern),
				semconv.URLFullKey.String(c.OriginalURL()),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			return err
		},
	}
}

func setContext(ctx context.Context, c *fiber.Ctx) {
	traceID := tracing.GetStartingTraceID(ctx)
	ctx = context.WithValue(ctx, meta.TraceID, traceID)

	c.Set(HeaderTraceID, traceID)
	c.SetUserContext(ctx)
}
