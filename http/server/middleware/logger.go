package middleware

import (
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/observability/logger"
)

// NewLoggerMW creates a middleware that logs HTTP requests and responses.
//
// The logging level is determined by the HTTP status code
// (info for 2xx/3xx, warn for 4xx, error for 5xx).
func NewLoggerMW(log logger.Logger) server.Middleware {
	base := log.Named("middleware.logger")

	return server.Middleware{
		Priority: 500,
		Handler: func(c *fiber.Ctx) error {
			start := time.Now()

			err := c.Next()

			statusCode := c.Response().StatusCode()

			l := base.WithContext(c.UserContext()).
				With("http_status_code", statusCode).
				With("http_method", c.Method()).
				With("http_path", c.Path()).
				With("http_route", c.Route().Path).
				With("duration", time.Since(start)).
				With("query_params", c.Queries()).
				With("request_size", c.Request().Header.ContentLength()).
				With("response_size", len(c.Response().Body()))

			if err != nil {
				e := errx.AsErrorX(err)
				l = l.With("error", map[string]any{
					"code":    e.Code(),
					"message": e.Error(),
					"type":    e.Type().String(),
					"trace":   e.Trace(),
					"fields":  e.Fields(),
					"details": e.Details(),
				})
			}

			switch {
			case statusCode >= 500:
				l.Error("request failed")
			case statusCode >= 400:
				l.Warn("request rejected")
			default:
				l.Info("request processed successfully")
			}

			return err
		},
	}
}
