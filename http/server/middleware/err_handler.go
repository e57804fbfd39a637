package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/http/server"
)

// NewErrorHandlerMW creates a middleware that converts errors to standardized JSON responses.
//
// When hideDetails is false, the error trace and details are included in the response.
// The error is still returned so outer middlewares (logger, metrics, tracing) see it.
func NewErrorHandlerMW(hideDetails bool) server.Middleware {
	return server.Middleware{
		Priority: 400,
		Handler: func(c *fiber.Ctx) error {
			err := c.Next()
			if err == nil {
				return nil
			}

			// if error already handled, skip processing.
			if c.Response() != nil && c.Response().StatusCode() >= 400 {
				return err
			}

			return server.WriteErrorResponse(c, err, hideDetails)
		},
	}
}
