package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/http/server"
)

// NewTimeoutMW bounds the request context by duration. Store calls receive this context,
// so a long listing scan is abandoned once the deadline passes. A non-positive duration
// disables the bound.
func NewTimeoutMW(duration time.Duration) server.Middleware {
	return server.Middleware{
		Priority: 800,
		Handler: func(c *fiber.Ctx) error {
			if duration <= 0 {
				return c.Next()
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), duration)
			defer cancel()

			c.SetUserContext(ctx)

			return c.Next()
		},
	}
}
