package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/meta"
)

// Headers an upstream gateway sets after authenticating the caller.
const (
	HeaderActorType = "X-Actor-Type"
	HeaderActorID   = "X-Actor-Id"
)

// NewMetaInjectMW creates a middleware that injects request metadata into the request context:
// caller identity forwarded by the gateway, client info and the service name and version.
// The trace id is set earlier by the tracing middleware.
func NewMetaInjectMW() server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			metaData := map[meta.ContextKey]string{
				meta.ActorType:      c.Get(HeaderActorType),
				meta.ActorID:        c.Get(HeaderActorID),
				meta.IPAddress:      c.IP(),
				meta.UserAgent:      c.Get(fiber.HeaderUserAgent),
				meta.ServiceName:    meta.GetServiceName(),
				meta.ServiceVersion: meta.GetServiceVersion(),
			}

			ctx := meta.InjectMetaToContext(c.UserContext(), metaData)
			c.SetUserContext(ctx)

			return c.Next()
		},
	}
}
