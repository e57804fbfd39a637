// Package server provides a configurable HTTP server implementation based on the Fiber framework.
package server

import (
	"context"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
)

// HTTPServer provides an HTTP server with configurable middleware.
//
// The server is built on top of the Fiber framework and supports prioritized middleware registration.
// Use NewHTTPServer to create a new instance.
type HTTPServer struct {
	cfg        Config
	router     *fiber.App
	listenAddr string
}

// NewHTTPServer creates a new HTTPServer with the provided configuration and middleware.
//
// The middlewares slice is applied in order of descending priority. Errors that no
// middleware handled are written in the standard error schema.
func NewHTTPServer(cfg Config, middlewares []Middleware) *HTTPServer {
	router := fiber.New(fiber.Config{
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
		IdleTimeout:              cfg.IdleTimeout,
		ErrorHandler:             customErrorHandler(cfg.HideErrorDetails),
		DisableStartupMessage:    true,
		Immutable:                true,
		BodyLimit:                cfg.BodyLimit,
		EnableSplittingOnParsers: true,
	})

	applyMiddlewares(router, middlewares)

	return &HTTPServer{
		cfg:        cfg,
		router:     router,
		listenAddr: cfg.Address(),
	}
}

// RegisterRouter registers a router with the server using the provided register function.
func (s *HTTPServer) RegisterRouter(registerFunc func(r fiber.Router)) {
	registerFunc(s.router)
}

// App exposes the underlying fiber app, e.g. for app.Test in tests.
func (s *HTTPServer) App() *fiber.App {
	return s.router
}

// Start begins listening for incoming HTTP requests on the configured address.
// It blocks until the server stops.
func (s *HTTPServer) Start() error {
	return errx.Wrap(s.router.Listen(s.listenAddr))
}

// Stop gracefully stops the server, waiting for in-flight requests until ctx is done.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return errx.Wrap(s.router.ShutdownWithContext(ctx))
}
