// Package handler exposes the file registry over HTTP.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/filemanager/http/server/forward"
	"github.com/rise-and-shine/filemanager/observability/metrics"
	"github.com/rise-and-shine/filemanager/registry"
)

// Handler registers the file routes.
type Handler struct {
	reg     *registry.Registry
	metrics *metrics.Metrics
}

// New creates a Handler. m may be nil, in which case /metrics answers 404.
func New(reg *registry.Registry, m *metrics.Metrics) *Handler {
	return &Handler{reg: reg, metrics: m}
}

// Register mounts every route on r.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/healthz", healthz)
	r.Get("/metrics", h.metrics.Handler())

	files := r.Group("/api/files")
	files.Get("", forward.ToUserAction[*listRequest, []registry.FileInfo](listFiles{h.reg}))
	files.Get("/search", forward.ToUserAction[*searchRequest, []registry.FileInfo](searchFiles{h.reg}))
	files.Post("/upload", forward.ToUserAction[*uploadRequest, *uploadResponse](uploadFile{h.reg}))
	files.Post("/upload/resolve-conflict", forward.ToUserAction[*resolveConflictRequest, *uploadResponse](
		resolveConflict{h.reg},
	))
	files.Get("/download/:key", h.download)
	files.Get("/status/:key", forward.ToUserAction[*keyRequest, *statusResponse](uploadStatus{h.reg}))
	files.Delete("/:key", forward.ToUserAction[*keyRequest, *messageResponse](deleteFile{h.reg}))
}

func healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
