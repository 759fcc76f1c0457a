package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerFeesRoutes(
	api fiber.Router,
	fh *handler.FeesHandler,
	tenantCtx fiber.Handler,
) {
	f := api.Group("/fees", tenantCtx)
	f.Get("/", fh.List)
	f.Put("/", fh.Set)
	f.Get("/lookup", fh.Lookup)
	f.Delete("/:id", fh.Delete)
}
