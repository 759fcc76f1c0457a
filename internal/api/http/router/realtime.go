package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerRealtimeRoutes(
	api fiber.Router,
	rh *handler.RealtimeHandler,
	tenantCtx fiber.Handler,
) {
	api.Get("/realtime/stream", tenantCtx, rh.Stream)
}
