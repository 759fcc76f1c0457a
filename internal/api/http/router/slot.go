package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerSlotRoutes(
	api fiber.Router,
	sh *handler.SlotHandler,
	avh *handler.AvailabilityHandler,
	tenantCtx fiber.Handler,
) {
	slots := api.Group("/slots", tenantCtx)
	slots.Get("/", sh.List)
	slots.Post("/", sh.Create)
	slots.Put("/:id", sh.Update)
	slots.Delete("/:id", sh.Delete)

	api.Post("/availability/check", tenantCtx, avh.Check)
}
