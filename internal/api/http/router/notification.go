package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(
	api fiber.Router,
	nh *handler.NotificationHandler,
	tenantCtx fiber.Handler,
) {
	n := api.Group("/notifications", tenantCtx)
	n.Get("/", nh.List)
	n.Get("/count", nh.UnreadCount)
	n.Patch("/:id/read", nh.MarkRead)
	n.Delete("/:id", nh.Delete)
}
