package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerAttendanceRoutes(
	api fiber.Router,
	ah *handler.AttendanceHandler,
	auh *handler.AuditHandler,
	tenantCtx fiber.Handler,
) {
	att := api.Group("/attendance", tenantCtx)
	att.Get("/", ah.ForDate)
	att.Post("/check-in", ah.CheckIn)
	att.Post("/check-out", ah.CheckOut)

	api.Get("/audit-logs", tenantCtx, auh.List)
}
