package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	tenantCtx fiber.Handler,
) {
	appts := api.Group("/appointments", tenantCtx)

	appts.Post("/", ah.Book)
	appts.Get("/today", ah.Today)
	appts.Get("/first", ah.First)

	a := appts.Group("/:id")
	a.Get("/", ah.Get)
	a.Patch("/status", ah.SetStatus)
	a.Patch("/cancel", ah.Cancel)
	a.Patch("/reschedule", ah.Reschedule)
	a.Post("/submit", ah.Submit)
	a.Patch("/parameters", ah.AddParameters)
	a.Patch("/payment-mode", ah.AddPaymentMode)
	a.Put("/document", ah.AddDocument)
}
