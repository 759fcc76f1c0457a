package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	ah *handler.AppointmentHandler,
	tenantCtx fiber.Handler,
) {
	patients := api.Group("/patients", tenantCtx)
	patients.Get("/", ph.List)
	patients.Post("/", ph.Register)
	patients.Get("/search", ph.Search)
	patients.Get("/:id", ph.Get)
	patients.Put("/:id", ph.Update)
	patients.Get("/:id/appointments", ah.ForPatient)
}
