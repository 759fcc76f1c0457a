package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerPractitionerRoutes(
	api fiber.Router,
	ph *handler.PractitionerHandler,
	tenantCtx fiber.Handler,
) {
	// Registration creates the tenant, so it runs without tenant context.
	api.Post("/doctors", ph.RegisterDoctor)

	doctors := api.Group("/doctors", tenantCtx)
	doctors.Get("/me", ph.GetDoctor)
	doctors.Patch("/me/clinic-settings", ph.UpdateClinicSettings)

	subs := api.Group("/sub-doctors", tenantCtx)
	subs.Post("/", ph.CreateSubDoctor)
	subs.Get("/", ph.ListSubDoctors)
	subs.Get("/:id", ph.GetSubDoctor)
	subs.Put("/:id", ph.UpdateSubDoctor)
	subs.Delete("/:id", ph.DeleteSubDoctor)

	api.Post("/receptionists", tenantCtx, ph.CreateReceptionist)
}
