package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
)

func (r *Router) registerMedicineRoutes(
	api fiber.Router,
	mh *handler.MedicineHandler,
	tenantCtx fiber.Handler,
) {
	meds := api.Group("/medicines", tenantCtx)
	meds.Get("/", mh.List)
	meds.Post("/", mh.Add)
	meds.Put("/:id", mh.Update)
	meds.Delete("/:id", mh.Delete)
}
