package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/medicine"
)

type MedicineHandler struct {
	svc   medicine.Service
	audit audit.Service
}

func NewMedicineHandler(svc medicine.Service, auditSvc audit.Service) *MedicineHandler {
	return &MedicineHandler{svc: svc, audit: auditSvc}
}

func mapMedicineError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, medicine.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, medicine.ErrDuplicateSpec):
		return conflict(c, err.Error())
	case errors.Is(err, medicine.ErrInvalidInput):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

type medicineBody struct {
	Name     string `json:"medicine_name"`
	Strength string `json:"strength"`
	Form     string `json:"form"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
}

func (b medicineBody) toRequest() medicine.Request {
	return medicine.Request{
		Name:     b.Name,
		Strength: b.Strength,
		Form:     b.Form,
		Category: b.Category,
		Brand:    b.Brand,
	}
}

// POST /medicines
func (h *MedicineHandler) Add(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body medicineBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	row, err := h.svc.Add(c.Context(), hospitalID, body.toRequest())
	if err != nil {
		return mapMedicineError(c, err)
	}

	entry := auditSuccess(c, "medicine.add", "medicine", row.ID)
	entry.NewValue = map[string]any{"medicine_name": row.Name, "strength": row.Strength, "form": row.Form, "brand": row.Brand}
	h.audit.Log(entry)

	return created(c, row)
}

// GET /medicines?term=
func (h *MedicineHandler) List(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	rows, err := h.svc.List(c.Context(), hospitalID, c.Query("term"))
	if err != nil {
		return mapMedicineError(c, err)
	}
	return ok(c, rows)
}

// PUT /medicines/:id
func (h *MedicineHandler) Update(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid medicine id")
	}

	var body medicineBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	row, err := h.svc.Update(c.Context(), hospitalID, id, body.toRequest())
	if err != nil {
		return mapMedicineError(c, err)
	}

	entry := auditSuccess(c, "medicine.update", "medicine", row.ID)
	entry.NewValue = map[string]any{"medicine_name": row.Name, "strength": row.Strength, "form": row.Form, "brand": row.Brand}
	h.audit.Log(entry)

	return ok(c, row)
}

// DELETE /medicines/:id
func (h *MedicineHandler) Delete(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid medicine id")
	}

	if err := h.svc.Delete(c.Context(), hospitalID, id); err != nil {
		return mapMedicineError(c, err)
	}

	h.audit.Log(auditSuccess(c, "medicine.delete", "medicine", id))

	return noContent(c)
}
