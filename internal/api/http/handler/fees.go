package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/fees"
)

type FeesHandler struct {
	svc   fees.Service
	audit audit.Service
}

func NewFeesHandler(svc fees.Service, auditSvc audit.Service) *FeesHandler {
	return &FeesHandler{svc: svc, audit: auditSvc}
}

func mapFeesError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, fees.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, fees.ErrInvalidFee):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

// PUT /fees
func (h *FeesHandler) Set(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		FeesFor string  `json:"fees_for"`
		Fees    float64 `json:"fees"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	row, err := h.svc.Set(c.Context(), hospitalID, body.FeesFor, body.Fees)
	if err != nil {
		return mapFeesError(c, err)
	}

	entry := auditSuccess(c, "fees.set", "set_fee", row.ID)
	entry.NewValue = map[string]any{"fees_for": row.FeesFor, "fees": row.Fees}
	h.audit.Log(entry)

	return ok(c, row)
}

// GET /fees
func (h *FeesHandler) List(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	rows, err := h.svc.List(c.Context(), hospitalID)
	if err != nil {
		return mapFeesError(c, err)
	}
	return ok(c, rows)
}

// GET /fees/lookup?for=
func (h *FeesHandler) Lookup(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	feesFor := c.Query("for")
	if feesFor == "" {
		return badRequest(c, "for is required")
	}

	fee, err := h.svc.Lookup(c.Context(), hospitalID, feesFor)
	if err != nil {
		return mapFeesError(c, err)
	}
	return ok(c, fiber.Map{"fees_for": feesFor, "fees": fee})
}

// DELETE /fees/:id
func (h *FeesHandler) Delete(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid fee id")
	}

	if err := h.svc.Delete(c.Context(), hospitalID, id); err != nil {
		return mapFeesError(c, err)
	}

	h.audit.Log(auditSuccess(c, "fees.delete", "set_fee", id))

	return noContent(c)
}
