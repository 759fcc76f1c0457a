package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
)

type AvailabilityHandler struct {
	svc availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrInvalidWindow),
		errors.Is(err, slot.ErrInvalidOwner):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /availability/check
//
// A denial is not an error: the response carries available=false plus the
// reason, so the front desk can tell "no slot" from "slot full".
func (h *AvailabilityHandler) Check(c fiber.Ctx) error {
	var body struct {
		ownerBody
		Date   string `json:"date"`
		Window string `json:"window"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Check(c.Context(), availability.CheckRequest{
		Owner:  body.owner(),
		Date:   body.Date,
		Window: body.Window,
	})
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	resp := fiber.Map{"available": res.Available}
	if !res.Available {
		resp["reason"] = res.Reason
		resp["message"] = res.Reason.Message()
	}
	if res.Slot != nil {
		resp["slot_id"] = res.Slot.ID
		resp["appointment_count"] = res.AppointmentCount
		resp["next_number"] = res.SequenceNumber()
	}
	return ok(c, resp)
}
