package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/attendance"
)

type AttendanceHandler struct {
	svc attendance.Service
}

func NewAttendanceHandler(svc attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

func mapAttendanceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// receptionistID resolves who is checking in: receptionists act on their own
// row, a doctor may pass the id explicitly.
func receptionistID(c fiber.Ctx) (uint, bool) {
	actor, ok := actorFromLocals(c)
	if !ok {
		return 0, false
	}
	if actor.ReceptionistID != nil {
		return *actor.ReceptionistID, true
	}
	var body struct {
		ReceptionistID uint `json:"receptionist_id"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.ReceptionistID == 0 {
		return 0, false
	}
	return body.ReceptionistID, true
}

// POST /attendance/check-in
func (h *AttendanceHandler) CheckIn(c fiber.Ctx) error {
	id, ok := receptionistID(c)
	if !ok {
		return badRequest(c, "receptionist_id is required")
	}

	row, err := h.svc.CheckIn(c.Context(), id)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return created(c, row)
}

// POST /attendance/check-out
func (h *AttendanceHandler) CheckOut(c fiber.Ctx) error {
	id, valid := receptionistID(c)
	if !valid {
		return badRequest(c, "receptionist_id is required")
	}

	row, err := h.svc.CheckOut(c.Context(), id)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return ok(c, row)
}

// GET /attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) ForDate(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date is required")
	}

	rows, err := h.svc.ForDate(c.Context(), hospitalID, date)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return ok(c, rows)
}
