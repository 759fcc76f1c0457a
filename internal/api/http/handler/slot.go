package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
)

type SlotHandler struct {
	svc   slot.Service
	audit audit.Service
}

func NewSlotHandler(svc slot.Service, auditSvc audit.Service) *SlotHandler {
	return &SlotHandler{svc: svc, audit: auditSvc}
}

func mapSlotError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, slot.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, slot.ErrDuplicateName):
		return conflict(c, err.Error())
	case errors.Is(err, slot.ErrInvalidOwner),
		errors.Is(err, slot.ErrInvalidTime),
		errors.Is(err, slot.ErrInvalidTimeRange),
		errors.Is(err, slot.ErrInvalidWeekday):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

type slotBody struct {
	ownerBody
	SlotName         string `json:"slot_name"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	MaxCapacity      *int   `json:"max_capacity"`
	AvailabilityDays []int  `json:"availability_days"`
}

// POST /slots
func (h *SlotHandler) Create(c fiber.Ctx) error {
	var body slotBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	s, err := h.svc.Create(c.Context(), slot.CreateRequest{
		Owner:            body.owner(),
		SlotName:         body.SlotName,
		StartTime:        body.StartTime,
		EndTime:          body.EndTime,
		MaxCapacity:      body.MaxCapacity,
		AvailabilityDays: body.AvailabilityDays,
	})
	if err != nil {
		return mapSlotError(c, err)
	}

	entry := auditSuccess(c, "slot.create", "time_slot", s.ID)
	entry.NewValue = map[string]any{"slot_name": s.SlotName, "start_time": s.StartTime, "end_time": s.EndTime}
	h.audit.Log(entry)

	return created(c, s)
}

// PUT /slots/:id
func (h *SlotHandler) Update(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}

	var body slotBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	s, err := h.svc.Update(c.Context(), body.owner(), id, slot.UpdateRequest{
		SlotName:         body.SlotName,
		StartTime:        body.StartTime,
		EndTime:          body.EndTime,
		MaxCapacity:      body.MaxCapacity,
		AvailabilityDays: body.AvailabilityDays,
	})
	if err != nil {
		return mapSlotError(c, err)
	}

	entry := auditSuccess(c, "slot.update", "time_slot", s.ID)
	entry.NewValue = map[string]any{"slot_name": s.SlotName, "start_time": s.StartTime, "end_time": s.EndTime}
	h.audit.Log(entry)

	return ok(c, s)
}

// DELETE /slots/:id
func (h *SlotHandler) Delete(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}

	owner, err := ownerFromQuery(c)
	if err != nil {
		return badRequest(c, "exactly one of doctor_id and sub_doctor_id is required")
	}

	if err := h.svc.Delete(c.Context(), owner, id); err != nil {
		return mapSlotError(c, err)
	}

	h.audit.Log(auditSuccess(c, "slot.delete", "time_slot", id))

	return noContent(c)
}

// GET /slots
func (h *SlotHandler) List(c fiber.Ctx) error {
	owner, err := ownerFromQuery(c)
	if err != nil {
		return badRequest(c, "exactly one of doctor_id and sub_doctor_id is required")
	}

	slots, err := h.svc.List(c.Context(), owner)
	if err != nil {
		return mapSlotError(c, err)
	}

	return ok(c, slots)
}
