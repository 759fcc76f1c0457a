package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
)

type AppointmentHandler struct {
	svc   appointment.Service
	audit audit.Service
}

func NewAppointmentHandler(svc appointment.Service, auditSvc audit.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, audit: auditSvc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	var denied *appointment.NotAvailableError
	if errors.As(err, &denied) {
		resp := fiber.Map{"error": denied.Error(), "reason": denied.Result.Reason}
		return c.Status(fiber.StatusConflict).JSON(resp)
	}

	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrDuplicateForDay),
		errors.Is(err, appointment.ErrAlreadyCancelled),
		errors.Is(err, appointment.ErrAlreadyProceeded),
		errors.Is(err, appointment.ErrAlreadyOut),
		errors.Is(err, appointment.ErrNotCheckedIn):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrFutureDate),
		errors.Is(err, appointment.ErrPastDate),
		errors.Is(err, appointment.ErrSameDay),
		errors.Is(err, appointment.ErrInvalidPayment),
		errors.Is(err, appointment.ErrInvalidFees),
		errors.Is(err, appointment.ErrPastFollowUp),
		errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrInvalidWindow),
		errors.Is(err, slot.ErrInvalidOwner):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

type bookBody struct {
	ownerBody
	PatientID uint   `json:"patient_id"`
	Date      string `json:"date"`
	Window    string `json:"window"`
	Reason    string `json:"reason"`
	Process   string `json:"process"`
	Fees      int    `json:"fees"`
	ExtraFees int    `json:"extra_fees"`
}

// POST /appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	var body bookBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.PatientID == 0 {
		return badRequest(c, "patient_id is required")
	}

	appt, err := h.svc.Book(c.Context(), appointment.BookRequest{
		PatientID: body.PatientID,
		Owner:     body.owner(),
		Date:      body.Date,
		Window:    body.Window,
		Reason:    body.Reason,
		Process:   body.Process,
		Fees:      body.Fees,
		ExtraFees: body.ExtraFees,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	entry := auditSuccess(c, "appointment.book", "appointment", appt.ID)
	entry.NewValue = map[string]any{"date": appt.Date, "number": appt.AppointmentNumber, "patient_id": appt.PatientID}
	h.audit.Log(entry)

	return created(c, appt)
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	view, err := h.svc.Get(c.Context(), hospitalID, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, view)
}

// GET /appointments/today
func (h *AppointmentHandler) Today(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Date        string  `query:"date"`
		DoctorID    *uint   `query:"doctor_id"`
		SubDoctorID *string `query:"sub_doctor_id"`
		Window      *string `query:"window"`
		Search      string  `query:"search"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}

	query := appointment.TodayQuery{
		Date:       q.Date,
		Window:     q.Window,
		SearchTerm: q.Search,
	}
	if q.DoctorID != nil || q.SubDoctorID != nil {
		owner := slot.Owner{DoctorID: q.DoctorID, SubDoctorID: q.SubDoctorID}
		if err := owner.Validate(); err != nil {
			return badRequest(c, err.Error())
		}
		query.Owner = &owner
	}

	views, stats, err := h.svc.Today(c.Context(), hospitalID, query)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, fiber.Map{
		"appointments": views,
		"pending":      stats.Pending,
		"complete":     stats.Complete,
	})
}

// GET /appointments/first
func (h *AppointmentHandler) First(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	owner, err := ownerFromQuery(c)
	if err != nil {
		return badRequest(c, "exactly one of doctor_id and sub_doctor_id is required")
	}
	includePending := c.Query("include_pending") == "true"

	view, err := h.svc.First(c.Context(), hospitalID, owner, includePending)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, view)
}

// GET /patients/:id/appointments
func (h *AppointmentHandler) ForPatient(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}

	views, err := h.svc.ForPatient(c.Context(), hospitalID, patientID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, views)
}

// PATCH /appointments/:id/status
func (h *AppointmentHandler) SetStatus(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.SetStatus(c.Context(), id, model.AppointmentStatus(body.Status))
	if err != nil {
		return mapAppointmentError(c, err)
	}

	entry := auditSuccess(c, "appointment.status", "appointment", id)
	entry.NewValue = map[string]any{"status": body.Status}
	h.audit.Log(entry)

	return ok(c, appt)
}

// PATCH /appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Cancel(c.Context(), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	h.audit.Log(auditSuccess(c, "appointment.cancel", "appointment", id))

	return ok(c, appt)
}

// PATCH /appointments/:id/reschedule
func (h *AppointmentHandler) Reschedule(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Date    string `json:"date"`
		Window  string `json:"window"`
		Process string `json:"process"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Reschedule(c.Context(), id, appointment.RescheduleRequest{
		Date:    body.Date,
		Window:  body.Window,
		Process: body.Process,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	entry := auditSuccess(c, "appointment.reschedule", "appointment", id)
	entry.NewValue = map[string]any{"date": body.Date, "window": body.Window}
	h.audit.Log(entry)

	return ok(c, appt)
}

// POST /appointments/:id/submit
func (h *AppointmentHandler) Submit(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		FollowUp        *string `json:"follow_up"`
		Note            *string `json:"note"`
		Fees            int     `json:"fees"`
		ExtraFees       int     `json:"extra_fees"`
		Investigation   *string `json:"investigation"`
		ChiefComplaints *string `json:"chief_complaints"`
		Diagnosis       *string `json:"diagnosis"`
		Prescription    *string `json:"prescription"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Submit(c.Context(), id, appointment.SubmitRequest{
		FollowUp:        body.FollowUp,
		Note:            body.Note,
		Fees:            body.Fees,
		ExtraFees:       body.ExtraFees,
		Investigation:   body.Investigation,
		ChiefComplaints: body.ChiefComplaints,
		Diagnosis:       body.Diagnosis,
		Prescription:    body.Prescription,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	h.audit.Log(auditSuccess(c, "appointment.submit", "appointment", id))

	return ok(c, appt)
}

// PATCH /appointments/:id/parameters
func (h *AppointmentHandler) AddParameters(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Parameters string `json:"parameters"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.AddParameters(c.Context(), id, body.Parameters); err != nil {
		return mapAppointmentError(c, err)
	}
	return noContent(c)
}

// PATCH /appointments/:id/payment-mode
func (h *AppointmentHandler) AddPaymentMode(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Mode string `json:"mode"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.AddPaymentMode(c.Context(), id, body.Mode); err != nil {
		return mapAppointmentError(c, err)
	}

	entry := auditSuccess(c, "appointment.payment", "appointment", id)
	entry.NewValue = map[string]any{"mode": body.Mode}
	h.audit.Log(entry)

	return noContent(c)
}

// PUT /appointments/:id/document
func (h *AppointmentHandler) AddDocument(c fiber.Ctx) error {
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Data        string `json:"data"` // base64
		ContentType string `json:"content_type"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Data == "" {
		return badRequest(c, "data is required")
	}

	if err := h.svc.AddDocument(c.Context(), id, body.Data, body.ContentType); err != nil {
		return mapAppointmentError(c, err)
	}

	h.audit.Log(auditSuccess(c, "appointment.document", "appointment", id))

	return noContent(c)
}
