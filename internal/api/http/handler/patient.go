package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/patient"
)

type PatientHandler struct {
	svc   patient.Service
	audit audit.Service
}

func NewPatientHandler(svc patient.Service, auditSvc audit.Service) *PatientHandler {
	return &PatientHandler{svc: svc, audit: auditSvc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	var denied *appointment.NotAvailableError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": denied.Error(), "reason": denied.Result.Reason})
	}

	switch {
	case errors.Is(err, patient.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrDuplicate),
		errors.Is(err, appointment.ErrDuplicateForDay):
		return conflict(c, err.Error())
	case errors.Is(err, patient.ErrInvalidMobile),
		errors.Is(err, patient.ErrInvalidName),
		errors.Is(err, appointment.ErrInvalidFees):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

type patientBody struct {
	Name         string  `json:"name"`
	MobileNumber string  `json:"mobile_number"`
	Address      string  `json:"address"`
	Email        *string `json:"email"`
	Age          string  `json:"age"`
	DateOfBirth  string  `json:"date_of_birth"`
	BloodGroup   string  `json:"blood_group"`
	Gender       string  `json:"gender"`
	Toxicity     bool    `json:"toxicity"`
	ReferredBy   *string `json:"referred_by"`
}

// POST /patients
func (h *PatientHandler) Register(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		patientBody
		Booking *struct {
			ownerBody
			Date      string `json:"date"`
			Window    string `json:"window"`
			Reason    string `json:"reason"`
			Process   string `json:"process"`
			Fees      int    `json:"fees"`
			ExtraFees int    `json:"extra_fees"`
		} `json:"booking"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := patient.RegisterRequest{
		Name:         body.Name,
		MobileNumber: body.MobileNumber,
		Address:      body.Address,
		Email:        body.Email,
		Age:          body.Age,
		DateOfBirth:  body.DateOfBirth,
		BloodGroup:   body.BloodGroup,
		Gender:       body.Gender,
		Toxicity:     body.Toxicity,
		ReferredBy:   body.ReferredBy,
	}
	if body.Booking != nil {
		req.Booking = &patient.BookingRequest{
			Owner:     body.Booking.owner(),
			Date:      body.Booking.Date,
			Window:    body.Booking.Window,
			Reason:    body.Booking.Reason,
			Process:   body.Booking.Process,
			Fees:      body.Booking.Fees,
			ExtraFees: body.Booking.ExtraFees,
		}
	}

	view, appt, err := h.svc.Register(c.Context(), hospitalID, req)
	if err != nil {
		return mapPatientError(c, err)
	}

	entry := auditSuccess(c, "patient.register", "patient", view.Patient.ID)
	entry.NewValue = map[string]any{"name": body.Name, "mobile": body.MobileNumber}
	h.audit.Log(entry)

	resp := fiber.Map{"patient": view}
	if appt != nil {
		resp["appointment"] = appt
	}
	return created(c, resp)
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}

	view, err := h.svc.Get(c.Context(), hospitalID, id)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, view)
}

// GET /patients/search?term=
func (h *PatientHandler) Search(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	term := c.Query("term")
	if term == "" {
		return badRequest(c, "term is required")
	}

	views, err := h.svc.Search(c.Context(), hospitalID, term)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, views)
}

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	res, err := h.svc.List(c.Context(), hospitalID, q.Page, q.PerPage)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, res)
}

// PUT /patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid patient id")
	}

	var body patientBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.svc.Update(c.Context(), hospitalID, id, patient.UpdateRequest{
		Name:         body.Name,
		MobileNumber: body.MobileNumber,
		Address:      body.Address,
		Email:        body.Email,
		Age:          body.Age,
		DateOfBirth:  body.DateOfBirth,
		BloodGroup:   body.BloodGroup,
		Toxicity:     body.Toxicity,
		ReferredBy:   body.ReferredBy,
	})
	if err != nil {
		return mapPatientError(c, err)
	}

	entry := auditSuccess(c, "patient.update", "patient", id)
	entry.NewValue = map[string]any{"name": body.Name, "mobile": body.MobileNumber}
	h.audit.Log(entry)

	return ok(c, view)
}
