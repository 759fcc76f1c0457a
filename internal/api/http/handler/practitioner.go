package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/practitioner"
)

type PractitionerHandler struct {
	svc   practitioner.Service
	audit audit.Service
}

func NewPractitionerHandler(svc practitioner.Service, auditSvc audit.Service) *PractitionerHandler {
	return &PractitionerHandler{svc: svc, audit: auditSvc}
}

func mapPractitionerError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, practitioner.ErrDoctorNotFound),
		errors.Is(err, practitioner.ErrSubDoctorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, practitioner.ErrEmailTaken):
		return conflict(c, err.Error())
	case errors.Is(err, practitioner.ErrInvalidMobile),
		errors.Is(err, practitioner.ErrInvalidName),
		errors.Is(err, practitioner.ErrWeakPassword):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /doctors
//
// Tenant registration. Unlike everything else under /api/v1 this route is
// not behind TenantContext: the tenant does not exist yet.
func (h *PractitionerHandler) RegisterDoctor(c fiber.Ctx) error {
	var body struct {
		Name                 string  `json:"name"`
		ClinicName           string  `json:"clinic_name"`
		MobileNumber         string  `json:"mobile_number"`
		Address              string  `json:"address"`
		Email                string  `json:"email"`
		ClinicAddress        string  `json:"clinic_address"`
		Experience           string  `json:"experience"`
		Gender               string  `json:"gender"`
		Password             string  `json:"password"`
		MedicalLicenceNumber string  `json:"medical_licence_number"`
		MedicalDegree        string  `json:"medical_degree"`
		DateOfBirth          *string `json:"date_of_birth"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.svc.RegisterDoctor(c.Context(), practitioner.RegisterDoctorRequest{
		Name:                 body.Name,
		ClinicName:           body.ClinicName,
		MobileNumber:         body.MobileNumber,
		Address:              body.Address,
		Email:                body.Email,
		ClinicAddress:        body.ClinicAddress,
		Experience:           body.Experience,
		Gender:               body.Gender,
		Password:             body.Password,
		MedicalLicenceNumber: body.MedicalLicenceNumber,
		MedicalDegree:        body.MedicalDegree,
		DateOfBirth:          body.DateOfBirth,
	})
	if err != nil {
		return mapPractitionerError(c, err)
	}

	return created(c, view)
}

// GET /doctors/me
func (h *PractitionerHandler) GetDoctor(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	view, err := h.svc.GetDoctor(c.Context(), hospitalID)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, view)
}

// PATCH /doctors/me/clinic-settings
func (h *PractitionerHandler) UpdateClinicSettings(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		ClinicStartTime *string  `json:"clinic_start_time"`
		ClinicEndTime   *string  `json:"clinic_end_time"`
		OpenDays        []string `json:"open_days"`
		ClosedDays      []string `json:"closed_days"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.svc.UpdateClinicSettings(c.Context(), hospitalID, practitioner.ClinicSettingsRequest{
		ClinicStartTime: body.ClinicStartTime,
		ClinicEndTime:   body.ClinicEndTime,
		OpenDays:        body.OpenDays,
		ClosedDays:      body.ClosedDays,
	})
	if err != nil {
		return mapPractitionerError(c, err)
	}

	h.audit.Log(auditSuccess(c, "doctor.clinic_settings", "doctor", hospitalID))

	return ok(c, view)
}

type subDoctorBody struct {
	Name                  string  `json:"name"`
	Email                 string  `json:"email"`
	MobileNumber          string  `json:"mobile_number"`
	AlternateMobileNumber *string `json:"alternate_mobile_number"`
	Gender                string  `json:"gender"`
	Specialization        string  `json:"specialization"`
	Qualification         *string `json:"qualification"`
	Experience            *int    `json:"experience"`
	DateOfBirth           *string `json:"date_of_birth"`
	Address               *string `json:"address"`
	City                  *string `json:"city"`
	State                 *string `json:"state"`
	Country               *string `json:"country"`
	PinCode               *string `json:"pin_code"`
}

func (b subDoctorBody) toRequest() practitioner.CreateSubDoctorRequest {
	return practitioner.CreateSubDoctorRequest{
		Name:                  b.Name,
		Email:                 b.Email,
		MobileNumber:          b.MobileNumber,
		AlternateMobileNumber: b.AlternateMobileNumber,
		Gender:                b.Gender,
		Specialization:        b.Specialization,
		Qualification:         b.Qualification,
		Experience:            b.Experience,
		DateOfBirth:           b.DateOfBirth,
		Address:               b.Address,
		City:                  b.City,
		State:                 b.State,
		Country:               b.Country,
		PinCode:               b.PinCode,
	}
}

// POST /sub-doctors
func (h *PractitionerHandler) CreateSubDoctor(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body subDoctorBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.svc.CreateSubDoctor(c.Context(), hospitalID, body.toRequest())
	if err != nil {
		return mapPractitionerError(c, err)
	}

	entry := auditSuccess(c, "subdoctor.create", "sub_doctor", view.SubDoctor.ID)
	entry.NewValue = map[string]any{"name": body.Name, "email": body.Email}
	h.audit.Log(entry)

	return created(c, view)
}

// GET /sub-doctors/:id
func (h *PractitionerHandler) GetSubDoctor(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "invalid sub-doctor id")
	}

	view, err := h.svc.GetSubDoctor(c.Context(), hospitalID, id)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, view)
}

// GET /sub-doctors
func (h *PractitionerHandler) ListSubDoctors(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	if term := c.Query("term"); term != "" {
		views, err := h.svc.SearchSubDoctors(c.Context(), hospitalID, term)
		if err != nil {
			return mapPractitionerError(c, err)
		}
		return ok(c, views)
	}

	views, err := h.svc.ListSubDoctors(c.Context(), hospitalID)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, views)
}

// PUT /sub-doctors/:id
func (h *PractitionerHandler) UpdateSubDoctor(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "invalid sub-doctor id")
	}

	var body subDoctorBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	view, err := h.svc.UpdateSubDoctor(c.Context(), hospitalID, id, body.toRequest())
	if err != nil {
		return mapPractitionerError(c, err)
	}

	h.audit.Log(auditSuccess(c, "subdoctor.update", "sub_doctor", id))

	return ok(c, view)
}

// DELETE /sub-doctors/:id
func (h *PractitionerHandler) DeleteSubDoctor(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return badRequest(c, "invalid sub-doctor id")
	}

	if err := h.svc.DeleteSubDoctor(c.Context(), hospitalID, id); err != nil {
		return mapPractitionerError(c, err)
	}

	h.audit.Log(auditSuccess(c, "subdoctor.delete", "sub_doctor", id))

	return noContent(c)
}

// POST /receptionists
func (h *PractitionerHandler) CreateReceptionist(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Name          string  `json:"name"`
		MobileNumber  string  `json:"mobile_number"`
		Address       string  `json:"address"`
		Email         string  `json:"email"`
		DateOfBirth   *string `json:"date_of_birth"`
		Age           *int    `json:"age"`
		DateOfJoining string  `json:"date_of_joining"` // YYYY-MM-DD
		Gender        string  `json:"gender"`
		Qualification string  `json:"qualification"`
		Password      string  `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	joined := time.Now()
	if body.DateOfJoining != "" {
		t, err := time.Parse("2006-01-02", body.DateOfJoining)
		if err != nil {
			return badRequest(c, "invalid date_of_joining")
		}
		joined = t
	}

	rec, err := h.svc.CreateReceptionist(c.Context(), hospitalID, practitioner.CreateReceptionistRequest{
		Name:          body.Name,
		MobileNumber:  body.MobileNumber,
		Address:       body.Address,
		Email:         body.Email,
		DateOfBirth:   body.DateOfBirth,
		Age:           body.Age,
		DateOfJoining: joined,
		Gender:        body.Gender,
		Qualification: body.Qualification,
		Password:      body.Password,
	})
	if err != nil {
		return mapPractitionerError(c, err)
	}

	entry := auditSuccess(c, "receptionist.create", "receptionist", rec.ID)
	entry.NewValue = map[string]any{"name": body.Name, "email": body.Email}
	h.audit.Log(entry)

	return created(c, rec)
}
