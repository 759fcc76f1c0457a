// Package appointment is the booking ledger. Bookings are admitted through
// the availability check re-run inside a locking transaction, numbered per
// practitioner per day, and never hard-deleted.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/pkg/constants"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
	"github.com/cliniva/cliniva_backend/pkg/searchindex"
)

const dateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	PatientID uint
	Owner     slot.Owner
	Date      string // YYYY-MM-DD
	Window    string // "HH:mm - HH:mm"
	Reason    string
	Process   string
	Fees      int
	ExtraFees int
}

type RescheduleRequest struct {
	Date    string
	Window  string
	Process string
}

type SubmitRequest struct {
	FollowUp        *string
	Note            *string
	Fees            int
	ExtraFees       int
	Investigation   *string // JSON
	ChiefComplaints *string // JSON
	Diagnosis       *string // JSON
	Prescription    *string // JSON array
}

type TodayQuery struct {
	Date       string
	Owner      *slot.Owner // nil means all practitioners of the tenant
	Window     *string
	SearchTerm string
}

// View is an appointment with its clinical fields decrypted and the patient
// summary attached.
type View struct {
	Appointment model.Appointment
	PatientName string
	PatientCode string
	Document    *string // base64 payload of the decrypted document
}

type TodayStats struct {
	Pending  int64
	Complete int64
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Book admits and creates a booking. The availability decision is
	// repeated inside the transaction with the slot row locked, so two
	// concurrent bookings for the last seat cannot both pass.
	Book(ctx context.Context, req BookRequest) (*model.Appointment, error)
	// BookTx is Book inside an existing transaction, for callers that
	// create the patient and the first booking atomically.
	BookTx(tx *gorm.DB, req BookRequest) (*model.Appointment, error)

	Get(ctx context.Context, hospitalID, id uint) (*View, error)
	Today(ctx context.Context, hospitalID uint, q TodayQuery) ([]View, TodayStats, error)
	First(ctx context.Context, hospitalID uint, owner slot.Owner, includePending bool) (*View, error)
	ForPatient(ctx context.Context, hospitalID, patientID uint) ([]View, error)

	// SetStatus moves a visit to "in" or "out". Checking a patient in moves
	// every other "in" visit of the practitioner to "out" first, so at most
	// one patient is in the room.
	SetStatus(ctx context.Context, id uint, status model.AppointmentStatus) (*model.Appointment, error)
	// Cancel marks a pending booking cancelled. The row is kept.
	Cancel(ctx context.Context, id uint) (*model.Appointment, error)
	Reschedule(ctx context.Context, id uint, req RescheduleRequest) (*model.Appointment, error)

	// Submit records the clinical outcome and checks the patient out.
	Submit(ctx context.Context, id uint, req SubmitRequest) (*model.Appointment, error)
	AddParameters(ctx context.Context, id uint, parameters string) error
	AddPaymentMode(ctx context.Context, id uint, mode string) error
	AddDocument(ctx context.Context, id uint, base64Data, contentType string) error

	// CancelStale cancels pending visits older than before (exclusive).
	// Run daily by the stale sweep worker.
	CancelStale(ctx context.Context, before string) (int64, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	db    *gorm.DB
	avail availability.Service
	key   []byte
	nc    *nats.Conn
	now   func() time.Time
}

// New builds the service. nc may be nil when eventing is disabled (tests).
func New(db *gorm.DB, avail availability.Service, key []byte, nc *nats.Conn) Service {
	return &appointmentService{db: db, avail: avail, key: key, nc: nc, now: time.Now}
}

// ---------------------------------------------------------------------------
// Booking
// ---------------------------------------------------------------------------

func (s *appointmentService) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	var appt *model.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = s.BookTx(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish("appointment.created", appt)
	return appt, nil
}

func (s *appointmentService) BookTx(tx *gorm.DB, req BookRequest) (*model.Appointment, error) {
	if err := req.Owner.Validate(); err != nil {
		return nil, err
	}
	if req.Fees <= 0 {
		return nil, ErrInvalidFees
	}

	res, err := s.avail.CheckForUpdate(tx, availability.CheckRequest{
		Owner:  req.Owner,
		Date:   req.Date,
		Window: req.Window,
	})
	if err != nil {
		return nil, err
	}
	if !res.Available {
		return nil, &NotAvailableError{Result: res}
	}

	// One booking per patient per day; cancelled visits do not block.
	var dup int64
	err = tx.Model(&model.Appointment{}).
		Where("patient_id = ? AND date = ?", req.PatientID, req.Date).
		Where("status IS NULL OR status <> ?", model.StatusCancel).
		Count(&dup).Error
	if err != nil {
		return nil, fmt.Errorf("check existing appointment: %w", err)
	}
	if dup > 0 {
		return nil, ErrDuplicateForDay
	}

	reason, err := crypto.Encrypt(s.key, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("encrypt reason: %w", err)
	}

	window := req.Window
	appt := &model.Appointment{
		PatientID:         req.PatientID,
		DoctorID:          req.Owner.DoctorID,
		SubDoctorID:       req.Owner.SubDoctorID,
		AppointmentNumber: res.SequenceNumber(),
		Reason:            reason,
		Date:              req.Date,
		Process:           req.Process,
		Fees:              req.Fees,
		ExtraFees:         req.ExtraFees,
		PaymentStatus:     model.PaymentPending,
		AppointmentTime:   &window,
	}
	if err := tx.Create(appt).Error; err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (s *appointmentService) Get(ctx context.Context, hospitalID, id uint) (*View, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("patients.doctor_id = ?", hospitalID).
		Where("appointments.id = ?", id).
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return s.view(&appt)
}

func (s *appointmentService) Today(ctx context.Context, hospitalID uint, q TodayQuery) ([]View, TodayStats, error) {
	base := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("patients.doctor_id = ?", hospitalID).
		Where("appointments.date = ?", q.Date)

	if q.Owner != nil {
		if err := q.Owner.Validate(); err != nil {
			return nil, TodayStats{}, err
		}
		base = base.Scopes(ownerScope(*q.Owner, "appointments"))
	}
	if q.Window != nil {
		base = base.Where("appointments.appointment_time = ?", *q.Window)
	}

	if q.SearchTerm != "" {
		mapping, err := s.tenantMapping(ctx, hospitalID)
		if err != nil {
			return nil, TodayStats{}, err
		}
		term := "%" + mapping.Transform(q.SearchTerm) + "%"
		base = base.Where("patients.patient_code LIKE ? OR patients.name_search LIKE ?", term, term)
	}

	var appts []model.Appointment
	err := base.Preload("Patient").
		Order("CASE WHEN appointments.status IS NULL THEN 1 WHEN appointments.status = 'out' THEN 2 WHEN appointments.status = 'cancel' THEN 3 ELSE 0 END ASC").
		Order("appointments.appointment_time ASC").
		Order("appointments.created_at ASC").
		Find(&appts).Error
	if err != nil {
		return nil, TodayStats{}, fmt.Errorf("list today appointments: %w", err)
	}

	views := make([]View, 0, len(appts))
	for i := range appts {
		v, err := s.view(&appts[i])
		if err != nil {
			return nil, TodayStats{}, err
		}
		views = append(views, *v)
	}

	stats, err := s.todayStats(ctx, hospitalID, q)
	if err != nil {
		return nil, TodayStats{}, err
	}
	return views, stats, nil
}

func (s *appointmentService) todayStats(ctx context.Context, hospitalID uint, q TodayQuery) (TodayStats, error) {
	scoped := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&model.Appointment{}).
			Joins("JOIN patients ON patients.id = appointments.patient_id").
			Where("patients.doctor_id = ?", hospitalID).
			Where("appointments.date = ?", q.Date)
		if q.Owner != nil {
			db = db.Scopes(ownerScope(*q.Owner, "appointments"))
		}
		return db
	}

	var stats TodayStats
	if err := scoped().Where("appointments.status IS NULL").Count(&stats.Pending).Error; err != nil {
		return stats, fmt.Errorf("count pending: %w", err)
	}
	if err := scoped().Where("appointments.status = ?", model.StatusOut).Count(&stats.Complete).Error; err != nil {
		return stats, fmt.Errorf("count complete: %w", err)
	}
	return stats, nil
}

func (s *appointmentService) First(ctx context.Context, hospitalID uint, owner slot.Owner, includePending bool) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	today := s.now().Format(dateLayout)
	q := s.db.WithContext(ctx).
		Preload("Patient").
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("patients.doctor_id = ?", hospitalID).
		Scopes(ownerScope(owner, "appointments")).
		Where("appointments.date = ?", today)

	if includePending {
		q = q.Where("appointments.status = ? OR appointments.status IS NULL", model.StatusIn)
	} else {
		q = q.Where("appointments.status = ?", model.StatusIn)
	}

	var appt model.Appointment
	err := q.Order("appointments.status DESC").
		Order("appointments.created_at ASC").
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get first appointment: %w", err)
	}
	return s.view(&appt)
}

func (s *appointmentService) ForPatient(ctx context.Context, hospitalID, patientID uint) ([]View, error) {
	var patient model.Patient
	err := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", patientID, hospitalID).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	var appts []model.Appointment
	err = s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("date DESC, created_at DESC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}

	views := make([]View, 0, len(appts))
	for i := range appts {
		appts[i].Patient = &patient
		v, err := s.view(&appts[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (s *appointmentService) SetStatus(ctx context.Context, id uint, status model.AppointmentStatus) (*model.Appointment, error) {
	if status != model.StatusIn && status != model.StatusOut {
		return nil, ErrInvalidStatus
	}

	var appt model.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get appointment: %w", err)
		}

		switch {
		case appt.Status != nil && *appt.Status == model.StatusCancel:
			return ErrAlreadyCancelled
		case appt.Status == nil && status == model.StatusOut:
			return ErrNotCheckedIn
		case appt.Status != nil && *appt.Status == model.StatusOut:
			return ErrAlreadyOut
		}

		// Whoever was in goes out; the room holds one patient.
		err := tx.Model(&model.Appointment{}).
			Scopes(ownerScope(ownerOf(&appt), "appointments")).
			Where("status = ?", model.StatusIn).
			Update("status", model.StatusOut).Error
		if err != nil {
			return fmt.Errorf("close previous in appointments: %w", err)
		}

		appt.Status = &status
		if err := tx.Save(&appt).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("appointment.updated", &appt)
	return &appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get appointment: %w", err)
		}
		if appt.Status != nil {
			return ErrAlreadyProceeded
		}

		status := model.StatusCancel
		appt.Status = &status
		if err := tx.Save(&appt).Error; err != nil {
			return fmt.Errorf("cancel appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("appointment.cancelled", &appt)
	return &appt, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, id uint, req RescheduleRequest) (*model.Appointment, error) {
	newDay, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, availability.ErrInvalidDate
	}

	var appt model.Appointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get appointment: %w", err)
		}
		if appt.Status != nil {
			return ErrAlreadyProceeded
		}

		if newDay.Before(startOfDay(s.now())) {
			return ErrPastDate
		}
		if req.Date == appt.Date {
			return ErrSameDay
		}

		res, err := s.avail.CheckForUpdate(tx, availability.CheckRequest{
			Owner:  ownerOf(&appt),
			Date:   req.Date,
			Window: req.Window,
		})
		if err != nil {
			return err
		}
		if !res.Available {
			return &NotAvailableError{Result: res}
		}

		// Any booking on the target date blocks, cancelled or not.
		var dup int64
		err = tx.Model(&model.Appointment{}).
			Where("patient_id = ? AND date = ? AND id <> ?", appt.PatientID, req.Date, appt.ID).
			Count(&dup).Error
		if err != nil {
			return fmt.Errorf("check existing appointment: %w", err)
		}
		if dup > 0 {
			return ErrDuplicateForDay
		}

		window := req.Window
		appt.Date = req.Date
		appt.AppointmentTime = &window
		appt.Process = req.Process
		appt.AppointmentNumber = res.SequenceNumber()
		if err := tx.Save(&appt).Error; err != nil {
			return fmt.Errorf("reschedule appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("appointment.updated", &appt)
	return &appt, nil
}

// ---------------------------------------------------------------------------
// Clinical updates
// ---------------------------------------------------------------------------

func (s *appointmentService) Submit(ctx context.Context, id uint, req SubmitRequest) (*model.Appointment, error) {
	if req.Fees < 0 || req.ExtraFees < 0 {
		return nil, ErrInvalidFees
	}
	if req.FollowUp != nil {
		fu, err := time.Parse(dateLayout, *req.FollowUp)
		if err != nil || !fu.After(startOfDay(s.now())) {
			return nil, ErrPastFollowUp
		}
	}

	var appt model.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := s.mutable(tx, id)
		if err != nil {
			return err
		}
		appt = *loaded

		appt.FollowUp, err = s.encryptPtr(req.FollowUp)
		if err != nil {
			return err
		}
		appt.Note, err = s.encryptPtr(req.Note)
		if err != nil {
			return err
		}
		appt.Investigation, err = s.encryptPtr(req.Investigation)
		if err != nil {
			return err
		}
		appt.ChiefComplaints, err = s.encryptPtr(req.ChiefComplaints)
		if err != nil {
			return err
		}
		appt.Diagnosis, err = s.encryptPtr(req.Diagnosis)
		if err != nil {
			return err
		}
		appt.Prescription, err = s.encryptPtr(req.Prescription)
		if err != nil {
			return err
		}

		// Resubmitting an already checked-out visit must not double the fee.
		if req.Fees > 0 && (appt.Status == nil || *appt.Status != model.StatusOut) {
			appt.Fees += req.Fees
		}
		appt.ExtraFees = req.ExtraFees

		out := model.StatusOut
		appt.Status = &out

		if err := tx.Save(&appt).Error; err != nil {
			return fmt.Errorf("submit appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("appointment.updated", &appt)
	return &appt, nil
}

func (s *appointmentService) AddParameters(ctx context.Context, id uint, parameters string) error {
	enc, err := crypto.Encrypt(s.key, parameters)
	if err != nil {
		return fmt.Errorf("encrypt parameters: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := s.mutable(tx, id)
		if err != nil {
			return err
		}
		appt.Parameters = &enc
		if err := tx.Save(appt).Error; err != nil {
			return fmt.Errorf("add parameters: %w", err)
		}
		return nil
	})
}

func (s *appointmentService) AddPaymentMode(ctx context.Context, id uint, mode string) error {
	if mode != "Cash" && mode != "Online" {
		return ErrInvalidPayment
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := s.mutable(tx, id)
		if err != nil {
			return err
		}
		appt.PaymentMode = &mode
		if err := tx.Save(appt).Error; err != nil {
			return fmt.Errorf("add payment mode: %w", err)
		}
		return nil
	})
}

func (s *appointmentService) AddDocument(ctx context.Context, id uint, base64Data, contentType string) error {
	enc, err := crypto.Encrypt(s.key, base64Data)
	if err != nil {
		return fmt.Errorf("encrypt document: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := s.mutable(tx, id)
		if err != nil {
			return err
		}
		appt.Document = []byte(enc)
		appt.DocumentType = &contentType
		if err := tx.Save(appt).Error; err != nil {
			return fmt.Errorf("add document: %w", err)
		}
		return nil
	})
}

// mutable loads an appointment and rejects edits to cancelled or future
// visits, the shared precondition of the clinical updates.
func (s *appointmentService) mutable(tx *gorm.DB, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	if err := tx.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt.Status != nil && *appt.Status == model.StatusCancel {
		return nil, ErrAlreadyCancelled
	}
	day, err := time.Parse(dateLayout, appt.Date)
	if err == nil && day.After(startOfDay(s.now())) {
		return nil, ErrFutureDate
	}
	return &appt, nil
}

// ---------------------------------------------------------------------------
// Stale sweep
// ---------------------------------------------------------------------------

func (s *appointmentService) CancelStale(ctx context.Context, before string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("status IS NULL AND date < ?", before).
		Update("status", model.StatusCancel)
	if res.Error != nil {
		return 0, fmt.Errorf("cancel stale appointments: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *appointmentService) view(appt *model.Appointment) (*View, error) {
	v := &View{Appointment: *appt}

	reason, err := crypto.Decrypt(s.key, appt.Reason)
	if err != nil {
		return nil, fmt.Errorf("decrypt reason: %w", err)
	}
	v.Appointment.Reason = reason

	for _, f := range []**string{
		&v.Appointment.Parameters,
		&v.Appointment.Note,
		&v.Appointment.ChiefComplaints,
		&v.Appointment.Investigation,
		&v.Appointment.Diagnosis,
		&v.Appointment.Prescription,
		&v.Appointment.FollowUp,
	} {
		dec, err := s.decryptPtr(*f)
		if err != nil {
			return nil, err
		}
		*f = dec
	}

	if len(appt.Document) > 0 {
		doc, err := crypto.DecryptDocument(s.key, appt.Document)
		if err != nil {
			return nil, fmt.Errorf("decrypt document: %w", err)
		}
		v.Document = &doc
		v.Appointment.Document = nil
	}

	if appt.Patient != nil {
		name, err := crypto.Decrypt(s.key, appt.Patient.Name)
		if err != nil {
			return nil, fmt.Errorf("decrypt patient name: %w", err)
		}
		v.PatientName = name
		v.PatientCode = appt.Patient.PatientCode
	}
	return v, nil
}

func (s *appointmentService) encryptPtr(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	enc, err := crypto.Encrypt(s.key, *v)
	if err != nil {
		return nil, fmt.Errorf("encrypt field: %w", err)
	}
	return &enc, nil
}

func (s *appointmentService) decryptPtr(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	dec, err := crypto.Decrypt(s.key, *v)
	if err != nil {
		return nil, fmt.Errorf("decrypt field: %w", err)
	}
	return &dec, nil
}

func (s *appointmentService) tenantMapping(ctx context.Context, hospitalID uint) (searchindex.Mapping, error) {
	var doctor model.Doctor
	err := s.db.WithContext(ctx).Select("mapping").First(&doctor, hospitalID).Error
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	raw, err := crypto.Decrypt(s.key, doctor.Mapping)
	if err != nil {
		return nil, fmt.Errorf("decrypt mapping: %w", err)
	}
	return searchindex.Decode(raw)
}

func (s *appointmentService) publish(event string, appt *model.Appointment) {
	if s.nc == nil {
		return
	}
	subject := fmt.Sprintf("%s.%s.%s", constants.SubjectPrefix, event, practitionerKey(appt))
	if err := s.nc.Publish(subject, fmt.Appendf(nil, "%d", appt.ID)); err != nil {
		slog.Warn("publish appointment event failed", "subject", subject, "err", err)
	}
}

func practitionerKey(appt *model.Appointment) string {
	if appt.DoctorID != nil {
		return fmt.Sprintf("doctor-%d", *appt.DoctorID)
	}
	if appt.SubDoctorID != nil {
		return "subdoctor-" + *appt.SubDoctorID
	}
	return "unknown"
}

func ownerOf(appt *model.Appointment) slot.Owner {
	return slot.Owner{DoctorID: appt.DoctorID, SubDoctorID: appt.SubDoctorID}
}

// ownerScope is slot.Owner.Scope with an explicit table prefix for joined
// queries.
func ownerScope(o slot.Owner, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if o.DoctorID != nil {
			return db.Where(table+".doctor_id = ?", *o.DoctorID)
		}
		return db.Where(table+".sub_doctor_id = ?", *o.SubDoctorID)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
