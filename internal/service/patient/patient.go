// Package patient manages patient records. PII columns are stored encrypted;
// the search columns carry the tenant's substitution transform of the
// plaintext so the front desk can find patients by partial name, mobile
// number or code without decrypting anything.
package patient

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
	"github.com/cliniva/cliniva_backend/pkg/searchindex"
)

const codeAttempts = 5

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type PaginatedResult[T any] struct {
	Data       []T
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

type RegisterRequest struct {
	Name         string
	MobileNumber string
	Address      string
	Email        *string
	Age          string
	DateOfBirth  string
	BloodGroup   string
	Gender       string
	Toxicity     bool
	ReferredBy   *string

	// Booking, when set, books the first visit in the same transaction as
	// the registration. Either both succeed or neither does.
	Booking *BookingRequest
}

type BookingRequest struct {
	Owner     slot.Owner
	Date      string
	Window    string
	Reason    string
	Process   string
	Fees      int
	ExtraFees int
}

type UpdateRequest struct {
	Name         string
	MobileNumber string
	Address      string
	Email        *string
	Age          string
	DateOfBirth  string
	BloodGroup   string
	Toxicity     bool
	ReferredBy   *string
}

// View is a patient with PII decrypted and the code back in plaintext.
type View struct {
	Patient model.Patient
	Code    string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, hospitalID uint, req RegisterRequest) (*View, *model.Appointment, error)
	Get(ctx context.Context, hospitalID, id uint) (*View, error)
	// Search matches the transformed term against name, mobile and code.
	Search(ctx context.Context, hospitalID uint, term string) ([]View, error)
	List(ctx context.Context, hospitalID uint, page, perPage int) (*PaginatedResult[View], error)
	Update(ctx context.Context, hospitalID, id uint, req UpdateRequest) (*View, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db    *gorm.DB
	appts appointment.Service
	key   []byte
	// region is the default phone number region for numbers entered without
	// a country prefix.
	region string
}

func New(db *gorm.DB, appts appointment.Service, key []byte, region string) Service {
	return &patientService{db: db, appts: appts, key: key, region: region}
}

func (s *patientService) Register(ctx context.Context, hospitalID uint, req RegisterRequest) (*View, *model.Appointment, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, ErrInvalidName
	}
	mobile, err := s.normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, nil, err
	}

	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, nil, err
	}
	nameSearch := mapping.Transform(name)
	mobileSearch := mapping.Transform(mobile)

	var dup int64
	err = s.db.WithContext(ctx).Model(&model.Patient{}).
		Where("doctor_id = ? AND name_search = ? AND mobile_search = ?", hospitalID, nameSearch, mobileSearch).
		Count(&dup).Error
	if err != nil {
		return nil, nil, fmt.Errorf("check duplicate patient: %w", err)
	}
	if dup > 0 {
		return nil, nil, ErrDuplicate
	}

	code, err := s.allocateCode(ctx, hospitalID, name, mapping)
	if err != nil {
		return nil, nil, err
	}

	p := &model.Patient{
		DoctorID:     hospitalID,
		NameSearch:   nameSearch,
		MobileSearch: mobileSearch,
		PatientCode:  mapping.Transform(code),
		Age:          req.Age,
		DateOfBirth:  req.DateOfBirth,
		BloodGroup:   req.BloodGroup,
		Gender:       req.Gender,
		Toxicity:     req.Toxicity,
		ReferredBy:   req.ReferredBy,
	}
	if p.Name, err = crypto.Encrypt(s.key, name); err != nil {
		return nil, nil, fmt.Errorf("encrypt name: %w", err)
	}
	if p.MobileNumber, err = crypto.Encrypt(s.key, mobile); err != nil {
		return nil, nil, fmt.Errorf("encrypt mobile: %w", err)
	}
	if p.Address, err = crypto.Encrypt(s.key, req.Address); err != nil {
		return nil, nil, fmt.Errorf("encrypt address: %w", err)
	}
	if req.Email != nil {
		enc, err := crypto.Encrypt(s.key, *req.Email)
		if err != nil {
			return nil, nil, fmt.Errorf("encrypt email: %w", err)
		}
		p.Email = &enc
	}

	var appt *model.Appointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		if req.Booking == nil {
			return nil
		}
		appt, err = s.appts.BookTx(tx, appointment.BookRequest{
			PatientID: p.ID,
			Owner:     req.Booking.Owner,
			Date:      req.Booking.Date,
			Window:    req.Booking.Window,
			Reason:    req.Booking.Reason,
			Process:   req.Booking.Process,
			Fees:      req.Booking.Fees,
			ExtraFees: req.Booking.ExtraFees,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	v, err := s.view(p, mapping)
	if err != nil {
		return nil, nil, err
	}
	return v, appt, nil
}

func (s *patientService) Get(ctx context.Context, hospitalID, id uint) (*View, error) {
	var p model.Patient
	err := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, hospitalID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	return s.view(&p, mapping)
}

func (s *patientService) Search(ctx context.Context, hospitalID uint, term string) ([]View, error) {
	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	like := "%" + mapping.Transform(term) + "%"
	var patients []model.Patient
	err = s.db.WithContext(ctx).
		Where("doctor_id = ?", hospitalID).
		Where("name_search LIKE ? OR mobile_search LIKE ? OR patient_code LIKE ?", like, like, like).
		Order("created_at DESC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}

	views := make([]View, 0, len(patients))
	for i := range patients {
		v, err := s.view(&patients[i], mapping)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *patientService) List(ctx context.Context, hospitalID uint, page, perPage int) (*PaginatedResult[View], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int64
	err := s.db.WithContext(ctx).Model(&model.Patient{}).
		Where("doctor_id = ?", hospitalID).
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}

	var patients []model.Patient
	err = s.db.WithContext(ctx).
		Where("doctor_id = ?", hospitalID).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(patients))
	for i := range patients {
		v, err := s.view(&patients[i], mapping)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &PaginatedResult[View]{Data: views, Total: total, Page: page, PerPage: perPage, TotalPages: totalPages}, nil
}

func (s *patientService) Update(ctx context.Context, hospitalID, id uint, req UpdateRequest) (*View, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	mobile, err := s.normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, err
	}

	var p model.Patient
	err = s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, hospitalID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	// Search columns are recomputed on every write so they never drift from
	// the encrypted values.
	p.NameSearch = mapping.Transform(name)
	p.MobileSearch = mapping.Transform(mobile)
	p.Age = req.Age
	p.DateOfBirth = req.DateOfBirth
	p.BloodGroup = req.BloodGroup
	p.Toxicity = req.Toxicity
	p.ReferredBy = req.ReferredBy

	if p.Name, err = crypto.Encrypt(s.key, name); err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	if p.MobileNumber, err = crypto.Encrypt(s.key, mobile); err != nil {
		return nil, fmt.Errorf("encrypt mobile: %w", err)
	}
	if p.Address, err = crypto.Encrypt(s.key, req.Address); err != nil {
		return nil, fmt.Errorf("encrypt address: %w", err)
	}
	p.Email = nil
	if req.Email != nil {
		enc, err := crypto.Encrypt(s.key, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("encrypt email: %w", err)
		}
		p.Email = &enc
	}

	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return s.view(&p, mapping)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *patientService) normalizeMobile(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidMobile
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// allocateCode builds a patient code from the name initials plus five random
// digits and retries on the rare collision within the tenant.
func (s *patientService) allocateCode(ctx context.Context, hospitalID uint, name string, mapping searchindex.Mapping) (string, error) {
	initials := codeInitials(name)

	for range codeAttempts {
		n, err := rand.Int(rand.Reader, big.NewInt(90000))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code := fmt.Sprintf("%s%d", initials, n.Int64()+10000)

		var count int64
		err = s.db.WithContext(ctx).Model(&model.Patient{}).
			Where("doctor_id = ? AND patient_code = ?", hospitalID, mapping.Transform(code)).
			Count(&count).Error
		if err != nil {
			return "", fmt.Errorf("check patient code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func codeInitials(name string) string {
	var sb strings.Builder
	for _, word := range strings.Fields(strings.ToLower(name)) {
		sb.WriteString(word[:1])
		if sb.Len() == 2 {
			break
		}
	}
	if sb.Len() == 0 {
		return "px"
	}
	return sb.String()
}

func (s *patientService) view(p *model.Patient, mapping searchindex.Mapping) (*View, error) {
	v := &View{Patient: *p}
	var err error

	if v.Patient.Name, err = crypto.Decrypt(s.key, p.Name); err != nil {
		return nil, fmt.Errorf("decrypt name: %w", err)
	}
	if v.Patient.MobileNumber, err = crypto.Decrypt(s.key, p.MobileNumber); err != nil {
		return nil, fmt.Errorf("decrypt mobile: %w", err)
	}
	if v.Patient.Address, err = crypto.Decrypt(s.key, p.Address); err != nil {
		return nil, fmt.Errorf("decrypt address: %w", err)
	}
	if p.Email != nil {
		dec, err := crypto.Decrypt(s.key, *p.Email)
		if err != nil {
			return nil, fmt.Errorf("decrypt email: %w", err)
		}
		v.Patient.Email = &dec
	}

	v.Code = strings.ToUpper(mapping.Inverse().Transform(p.PatientCode))
	return v, nil
}

func (s *patientService) tenantMapping(ctx context.Context, hospitalID uint) (searchindex.Mapping, error) {
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
