// Package practitioner manages the tenant (Doctor) account and the staff
// under it. Registration is where a tenant's search mapping is generated;
// it happens exactly once, because regenerating it would orphan every
// search column written under the old mapping.
package practitioner

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
	"github.com/cliniva/cliniva_backend/pkg/searchindex"
	"github.com/cliniva/cliniva_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterDoctorRequest struct {
	Name                 string
	ClinicName           string
	MobileNumber         string
	Address              string
	Email                string
	ClinicAddress        string
	Experience           string
	Gender               string
	Password             string
	MedicalLicenceNumber string
	MedicalDegree        string
	DateOfBirth          *string
}

type ClinicSettingsRequest struct {
	ClinicStartTime *string
	ClinicEndTime   *string
	OpenDays        []string
	ClosedDays      []string
}

type CreateSubDoctorRequest struct {
	Name                  string
	Email                 string
	MobileNumber          string
	AlternateMobileNumber *string
	Gender                string
	Specialization        string
	Qualification         *string
	Experience            *int
	DateOfBirth           *string
	Address               *string
	City                  *string
	State                 *string
	Country               *string
	PinCode               *string
}

type CreateReceptionistRequest struct {
	Name          string
	MobileNumber  string
	Address       string
	Email         string
	DateOfBirth   *string
	Age           *int
	DateOfJoining time.Time
	Gender        string
	Qualification string
	Password      string
}

// DoctorView is a doctor row with PII decrypted. The mapping is never
// exposed.
type DoctorView struct {
	Doctor model.Doctor
}

type SubDoctorView struct {
	SubDoctor model.SubDoctor
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*DoctorView, error)
	GetDoctor(ctx context.Context, id uint) (*DoctorView, error)
	UpdateClinicSettings(ctx context.Context, id uint, req ClinicSettingsRequest) (*DoctorView, error)

	CreateSubDoctor(ctx context.Context, hospitalID uint, req CreateSubDoctorRequest) (*SubDoctorView, error)
	GetSubDoctor(ctx context.Context, hospitalID uint, id string) (*SubDoctorView, error)
	ListSubDoctors(ctx context.Context, hospitalID uint) ([]SubDoctorView, error)
	// SearchSubDoctors matches the transformed term against name and mobile.
	SearchSubDoctors(ctx context.Context, hospitalID uint, term string) ([]SubDoctorView, error)
	UpdateSubDoctor(ctx context.Context, hospitalID uint, id string, req CreateSubDoctorRequest) (*SubDoctorView, error)
	DeleteSubDoctor(ctx context.Context, hospitalID uint, id string) error

	CreateReceptionist(ctx context.Context, hospitalID uint, req CreateReceptionistRequest) (*model.Receptionist, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type practitionerService struct {
	db     *gorm.DB
	key    []byte
	region string
}

func New(db *gorm.DB, key []byte, region string) Service {
	return &practitionerService{db: db, key: key, region: region}
}

func (s *practitionerService) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*DoctorView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	mobile, err := s.normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, err
	}

	var taken int64
	err = s.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("email = ?", req.Email).
		Count(&taken).Error
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	mapping, err := searchindex.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate search mapping: %w", err)
	}
	encoded, err := mapping.Encode()
	if err != nil {
		return nil, err
	}
	encMapping, err := crypto.Encrypt(s.key, encoded)
	if err != nil {
		return nil, fmt.Errorf("encrypt search mapping: %w", err)
	}

	code, err := generateCode("dr")
	if err != nil {
		return nil, err
	}

	doc := &model.Doctor{
		ClinicName:    req.ClinicName,
		DoctorCode:    strings.ToUpper(code),
		Email:         req.Email,
		ClinicAddress: req.ClinicAddress,
		Experience:    req.Experience,
		Gender:        req.Gender,
		Password:      hash,
		MedicalDegree: req.MedicalDegree,
		DateOfBirth:   req.DateOfBirth,
		Mapping:       encMapping,
	}
	if doc.Name, err = crypto.Encrypt(s.key, name); err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	if doc.MobileNumber, err = crypto.Encrypt(s.key, mobile); err != nil {
		return nil, fmt.Errorf("encrypt mobile: %w", err)
	}
	if doc.Address, err = crypto.Encrypt(s.key, req.Address); err != nil {
		return nil, fmt.Errorf("encrypt address: %w", err)
	}
	if doc.MedicalLicenceNumber, err = crypto.Encrypt(s.key, req.MedicalLicenceNumber); err != nil {
		return nil, fmt.Errorf("encrypt licence: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return s.doctorView(doc)
}

func (s *practitionerService) GetDoctor(ctx context.Context, id uint) (*DoctorView, error) {
	var doc model.Doctor
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return s.doctorView(&doc)
}

func (s *practitionerService) UpdateClinicSettings(ctx context.Context, id uint, req ClinicSettingsRequest) (*DoctorView, error) {
	var doc model.Doctor
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	doc.ClinicStartTime = req.ClinicStartTime
	doc.ClinicEndTime = req.ClinicEndTime
	doc.OpenDays = req.OpenDays
	doc.ClosedDays = req.ClosedDays

	if err := s.db.WithContext(ctx).Save(&doc).Error; err != nil {
		return nil, fmt.Errorf("update clinic settings: %w", err)
	}
	return s.doctorView(&doc)
}

// ---------------------------------------------------------------------------
// Sub doctors
// ---------------------------------------------------------------------------

func (s *practitionerService) CreateSubDoctor(ctx context.Context, hospitalID uint, req CreateSubDoctorRequest) (*SubDoctorView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	mobile, err := s.normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, err
	}

	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	var taken int64
	err = s.db.WithContext(ctx).Model(&model.SubDoctor{}).
		Where("email = ?", req.Email).
		Count(&taken).Error
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return nil, ErrEmailTaken
	}

	sd := &model.SubDoctor{
		ID:                    uuid.NewString(),
		AddedBy:               hospitalID,
		NameSearch:            mapping.Transform(name),
		Email:                 req.Email,
		MobileSearch:          mapping.Transform(mobile),
		AlternateMobileNumber: req.AlternateMobileNumber,
		Gender:                req.Gender,
		Specialization:        req.Specialization,
		Qualification:         req.Qualification,
		Experience:            req.Experience,
		DateOfBirth:           req.DateOfBirth,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		Country:               req.Country,
		PinCode:               req.PinCode,
	}
	if sd.Name, err = crypto.Encrypt(s.key, name); err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	if sd.MobileNumber, err = crypto.Encrypt(s.key, mobile); err != nil {
		return nil, fmt.Errorf("encrypt mobile: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(sd).Error; err != nil {
		return nil, fmt.Errorf("create sub doctor: %w", err)
	}
	return s.subDoctorView(sd)
}

func (s *practitionerService) GetSubDoctor(ctx context.Context, hospitalID uint, id string) (*SubDoctorView, error) {
	var sd model.SubDoctor
	err := s.db.WithContext(ctx).
		Where("id = ? AND added_by = ?", id, hospitalID).
		First(&sd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubDoctorNotFound
		}
		return nil, fmt.Errorf("get sub doctor: %w", err)
	}
	return s.subDoctorView(&sd)
}

func (s *practitionerService) ListSubDoctors(ctx context.Context, hospitalID uint) ([]SubDoctorView, error) {
	var subs []model.SubDoctor
	err := s.db.WithContext(ctx).
		Where("added_by = ?", hospitalID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list sub doctors: %w", err)
	}
	return s.subDoctorViews(subs)
}

func (s *practitionerService) SearchSubDoctors(ctx context.Context, hospitalID uint, term string) ([]SubDoctorView, error) {
	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	like := "%" + mapping.Transform(term) + "%"
	var subs []model.SubDoctor
	err = s.db.WithContext(ctx).
		Where("added_by = ?", hospitalID).
		Where("name_search LIKE ? OR mobile_search LIKE ?", like, like).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("search sub doctors: %w", err)
	}
	return s.subDoctorViews(subs)
}

func (s *practitionerService) UpdateSubDoctor(ctx context.Context, hospitalID uint, id string, req CreateSubDoctorRequest) (*SubDoctorView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	mobile, err := s.normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, err
	}

	var sd model.SubDoctor
	err = s.db.WithContext(ctx).
		Where("id = ? AND added_by = ?", id, hospitalID).
		First(&sd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubDoctorNotFound
		}
		return nil, fmt.Errorf("get sub doctor: %w", err)
	}

	mapping, err := s.tenantMapping(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	sd.NameSearch = mapping.Transform(name)
	sd.MobileSearch = mapping.Transform(mobile)
	sd.AlternateMobileNumber = req.AlternateMobileNumber
	sd.Gender = req.Gender
	sd.Specialization = req.Specialization
	sd.Qualification = req.Qualification
	sd.Experience = req.Experience
	sd.DateOfBirth = req.DateOfBirth
	sd.Address = req.Address
	sd.City = req.City
	sd.State = req.State
	sd.Country = req.Country
	sd.PinCode = req.PinCode

	if sd.Name, err = crypto.Encrypt(s.key, name); err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	if sd.MobileNumber, err = crypto.Encrypt(s.key, mobile); err != nil {
		return nil, fmt.Errorf("encrypt mobile: %w", err)
	}

	if err := s.db.WithContext(ctx).Save(&sd).Error; err != nil {
		return nil, fmt.Errorf("update sub doctor: %w", err)
	}
	return s.subDoctorView(&sd)
}

func (s *practitionerService) DeleteSubDoctor(ctx context.Context, hospitalID uint, id string) error {
	err := s.db.WithContext(ctx).
		Where("added_by = ?", hospitalID).
		Delete(&model.SubDoctor{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("delete sub doctor: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Receptionists
// ---------------------------------------------------------------------------

func (s *practitionerService) CreateReceptionist(ctx context.Context, hospitalID uint, req CreateReceptionistRequest) (*model.Receptionist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	mobile, err := s.normalizeMobile(req.MobileNumber)
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := generateCode("rc")
	if err != nil {
		return nil, err
	}

	rec := &model.Receptionist{
		DoctorID:         hospitalID,
		ReceptionistCode: strings.ToUpper(code),
		Email:            req.Email,
		DateOfBirth:      req.DateOfBirth,
		Age:              req.Age,
		DateOfJoining:    req.DateOfJoining,
		Gender:           req.Gender,
		Password:         hash,
	}
	if rec.Name, err = crypto.Encrypt(s.key, name); err != nil {
		return nil, fmt.Errorf("encrypt name: %w", err)
	}
	if rec.MobileNumber, err = crypto.Encrypt(s.key, mobile); err != nil {
		return nil, fmt.Errorf("encrypt mobile: %w", err)
	}
	if rec.Address, err = crypto.Encrypt(s.key, req.Address); err != nil {
		return nil, fmt.Errorf("encrypt address: %w", err)
	}
	if rec.Qualification, err = crypto.Encrypt(s.key, req.Qualification); err != nil {
		return nil, fmt.Errorf("encrypt qualification: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("create receptionist: %w", err)
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *practitionerService) normalizeMobile(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidMobile
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func generateCode(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%s%d", prefix, n.Int64()+10000), nil
}

func (s *practitionerService) doctorView(doc *model.Doctor) (*DoctorView, error) {
	v := &DoctorView{Doctor: *doc}
	v.Doctor.Password = ""
	v.Doctor.Mapping = ""

	var err error
	if v.Doctor.Name, err = crypto.Decrypt(s.key, doc.Name); err != nil {
		return nil, fmt.Errorf("decrypt name: %w", err)
	}
	if v.Doctor.MobileNumber, err = crypto.Decrypt(s.key, doc.MobileNumber); err != nil {
		return nil, fmt.Errorf("decrypt mobile: %w", err)
	}
	if v.Doctor.Address, err = crypto.Decrypt(s.key, doc.Address); err != nil {
		return nil, fmt.Errorf("decrypt address: %w", err)
	}
	if v.Doctor.MedicalLicenceNumber, err = crypto.Decrypt(s.key, doc.MedicalLicenceNumber); err != nil {
		return nil, fmt.Errorf("decrypt licence: %w", err)
	}
	return v, nil
}

func (s *practitionerService) subDoctorView(sd *model.SubDoctor) (*SubDoctorView, error) {
	v := &SubDoctorView{SubDoctor: *sd}
	v.SubDoctor.Password = nil

	var err error
	if v.SubDoctor.Name, err = crypto.Decrypt(s.key, sd.Name); err != nil {
		return nil, fmt.Errorf("decrypt name: %w", err)
	}
	if v.SubDoctor.MobileNumber, err = crypto.Decrypt(s.key, sd.MobileNumber); err != nil {
		return nil, fmt.Errorf("decrypt mobile: %w", err)
	}
	return v, nil
}

func (s *practitionerService) subDoctorViews(subs []model.SubDoctor) ([]SubDoctorView, error) {
	views := make([]SubDoctorView, 0, len(subs))
	for i := range subs {
		v, err := s.subDoctorView(&subs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *practitionerService) tenantMapping(ctx context.Context, hospitalID uint) (searchindex.Mapping, error) {
	var doctor model.Doctor
	err := s.db.WithContext(ctx).Select("mapping").First(&doctor, hospitalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	raw, err := crypto.Decrypt(s.key, doctor.Mapping)
	if err != nil {
		return nil, fmt.Errorf("decrypt mapping: %w", err)
	}
	return searchindex.Decode(raw)
}
