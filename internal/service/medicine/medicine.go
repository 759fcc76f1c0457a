// Package medicine manages the tenant drug catalog consulted when writing
// prescriptions.
package medicine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
)

var (
	ErrNotFound      = errors.New("medicine not found")
	ErrDuplicateSpec = errors.New("medicine with same specifications already exists")
	ErrInvalidInput  = errors.New("name, strength, form, category and brand are required")
)

// Request carries the catalog fields. On Update, empty fields keep the
// stored value.
type Request struct {
	Name     string
	Strength string
	Form     string
	Category string
	Brand    string
}

func (r Request) trimmed() Request {
	return Request{
		Name:     strings.TrimSpace(r.Name),
		Strength: strings.TrimSpace(r.Strength),
		Form:     strings.TrimSpace(r.Form),
		Category: strings.TrimSpace(r.Category),
		Brand:    strings.TrimSpace(r.Brand),
	}
}

func (r Request) complete() bool {
	return r.Name != "" && r.Strength != "" && r.Form != "" && r.Category != "" && r.Brand != ""
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Add(ctx context.Context, hospitalID uint, req Request) (*model.Medicine, error)
	// List returns the catalog ordered by name. A non-empty term narrows it
	// to names containing the term.
	List(ctx context.Context, hospitalID uint, term string) ([]model.Medicine, error)
	Update(ctx context.Context, hospitalID, id uint, req Request) (*model.Medicine, error)
	Delete(ctx context.Context, hospitalID, id uint) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type medicineService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &medicineService{db: db}
}

func (s *medicineService) Add(ctx context.Context, hospitalID uint, req Request) (*model.Medicine, error) {
	req = req.trimmed()
	if !req.complete() {
		return nil, ErrInvalidInput
	}

	dup, err := s.specExists(ctx, hospitalID, req, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateSpec
	}

	row := &model.Medicine{
		DoctorID: hospitalID,
		Name:     req.Name,
		Strength: req.Strength,
		Form:     req.Form,
		Category: req.Category,
		Brand:    req.Brand,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	return row, nil
}

func (s *medicineService) List(ctx context.Context, hospitalID uint, term string) ([]model.Medicine, error) {
	q := s.db.WithContext(ctx).Where("doctor_id = ?", hospitalID)
	if term = strings.TrimSpace(term); term != "" {
		q = q.Where("medicine_name LIKE ?", "%"+term+"%")
	}

	var rows []model.Medicine
	if err := q.Order("medicine_name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return rows, nil
}

func (s *medicineService) Update(ctx context.Context, hospitalID, id uint, req Request) (*model.Medicine, error) {
	var row model.Medicine
	err := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, hospitalID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}

	req = req.trimmed()
	if req.Name != "" {
		row.Name = req.Name
	}
	if req.Strength != "" {
		row.Strength = req.Strength
	}
	if req.Form != "" {
		row.Form = req.Form
	}
	if req.Category != "" {
		row.Category = req.Category
	}
	if req.Brand != "" {
		row.Brand = req.Brand
	}

	merged := Request{Name: row.Name, Strength: row.Strength, Form: row.Form, Category: row.Category, Brand: row.Brand}
	dup, err := s.specExists(ctx, hospitalID, merged, row.ID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateSpec
	}

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return &row, nil
}

func (s *medicineService) Delete(ctx context.Context, hospitalID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("doctor_id = ?", hospitalID).
		Delete(&model.Medicine{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete medicine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// specExists reports whether another row carries the same product identity.
// Two entries are the same product when name, strength, form and brand all
// match; category is a display grouping, not part of the identity.
func (s *medicineService) specExists(ctx context.Context, hospitalID uint, req Request, excludeID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Medicine{}).
		Where("doctor_id = ?", hospitalID).
		Where("LOWER(medicine_name) = LOWER(?) AND LOWER(strength) = LOWER(?) AND LOWER(form) = LOWER(?) AND LOWER(brand) = LOWER(?)",
			req.Name, req.Strength, req.Form, req.Brand)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check medicine spec: %w", err)
	}
	return count > 0, nil
}
