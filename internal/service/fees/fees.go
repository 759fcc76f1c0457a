// Package fees manages the per-visit-reason price table consulted at
// booking time.
package fees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
)

var (
	ErrNotFound   = errors.New("fee not found")
	ErrInvalidFee = errors.New("fee must be greater than zero")
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Set creates the fee for a visit reason, or replaces it when one
	// already exists for the same reason.
	Set(ctx context.Context, hospitalID uint, feesFor string, fee float64) (*model.SetFee, error)
	List(ctx context.Context, hospitalID uint) ([]model.SetFee, error)
	// Lookup returns the fee for a visit reason, matched case-insensitively.
	Lookup(ctx context.Context, hospitalID uint, feesFor string) (float64, error)
	Delete(ctx context.Context, hospitalID, id uint) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type feesService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &feesService{db: db}
}

func (s *feesService) Set(ctx context.Context, hospitalID uint, feesFor string, fee float64) (*model.SetFee, error) {
	feesFor = strings.TrimSpace(feesFor)
	if fee <= 0 || feesFor == "" {
		return nil, ErrInvalidFee
	}

	var row model.SetFee
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND LOWER(fees_for) = LOWER(?)", hospitalID, feesFor).
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = model.SetFee{DoctorID: hospitalID, FeesFor: feesFor, Fees: fee}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("create fee: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("get fee: %w", err)
	default:
		row.FeesFor = feesFor
		row.Fees = fee
		if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
			return nil, fmt.Errorf("update fee: %w", err)
		}
	}
	return &row, nil
}

func (s *feesService) List(ctx context.Context, hospitalID uint) ([]model.SetFee, error) {
	var rows []model.SetFee
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", hospitalID).
		Order("fees_for ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return rows, nil
}

func (s *feesService) Lookup(ctx context.Context, hospitalID uint, feesFor string) (float64, error) {
	var row model.SetFee
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND LOWER(fees_for) = LOWER(?)", hospitalID, strings.TrimSpace(feesFor)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("lookup fee: %w", err)
	}
	return row.Fees, nil
}

func (s *feesService) Delete(ctx context.Context, hospitalID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("doctor_id = ?", hospitalID).
		Delete(&model.SetFee{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete fee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
