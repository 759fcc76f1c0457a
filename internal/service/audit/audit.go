// Package audit records who did what. Entries are written asynchronously
// with masked value snapshots; a failed write is logged and dropped, never
// surfaced to the operation that produced it.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/pkg/maskdata"
)

const writeTimeout = 5 * time.Second

// Actor identifies who performed the action.
type Actor struct {
	Role           string
	DoctorID       *uint
	ReceptionistID *uint
	SubDoctorID    *string
}

type Entry struct {
	HospitalID uint
	Actor      Actor
	Entity     *string
	EntityID   *string
	Status     string // model.AuditSuccess / AuditFailure / AuditDenied
	Module     *string
	Endpoint   string
	Action     string
	Details    *string
	OldValue   map[string]any
	NewValue   map[string]any
	IPAddress  string
	UserAgent  string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Log writes the entry in the background and returns immediately.
	Log(entry Entry)
	// Write is the synchronous form Log runs underneath.
	Write(ctx context.Context, entry Entry) error

	List(ctx context.Context, hospitalID uint, limit int) ([]model.AuditLog, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type auditService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &auditService{db: db}
}

func (s *auditService) Log(entry Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.Write(ctx, entry); err != nil {
			slog.Warn("audit write failed", "action", entry.Action, "err", err)
		}
	}()
}

func (s *auditService) Write(ctx context.Context, entry Entry) error {
	row := model.AuditLog{
		HospitalID:     entry.HospitalID,
		DoctorID:       entry.Actor.DoctorID,
		ReceptionistID: entry.Actor.ReceptionistID,
		SubDoctorID:    entry.Actor.SubDoctorID,
		Role:           entry.Actor.Role,
		Entity:         entry.Entity,
		EntityID:       entry.EntityID,
		Status:         entry.Status,
		Module:         entry.Module,
		Endpoint:       entry.Endpoint,
		Action:         entry.Action,
		Details:        entry.Details,
		OldValue:       maskMap(entry.OldValue),
		NewValue:       maskMap(entry.NewValue),
		IPAddress:      entry.IPAddress,
		UserAgent:      entry.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, hospitalID uint, limit int) ([]model.AuditLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var rows []model.AuditLog
	err := s.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return rows, nil
}

func maskMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maskdata.Value(m).(map[string]any)
}
