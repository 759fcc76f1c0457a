// Package notification stores the dashboard messages other services raise
// for a tenant and pushes them to connected clients through NATS.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/pkg/constants"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound     = errors.New("notification not found")
	ErrInvalidDate  = errors.New("date must be formatted YYYY-MM-DD")
	ErrEmptyMessage = errors.New("message is required")
)

type PaginatedResult struct {
	Data       []model.Notification
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Notify stores the message and publishes it for realtime fan-out.
	Notify(ctx context.Context, doctorID uint, message string) (*model.Notification, error)
	// List returns the tenant's notifications, newest first. A non-empty
	// date narrows the list to that calendar day.
	List(ctx context.Context, doctorID uint, date string, page, perPage int) (*PaginatedResult, error)
	// UnreadCount counts today's unread notifications.
	UnreadCount(ctx context.Context, doctorID uint) (int64, error)
	MarkRead(ctx context.Context, doctorID, id uint) error
	Delete(ctx context.Context, doctorID, id uint) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	db  *gorm.DB
	nc  *nats.Conn
	now func() time.Time
}

func New(db *gorm.DB, nc *nats.Conn) Service {
	return &notificationService{db: db, nc: nc, now: time.Now}
}

func (s *notificationService) Notify(ctx context.Context, doctorID uint, message string) (*model.Notification, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	row := &model.Notification{DoctorID: doctorID, Message: message}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if s.nc != nil {
		subject := fmt.Sprintf("%s.notification.created.doctor-%d", constants.SubjectPrefix, doctorID)
		if err := s.nc.Publish(subject, fmt.Appendf(nil, "%d", row.ID)); err != nil {
			slog.Warn("publish notification event failed", "subject", subject, "err", err)
		}
	}
	return row, nil
}

func (s *notificationService) List(ctx context.Context, doctorID uint, date string, page, perPage int) (*PaginatedResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	q := s.db.WithContext(ctx).Model(&model.Notification{}).Where("doctor_id = ?", doctorID)
	if date != "" {
		day, err := time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			return nil, ErrInvalidDate
		}
		q = q.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	var rows []model.Notification
	err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return &PaginatedResult{
		Data:       rows,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, doctorID uint) (int64, error) {
	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("doctor_id = ? AND is_read = ?", doctorID, false).
		Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, doctorID, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, doctorID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Delete(&model.Notification{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
