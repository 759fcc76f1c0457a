package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/testutil"
)

func TestNotifyAndList(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db, nil)
	ctx := context.Background()

	if _, err := svc.Notify(ctx, doc.ID, "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank message error = %v, want ErrEmptyMessage", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Notify(ctx, doc.ID, "message"); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}

	res, err := svc.List(ctx, doc.ID, "", 1, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 3 || len(res.Data) != 2 || res.TotalPages != 2 {
		t.Errorf("List() = total %d, page of %d, pages %d", res.Total, len(res.Data), res.TotalPages)
	}

	res, err = svc.List(ctx, doc.ID, "", 2, 2)
	if err != nil {
		t.Fatalf("List() page 2 error = %v", err)
	}
	if len(res.Data) != 1 {
		t.Errorf("List() page 2 = %d rows, want 1", len(res.Data))
	}

	if _, err := svc.List(ctx, doc.ID, "07-09-2026", 1, 10); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad date error = %v, want ErrInvalidDate", err)
	}
}

func TestListDateFilter(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db, nil)
	ctx := context.Background()

	row, err := svc.Notify(ctx, doc.ID, "today")
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	old := &model.Notification{DoctorID: doc.ID, Message: "last week"}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("seed old: %v", err)
	}
	lastWeek := time.Now().AddDate(0, 0, -7)
	if err := db.Model(old).Update("created_at", lastWeek).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	res, err := svc.List(ctx, doc.ID, time.Now().Format("2006-01-02"), 1, 10)
	if err != nil {
		t.Fatalf("List(today) error = %v", err)
	}
	if res.Total != 1 || res.Data[0].ID != row.ID {
		t.Errorf("List(today) = %+v, want today's row only", res.Data)
	}

	res, err = svc.List(ctx, doc.ID, lastWeek.Format("2006-01-02"), 1, 10)
	if err != nil {
		t.Fatalf("List(last week) error = %v", err)
	}
	if res.Total != 1 || res.Data[0].ID != old.ID {
		t.Errorf("List(last week) = %+v, want backdated row only", res.Data)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db, nil)
	ctx := context.Background()

	a, _ := svc.Notify(ctx, doc.ID, "one")
	svc.Notify(ctx, doc.ID, "two")

	// Yesterday's unread does not count toward today's badge.
	old := &model.Notification{DoctorID: doc.ID, Message: "stale"}
	db.Create(old)
	db.Model(old).Update("created_at", time.Now().AddDate(0, 0, -1))

	count, err := svc.UnreadCount(ctx, doc.ID)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("UnreadCount() = %d, want 2", count)
	}

	if err := svc.MarkRead(ctx, doc.ID, a.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	count, _ = svc.UnreadCount(ctx, doc.ID)
	if count != 1 {
		t.Errorf("UnreadCount() after read = %d, want 1", count)
	}

	if err := svc.MarkRead(ctx, doc.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing row error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAndTenantIsolation(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	b := testutil.SeedDoctor(t, db, testutil.UniqueEmail(2))
	svc := New(db, nil)
	ctx := context.Background()

	row, err := svc.Notify(ctx, a.ID, "hello")
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if err := svc.MarkRead(ctx, b.ID, row.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant MarkRead error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, b.ID, row.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant Delete error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, a.ID, row.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if res, _ := svc.List(ctx, a.ID, "", 1, 10); res.Total != 0 {
		t.Errorf("List() after delete = %d rows", res.Total)
	}
}
