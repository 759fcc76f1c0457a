package availability

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/internal/testutil"
)

// 2026-09-07 is a Monday, 2026-09-06 a Sunday.
const (
	openDate   = "2026-09-07"
	closedDate = "2026-09-06"
	window     = "09:00 - 12:00"
)

func seedTenant(t *testing.T, db *gorm.DB, capacity *int) slot.Owner {
	t.Helper()
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	testutil.SeedSlot(t, db, doc.ID, "Morning", "09:00:00", "12:00:00", capacity, []int{1, 2, 3, 4, 5})
	return slot.Owner{DoctorID: &doc.ID}
}

func seedBooking(t *testing.T, db *gorm.DB, owner slot.Owner, patientID uint, status *model.AppointmentStatus) {
	t.Helper()
	w := window
	appt := &model.Appointment{
		PatientID:         patientID,
		DoctorID:          owner.DoctorID,
		SubDoctorID:       owner.SubDoctorID,
		AppointmentNumber: 1,
		Reason:            "enc",
		Date:              openDate,
		Process:           "new",
		Fees:              500,
		Status:            status,
		AppointmentTime:   &w,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
		wantErr    bool
	}{
		{in: "09:00 - 12:00", start: "09:00", end: "12:00"},
		{in: "09:00:00 - 12:00:00", start: "09:00:00", end: "12:00:00"},
		{in: "09:00-12:00", wantErr: true},
		{in: "09:00 - ", wantErr: true},
		{in: " - 12:00", wantErr: true},
		{in: "09:00 - 12:00 - 13:00", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start, end, err := ParseWindow(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWindow) {
					t.Errorf("ParseWindow(%q) error = %v, want ErrInvalidWindow", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWindow(%q) error = %v", tt.in, err)
			}
			if start != tt.start || end != tt.end {
				t.Errorf("ParseWindow(%q) = %q, %q", tt.in, start, end)
			}
		})
	}
}

func TestCheckNoMatchingSlot(t *testing.T) {
	db := testutil.NewDB(t)
	owner := seedTenant(t, db, testutil.Ptr(5))
	svc := New(db, true)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CheckRequest
	}{
		{name: "no slot with that window", req: CheckRequest{Owner: owner, Date: openDate, Window: "14:00 - 16:00"}},
		{name: "overlapping but not equal", req: CheckRequest{Owner: owner, Date: openDate, Window: "09:00 - 11:00"}},
		{name: "closed weekday", req: CheckRequest{Owner: owner, Date: closedDate, Window: window}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Check(ctx, tt.req)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if res.Available {
				t.Fatal("Check() available = true, want false")
			}
			if res.Reason != ReasonNoMatchingSlot {
				t.Errorf("Check() reason = %q, want %q", res.Reason, ReasonNoMatchingSlot)
			}
		})
	}
}

func TestCheckCapacity(t *testing.T) {
	db := testutil.NewDB(t)
	owner := seedTenant(t, db, testutil.Ptr(2))
	svc := New(db, true)
	ctx := context.Background()
	req := CheckRequest{Owner: owner, Date: openDate, Window: window}

	res, err := svc.Check(ctx, req)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !res.Available || res.SequenceNumber() != 1 {
		t.Fatalf("empty slot: available=%v seq=%d, want true/1", res.Available, res.SequenceNumber())
	}

	seedBooking(t, db, owner, 1, nil)
	res, _ = svc.Check(ctx, req)
	if !res.Available || res.SequenceNumber() != 2 {
		t.Fatalf("one booked: available=%v seq=%d, want true/2", res.Available, res.SequenceNumber())
	}

	seedBooking(t, db, owner, 2, nil)
	res, _ = svc.Check(ctx, req)
	if res.Available {
		t.Fatal("full slot: available = true, want false")
	}
	if res.Reason != ReasonSlotCapacityFull {
		t.Errorf("full slot: reason = %q, want %q", res.Reason, ReasonSlotCapacityFull)
	}
	if res.AppointmentCount != 2 {
		t.Errorf("full slot: count = %d, want 2", res.AppointmentCount)
	}
}

func TestCheckUnlimitedCapacity(t *testing.T) {
	db := testutil.NewDB(t)
	owner := seedTenant(t, db, nil)
	svc := New(db, true)

	for i := 1; i <= 5; i++ {
		seedBooking(t, db, owner, uint(i), nil)
	}

	res, err := svc.Check(context.Background(), CheckRequest{Owner: owner, Date: openDate, Window: window})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !res.Available || res.SequenceNumber() != 6 {
		t.Errorf("unlimited slot: available=%v seq=%d, want true/6", res.Available, res.SequenceNumber())
	}
}

func TestCheckCancelledCounting(t *testing.T) {
	db := testutil.NewDB(t)
	owner := seedTenant(t, db, testutil.Ptr(1))
	cancel := model.StatusCancel
	seedBooking(t, db, owner, 1, &cancel)
	req := CheckRequest{Owner: owner, Date: openDate, Window: window}
	ctx := context.Background()

	// Historical behavior: a cancelled seat stays occupied.
	res, err := New(db, true).Check(ctx, req)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if res.Available {
		t.Error("countCancelled=true: available = true, want false")
	}

	// With the toggle off the seat reopens.
	res, err = New(db, false).Check(ctx, req)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !res.Available || res.SequenceNumber() != 1 {
		t.Errorf("countCancelled=false: available=%v seq=%d, want true/1", res.Available, res.SequenceNumber())
	}
}

func TestCheckInvalidInput(t *testing.T) {
	db := testutil.NewDB(t)
	owner := seedTenant(t, db, testutil.Ptr(5))
	svc := New(db, true)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CheckRequest
		wantErr error
	}{
		{name: "bad date", req: CheckRequest{Owner: owner, Date: "07-09-2026", Window: window}, wantErr: ErrInvalidDate},
		{name: "bad window separator", req: CheckRequest{Owner: owner, Date: openDate, Window: "09:00-12:00"}, wantErr: ErrInvalidWindow},
		{name: "bad window time", req: CheckRequest{Owner: owner, Date: openDate, Window: "9am - 12pm"}, wantErr: ErrInvalidWindow},
		{name: "no owner", req: CheckRequest{Date: openDate, Window: window}, wantErr: slot.ErrInvalidOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Check(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Check() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckForUpdateInsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	owner := seedTenant(t, db, testutil.Ptr(1))
	svc := New(db, true)

	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := svc.CheckForUpdate(tx, CheckRequest{Owner: owner, Date: openDate, Window: window})
		if err != nil {
			return err
		}
		if !res.Available {
			t.Error("CheckForUpdate() available = false, want true")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction error = %v", err)
	}
}
