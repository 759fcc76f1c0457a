package slot

import (
	"context"
	"errors"
	"testing"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/testutil"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00:00"},
		{in: "09:00:30", want: "09:00:30"},
		{in: "00:00", want: "00:00:00"},
		{in: "23:59:59", want: "23:59:59"},
		{in: "9:00", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "09:00:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "09", wantErr: true},
		{in: "", wantErr: true},
		{in: "09:00:00:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Errorf("NormalizeTime(%q) error = %v, want ErrInvalidTime", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTime(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTime(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOwnerValidate(t *testing.T) {
	docID := uint(1)
	subID := "6b9f6c2e-0000-0000-0000-000000000001"

	tests := []struct {
		name    string
		owner   Owner
		wantErr error
	}{
		{name: "doctor only", owner: Owner{DoctorID: &docID}},
		{name: "sub doctor only", owner: Owner{SubDoctorID: &subID}},
		{name: "neither", owner: Owner{}, wantErr: ErrInvalidOwner},
		{name: "both", owner: Owner{DoctorID: &docID, SubDoctorID: &subID}, wantErr: ErrInvalidOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.owner.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db)
	ctx := context.Background()
	owner := Owner{DoctorID: &doc.ID}

	ts, err := svc.Create(ctx, CreateRequest{
		Owner:            owner,
		SlotName:         "Morning",
		StartTime:        "09:00",
		EndTime:          "12:00",
		MaxCapacity:      testutil.Ptr(10),
		AvailabilityDays: []int{1, 2, 3, 4, 5},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ts.StartTime != "09:00:00" || ts.EndTime != "12:00:00" {
		t.Errorf("Create() stored times %q-%q, want normalized", ts.StartTime, ts.EndTime)
	}

	_, err = svc.Create(ctx, CreateRequest{
		Owner: owner, SlotName: "Morning", StartTime: "13:00", EndTime: "15:00",
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate name error = %v, want ErrDuplicateName", err)
	}

	// Same name under a different tenant is fine.
	doc2 := testutil.SeedDoctor(t, db, testutil.UniqueEmail(2))
	if _, err := svc.Create(ctx, CreateRequest{
		Owner: Owner{DoctorID: &doc2.ID}, SlotName: "Morning", StartTime: "09:00", EndTime: "12:00",
	}); err != nil {
		t.Errorf("same name other tenant error = %v", err)
	}

	_, err = svc.Create(ctx, CreateRequest{
		Owner: owner, SlotName: "Backwards", StartTime: "12:00", EndTime: "09:00",
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("inverted range error = %v, want ErrInvalidTimeRange", err)
	}

	_, err = svc.Create(ctx, CreateRequest{
		Owner: owner, SlotName: "BadDay", StartTime: "09:00", EndTime: "10:00",
		AvailabilityDays: []int{7},
	})
	if !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("weekday 7 error = %v, want ErrInvalidWeekday", err)
	}
}

// The name-per-owner invariant holds at the storage level too: a write that
// slips past the service's existence check is rejected by the unique index.
func TestDuplicateNameUniqueIndex(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{
		Owner: Owner{DoctorID: &doc.ID}, SlotName: "Morning", StartTime: "09:00", EndTime: "12:00",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &model.TimeSlot{
		DoctorID:         &doc.ID,
		SlotName:         "Morning",
		StartTime:        "13:00:00",
		EndTime:          "15:00:00",
		AvailabilityDays: []int{1},
	}
	if err := db.Create(dup).Error; err == nil {
		t.Error("direct duplicate insert succeeded, want unique index violation")
	}

	// Sub-doctor slots live on their own index; a NULL doctor does not
	// collide with doctor-owned rows of the same name.
	subID := "0b6e2c1a-8c1f-4c40-9d9a-2f24a51a2f6b"
	other := &model.TimeSlot{
		SubDoctorID:      &subID,
		SlotName:         "Morning",
		StartTime:        "09:00:00",
		EndTime:          "12:00:00",
		AvailabilityDays: []int{1},
	}
	if err := db.Create(other).Error; err != nil {
		t.Errorf("sub-doctor slot insert error = %v", err)
	}
}

func TestUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db)
	ctx := context.Background()
	owner := Owner{DoctorID: &doc.ID}

	a, _ := svc.Create(ctx, CreateRequest{Owner: owner, SlotName: "A", StartTime: "09:00", EndTime: "10:00"})
	b, _ := svc.Create(ctx, CreateRequest{Owner: owner, SlotName: "B", StartTime: "10:00", EndTime: "11:00"})

	// Keeping its own name is not a duplicate.
	got, err := svc.Update(ctx, owner, a.ID, UpdateRequest{
		SlotName: "A", StartTime: "09:30", EndTime: "10:30", AvailabilityDays: []int{0, 6},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.StartTime != "09:30:00" {
		t.Errorf("Update() start = %q, want 09:30:00", got.StartTime)
	}

	_, err = svc.Update(ctx, owner, b.ID, UpdateRequest{SlotName: "A", StartTime: "10:00", EndTime: "11:00"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("rename onto existing error = %v, want ErrDuplicateName", err)
	}

	_, err = svc.Update(ctx, owner, 9999, UpdateRequest{SlotName: "X", StartTime: "10:00", EndTime: "11:00"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing slot error = %v, want ErrNotFound", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db)
	ctx := context.Background()
	owner := Owner{DoctorID: &doc.ID}

	ts, _ := svc.Create(ctx, CreateRequest{Owner: owner, SlotName: "A", StartTime: "09:00", EndTime: "10:00"})

	if err := svc.Delete(ctx, owner, ts.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, owner, ts.ID); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}

	slots, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("List() after delete = %d slots, want 0", len(slots))
	}
}

func TestListOrdered(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	svc := New(db)
	ctx := context.Background()
	owner := Owner{DoctorID: &doc.ID}

	svc.Create(ctx, CreateRequest{Owner: owner, SlotName: "Evening", StartTime: "17:00", EndTime: "20:00"})
	svc.Create(ctx, CreateRequest{Owner: owner, SlotName: "Morning", StartTime: "09:00", EndTime: "12:00"})

	slots, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(slots) != 2 || slots[0].SlotName != "Morning" {
		t.Errorf("List() not ordered by start time: %+v", slots)
	}
}

func TestFindMatching(t *testing.T) {
	db := testutil.NewDB(t)
	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	other := testutil.SeedDoctor(t, db, testutil.UniqueEmail(2))
	svc := New(db)
	ctx := context.Background()
	owner := Owner{DoctorID: &doc.ID}

	created, _ := svc.Create(ctx, CreateRequest{Owner: owner, SlotName: "Morning", StartTime: "10:00", EndTime: "12:30"})

	// HH:mm and HH:mm:ss both resolve to the stored window.
	got, err := svc.FindMatching(ctx, owner, "10:00:00", "12:30")
	if err != nil {
		t.Fatalf("FindMatching() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("FindMatching() id = %d, want %d", got.ID, created.ID)
	}

	// A window that only overlaps is not a match.
	if _, err := svc.FindMatching(ctx, owner, "10:00", "12:00"); !errors.Is(err, ErrNotFound) {
		t.Errorf("partial window error = %v, want ErrNotFound", err)
	}

	// Another tenant cannot see the slot.
	if _, err := svc.FindMatching(ctx, Owner{DoctorID: &other.ID}, "10:00", "12:30"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross tenant error = %v, want ErrNotFound", err)
	}
}
