package patient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/internal/testutil"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
	"github.com/cliniva/cliniva_backend/pkg/searchindex"
)

const testKeyHex = "6368616e676520746869732070617373776f726420746f206120736563726574"

type fixture struct {
	db    *gorm.DB
	svc   Service
	key   []byte
	doc   *model.Doctor
	owner slot.Owner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	key, err := crypto.KeyFromHex(testKeyHex)
	if err != nil {
		t.Fatalf("key: %v", err)
	}

	mapping, err := searchindex.Generate()
	if err != nil {
		t.Fatalf("generate mapping: %v", err)
	}
	encoded, _ := mapping.Encode()
	encMapping, err := crypto.Encrypt(key, encoded)
	if err != nil {
		t.Fatalf("encrypt mapping: %v", err)
	}

	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	if err := db.Model(doc).Update("mapping", encMapping).Error; err != nil {
		t.Fatalf("store mapping: %v", err)
	}
	testutil.SeedSlot(t, db, doc.ID, "Morning", "09:00:00", "12:00:00", testutil.Ptr(10), []int{0, 1, 2, 3, 4, 5, 6})

	appts := appointment.New(db, availability.New(db, true), key, nil)
	svc := New(db, appts, key, "IR")

	return &fixture{db: db, svc: svc, key: key, doc: doc, owner: slot.Owner{DoctorID: &doc.ID}}
}

func registerReq(name, mobile string) RegisterRequest {
	return RegisterRequest{
		Name:         name,
		MobileNumber: mobile,
		Address:      "12 Azadi St",
		Age:          "30",
		DateOfBirth:  "1996-04-01",
		BloodGroup:   "O+",
		Gender:       model.GenderMale,
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, appt, err := f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "09121234567"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if appt != nil {
		t.Error("Register() without booking returned an appointment")
	}
	if v.Patient.Name != "John Doe" {
		t.Errorf("view name = %q, want John Doe", v.Patient.Name)
	}
	if v.Patient.MobileNumber != "+989121234567" {
		t.Errorf("view mobile = %q, want E164", v.Patient.MobileNumber)
	}
	if !strings.HasPrefix(v.Code, "JD") || len(v.Code) != 7 {
		t.Errorf("code = %q, want JD plus five digits", v.Code)
	}

	// Raw row holds ciphertext and transformed search columns.
	var raw model.Patient
	f.db.First(&raw, v.Patient.ID)
	if !strings.Contains(raw.Name, ":") {
		t.Errorf("name stored in plaintext: %q", raw.Name)
	}
	if raw.NameSearch == "john doe" || raw.NameSearch == "" {
		t.Errorf("name_search not transformed: %q", raw.NameSearch)
	}
	if raw.PatientCode == strings.ToLower(v.Code) {
		t.Errorf("patient_code stored untransformed: %q", raw.PatientCode)
	}

	// Same name and mobile again is a duplicate.
	if _, _, err := f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "09121234567")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate error = %v, want ErrDuplicate", err)
	}
	// Same name, different mobile is a different person.
	if _, _, err := f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "09121234568")); err != nil {
		t.Errorf("same name new mobile error = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, _, err := f.svc.Register(ctx, f.doc.ID, registerReq("  ", "09121234567")); !errors.Is(err, ErrInvalidName) {
		t.Errorf("blank name error = %v, want ErrInvalidName", err)
	}
	if _, _, err := f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "12345")); !errors.Is(err, ErrInvalidMobile) {
		t.Errorf("bad mobile error = %v, want ErrInvalidMobile", err)
	}
}

func TestRegisterWithBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := registerReq("John Doe", "09121234567")
	req.Booking = &BookingRequest{
		Owner:  f.owner,
		Date:   "2026-09-07",
		Window: "09:00 - 12:00",
		Reason: "first visit",
		Fees:   500,
	}
	v, appt, err := f.svc.Register(ctx, f.doc.ID, req)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if appt == nil || appt.PatientID != v.Patient.ID || appt.AppointmentNumber != 1 {
		t.Fatalf("booking not created with registration: %+v", appt)
	}

	// A denied booking rolls the registration back.
	req = registerReq("Jane Roe", "09121234568")
	req.Booking = &BookingRequest{
		Owner:  f.owner,
		Date:   "2026-09-07",
		Window: "14:00 - 16:00",
		Reason: "first visit",
		Fees:   500,
	}
	_, _, err = f.svc.Register(ctx, f.doc.ID, req)
	var na *appointment.NotAvailableError
	if !errors.As(err, &na) {
		t.Fatalf("denied booking error = %v, want NotAvailableError", err)
	}
	var count int64
	f.db.Model(&model.Patient{}).Count(&count)
	if count != 1 {
		t.Errorf("patients after rollback = %d, want 1", count)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "09121234567"))
	f.svc.Register(ctx, f.doc.ID, registerReq("Jane Roe", "09121234568"))

	views, err := f.svc.Search(ctx, f.doc.ID, "ohn")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(views) != 1 || views[0].Patient.Name != "John Doe" {
		t.Fatalf("Search(ohn) = %d results, want John Doe only", len(views))
	}

	// Partial mobile number in E164 form.
	views, err = f.svc.Search(ctx, f.doc.ID, "1234568")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(views) != 1 || views[0].Patient.Name != "Jane Roe" {
		t.Errorf("Search(1234568) = %d results, want Jane Roe only", len(views))
	}

	// Another tenant sees nothing.
	other := testutil.SeedDoctor(t, f.db, testutil.UniqueEmail(2))
	mapping, _ := searchindex.Generate()
	encoded, _ := mapping.Encode()
	enc, _ := crypto.Encrypt(f.key, encoded)
	f.db.Model(other).Update("mapping", enc)
	views, err = f.svc.Search(ctx, other.ID, "ohn")
	if err != nil {
		t.Fatalf("Search() other tenant error = %v", err)
	}
	if len(views) != 0 {
		t.Errorf("cross tenant search = %d results, want 0", len(views))
	}
}

func TestUpdateRecomputesSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, _, err := f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "09121234567"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := f.svc.Update(ctx, f.doc.ID, v.Patient.ID, UpdateRequest{
		Name:         "Jonathan Doe",
		MobileNumber: "09121234567",
		Address:      "14 Azadi St",
		Age:          "31",
		DateOfBirth:  "1996-04-01",
		BloodGroup:   "O+",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Patient.Name != "Jonathan Doe" {
		t.Errorf("updated name = %q", got.Patient.Name)
	}
	if got.Code != v.Code {
		t.Errorf("code changed on update: %q -> %q", v.Code, got.Code)
	}

	views, err := f.svc.Search(ctx, f.doc.ID, "jonathan")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(views) != 1 {
		t.Errorf("search after rename = %d results, want 1", len(views))
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Register(ctx, f.doc.ID, registerReq("John Doe", "09121234567"))
	f.svc.Register(ctx, f.doc.ID, registerReq("Jane Roe", "09121234568"))
	f.svc.Register(ctx, f.doc.ID, registerReq("Dan Drake", "09121234569"))

	res, err := f.svc.List(ctx, f.doc.ID, 1, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 3 || len(res.Data) != 2 || res.TotalPages != 2 {
		t.Errorf("List() total=%d page size=%d pages=%d, want 3/2/2", res.Total, len(res.Data), res.TotalPages)
	}

	res, err = f.svc.List(ctx, f.doc.ID, 2, 2)
	if err != nil {
		t.Fatalf("List() page 2 error = %v", err)
	}
	if len(res.Data) != 1 {
		t.Errorf("List() page 2 = %d rows, want 1", len(res.Data))
	}
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Get(context.Background(), f.doc.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
