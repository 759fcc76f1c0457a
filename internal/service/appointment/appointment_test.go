package appointment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/internal/testutil"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
	"github.com/cliniva/cliniva_backend/pkg/searchindex"
)

const testKeyHex = "6368616e676520746869732070617373776f726420746f206120736563726574"

// Fixture dates pivot on a fixed clock of 2026-09-07 (a Monday) 10:00.
const (
	today     = "2026-09-07"
	tomorrow  = "2026-09-08"
	yesterday = "2026-09-04"
	window    = "09:00 - 12:00"
)

type fixture struct {
	db      *gorm.DB
	key     []byte
	svc     Service
	owner   slot.Owner
	doc     *model.Doctor
	mapping searchindex.Mapping
}

func newFixture(t *testing.T, capacity int) *fixture {
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
	encoded, err := mapping.Encode()
	if err != nil {
		t.Fatalf("encode mapping: %v", err)
	}
	encMapping, err := crypto.Encrypt(key, encoded)
	if err != nil {
		t.Fatalf("encrypt mapping: %v", err)
	}

	doc := testutil.SeedDoctor(t, db, testutil.UniqueEmail(1))
	if err := db.Model(doc).Update("mapping", encMapping).Error; err != nil {
		t.Fatalf("store mapping: %v", err)
	}

	var maxCap *int
	if capacity > 0 {
		maxCap = &capacity
	}
	testutil.SeedSlot(t, db, doc.ID, "Morning", "09:00:00", "12:00:00", maxCap, []int{1, 2, 3, 4, 5})

	avail := availability.New(db, true)
	svc := New(db, avail, key, nil)
	svc.(*appointmentService).now = func() time.Time {
		return time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)
	}

	return &fixture{db: db, key: key, svc: svc, owner: slot.Owner{DoctorID: &doc.ID}, doc: doc, mapping: mapping}
}

func (f *fixture) addPatient(t *testing.T, name, code string) *model.Patient {
	t.Helper()
	encName, err := crypto.Encrypt(f.key, name)
	if err != nil {
		t.Fatalf("encrypt name: %v", err)
	}
	p := testutil.SeedPatient(t, f.db, f.doc.ID, encName, f.mapping.Transform(code))
	p.NameSearch = f.mapping.Transform(name)
	if err := f.db.Model(p).Update("name_search", p.NameSearch).Error; err != nil {
		t.Fatalf("store name search: %v", err)
	}
	return p
}

func (f *fixture) book(t *testing.T, patientID uint, date string) *model.Appointment {
	t.Helper()
	appt, err := f.svc.Book(context.Background(), BookRequest{
		PatientID: patientID,
		Owner:     f.owner,
		Date:      date,
		Window:    window,
		Reason:    "checkup",
		Process:   "new",
		Fees:      500,
	})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	return appt
}

func TestBookAssignsSequence(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	p2 := f.addPatient(t, "Jane Roe", "jr10002")

	a1 := f.book(t, p1.ID, today)
	if a1.AppointmentNumber != 1 {
		t.Errorf("first booking number = %d, want 1", a1.AppointmentNumber)
	}
	if a1.Status != nil {
		t.Errorf("fresh booking status = %v, want nil", *a1.Status)
	}
	if a1.PaymentStatus != model.PaymentPending {
		t.Errorf("payment status = %q, want pending", a1.PaymentStatus)
	}
	if !strings.Contains(a1.Reason, ":") {
		t.Errorf("reason stored in plaintext: %q", a1.Reason)
	}

	a2 := f.book(t, p2.ID, today)
	if a2.AppointmentNumber != 2 {
		t.Errorf("second booking number = %d, want 2", a2.AppointmentNumber)
	}

	v, err := f.svc.Get(ctx, f.doc.ID, a1.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.Appointment.Reason != "checkup" {
		t.Errorf("Get() reason = %q, want decrypted", v.Appointment.Reason)
	}
	if v.PatientName != "John Doe" {
		t.Errorf("Get() patient name = %q, want John Doe", v.PatientName)
	}
}

func TestBookDenials(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	p2 := f.addPatient(t, "Jane Roe", "jr10002")

	if _, err := f.svc.Book(ctx, BookRequest{
		PatientID: p1.ID, Owner: f.owner, Date: today, Window: window, Reason: "x", Fees: 0,
	}); !errors.Is(err, ErrInvalidFees) {
		t.Errorf("zero fees error = %v, want ErrInvalidFees", err)
	}

	f.book(t, p1.ID, today)

	// Same patient, same day.
	_, err := f.svc.Book(ctx, BookRequest{
		PatientID: p1.ID, Owner: f.owner, Date: today, Window: window, Reason: "x", Fees: 500,
	})
	if !errors.Is(err, ErrDuplicateForDay) {
		t.Errorf("duplicate day error = %v, want ErrDuplicateForDay", err)
	}

	// Capacity 1 is used up.
	_, err = f.svc.Book(ctx, BookRequest{
		PatientID: p2.ID, Owner: f.owner, Date: today, Window: window, Reason: "x", Fees: 500,
	})
	var na *NotAvailableError
	if !errors.As(err, &na) {
		t.Fatalf("full slot error = %v, want NotAvailableError", err)
	}
	if na.Result.Reason != availability.ReasonSlotCapacityFull {
		t.Errorf("full slot reason = %q, want SlotCapacityFull", na.Result.Reason)
	}

	// No slot matches the window.
	_, err = f.svc.Book(ctx, BookRequest{
		PatientID: p2.ID, Owner: f.owner, Date: tomorrow, Window: "14:00 - 16:00", Reason: "x", Fees: 500,
	})
	if !errors.As(err, &na) || na.Result.Reason != availability.ReasonNoMatchingSlot {
		t.Errorf("wrong window error = %v, want NoMatchingSlot", err)
	}
}

func TestSetStatusLifecycle(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	p2 := f.addPatient(t, "Jane Roe", "jr10002")
	a1 := f.book(t, p1.ID, today)
	a2 := f.book(t, p2.ID, today)

	if _, err := f.svc.SetStatus(ctx, a1.ID, model.StatusCancel); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("cancel via SetStatus error = %v, want ErrInvalidStatus", err)
	}
	if _, err := f.svc.SetStatus(ctx, a1.ID, model.StatusOut); !errors.Is(err, ErrNotCheckedIn) {
		t.Errorf("out before in error = %v, want ErrNotCheckedIn", err)
	}

	if _, err := f.svc.SetStatus(ctx, a1.ID, model.StatusIn); err != nil {
		t.Fatalf("check in error = %v", err)
	}

	// Checking the next patient in moves the previous one out.
	if _, err := f.svc.SetStatus(ctx, a2.ID, model.StatusIn); err != nil {
		t.Fatalf("second check in error = %v", err)
	}
	var got model.Appointment
	f.db.First(&got, a1.ID)
	if got.Status == nil || *got.Status != model.StatusOut {
		t.Errorf("previous appointment status = %v, want out", got.Status)
	}

	if _, err := f.svc.SetStatus(ctx, a1.ID, model.StatusIn); !errors.Is(err, ErrAlreadyOut) {
		t.Errorf("re-admit checked-out error = %v, want ErrAlreadyOut", err)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	a1 := f.book(t, p1.ID, today)

	appt, err := f.svc.Cancel(ctx, a1.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if appt.Status == nil || *appt.Status != model.StatusCancel {
		t.Errorf("status = %v, want cancel", appt.Status)
	}

	if _, err := f.svc.Cancel(ctx, a1.ID); !errors.Is(err, ErrAlreadyProceeded) {
		t.Errorf("double cancel error = %v, want ErrAlreadyProceeded", err)
	}

	p2 := f.addPatient(t, "Jane Roe", "jr10002")
	a2 := f.book(t, p2.ID, today)
	f.svc.SetStatus(ctx, a2.ID, model.StatusIn)
	if _, err := f.svc.Cancel(ctx, a2.ID); !errors.Is(err, ErrAlreadyProceeded) {
		t.Errorf("cancel checked-in error = %v, want ErrAlreadyProceeded", err)
	}

	if _, err := f.svc.Cancel(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id error = %v, want ErrNotFound", err)
	}
}

func TestReschedule(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	a1 := f.book(t, p1.ID, today)

	if _, err := f.svc.Reschedule(ctx, a1.ID, RescheduleRequest{Date: today, Window: window}); !errors.Is(err, ErrSameDay) {
		t.Errorf("same day error = %v, want ErrSameDay", err)
	}
	if _, err := f.svc.Reschedule(ctx, a1.ID, RescheduleRequest{Date: yesterday, Window: window}); !errors.Is(err, ErrPastDate) {
		t.Errorf("past date error = %v, want ErrPastDate", err)
	}

	// A cancelled booking on the target date still blocks the move.
	a2 := f.book(t, p1.ID, tomorrow)
	f.svc.Cancel(ctx, a2.ID)
	if _, err := f.svc.Reschedule(ctx, a1.ID, RescheduleRequest{Date: tomorrow, Window: window}); !errors.Is(err, ErrDuplicateForDay) {
		t.Errorf("occupied target error = %v, want ErrDuplicateForDay", err)
	}

	// 2026-09-09 is a Wednesday, open and free.
	got, err := f.svc.Reschedule(ctx, a1.ID, RescheduleRequest{Date: "2026-09-09", Window: window, Process: "follow-up"})
	if err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}
	if got.Date != "2026-09-09" || got.AppointmentNumber != 1 || got.Process != "follow-up" {
		t.Errorf("Reschedule() = date %q number %d process %q", got.Date, got.AppointmentNumber, got.Process)
	}

	f.svc.SetStatus(ctx, got.ID, model.StatusIn)
	if _, err := f.svc.Reschedule(ctx, got.ID, RescheduleRequest{Date: tomorrow, Window: window}); !errors.Is(err, ErrAlreadyProceeded) {
		t.Errorf("reschedule checked-in error = %v, want ErrAlreadyProceeded", err)
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	a1 := f.book(t, p1.ID, today)

	if _, err := f.svc.Submit(ctx, a1.ID, SubmitRequest{FollowUp: testutil.Ptr(yesterday)}); !errors.Is(err, ErrPastFollowUp) {
		t.Errorf("past follow-up error = %v, want ErrPastFollowUp", err)
	}
	if _, err := f.svc.Submit(ctx, a1.ID, SubmitRequest{FollowUp: testutil.Ptr(today)}); !errors.Is(err, ErrPastFollowUp) {
		t.Errorf("same-day follow-up error = %v, want ErrPastFollowUp", err)
	}

	got, err := f.svc.Submit(ctx, a1.ID, SubmitRequest{
		Fees:      200,
		ExtraFees: 50,
		Note:      testutil.Ptr("rest advised"),
		FollowUp:  testutil.Ptr(tomorrow),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status == nil || *got.Status != model.StatusOut {
		t.Errorf("status = %v, want out", got.Status)
	}
	if got.Fees != 700 {
		t.Errorf("fees = %d, want 700 (500 booked + 200 visit)", got.Fees)
	}
	if got.ExtraFees != 50 {
		t.Errorf("extra fees = %d, want 50", got.ExtraFees)
	}
	if got.Note == nil || !strings.Contains(*got.Note, ":") {
		t.Error("note not stored encrypted")
	}

	// A resubmission corrects the record without charging again.
	got, err = f.svc.Submit(ctx, a1.ID, SubmitRequest{Fees: 200, Note: testutil.Ptr("amended"), FollowUp: testutil.Ptr(tomorrow)})
	if err != nil {
		t.Fatalf("resubmit error = %v", err)
	}
	if got.Fees != 700 {
		t.Errorf("fees after resubmit = %d, want 700", got.Fees)
	}

	v, err := f.svc.Get(ctx, f.doc.ID, a1.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.Appointment.Note == nil || *v.Appointment.Note != "amended" {
		t.Errorf("Get() note = %v, want amended", v.Appointment.Note)
	}
}

func TestClinicalEditGuards(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	p2 := f.addPatient(t, "Jane Roe", "jr10002")

	cancelled := f.book(t, p1.ID, today)
	f.svc.Cancel(ctx, cancelled.ID)
	if err := f.svc.AddParameters(ctx, cancelled.ID, `{"bp":"120/80"}`); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("edit cancelled error = %v, want ErrAlreadyCancelled", err)
	}

	future := f.book(t, p2.ID, tomorrow)
	if err := f.svc.AddParameters(ctx, future.ID, `{"bp":"120/80"}`); !errors.Is(err, ErrFutureDate) {
		t.Errorf("edit future error = %v, want ErrFutureDate", err)
	}

	appt := f.book(t, p2.ID, today)
	if err := f.svc.AddPaymentMode(ctx, appt.ID, "Card"); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("bad payment mode error = %v, want ErrInvalidPayment", err)
	}
	if err := f.svc.AddPaymentMode(ctx, appt.ID, "Cash"); err != nil {
		t.Errorf("AddPaymentMode() error = %v", err)
	}
	if err := f.svc.AddParameters(ctx, appt.ID, `{"bp":"120/80"}`); err != nil {
		t.Errorf("AddParameters() error = %v", err)
	}

	v, err := f.svc.Get(ctx, f.doc.ID, appt.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.Appointment.Parameters == nil || *v.Appointment.Parameters != `{"bp":"120/80"}` {
		t.Errorf("parameters = %v, want decrypted JSON", v.Appointment.Parameters)
	}
	if v.Appointment.PaymentMode == nil || *v.Appointment.PaymentMode != "Cash" {
		t.Errorf("payment mode = %v, want Cash", v.Appointment.PaymentMode)
	}
}

func TestAddDocument(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	a1 := f.book(t, p1.ID, today)

	payload := "aGVsbG8gd29ybGQ="
	if err := f.svc.AddDocument(ctx, a1.ID, payload, "application/pdf"); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	var raw model.Appointment
	f.db.First(&raw, a1.ID)
	if string(raw.Document) == payload {
		t.Error("document stored in plaintext")
	}

	v, err := f.svc.Get(ctx, f.doc.ID, a1.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v.Document == nil || *v.Document != payload {
		t.Errorf("document = %v, want decrypted payload", v.Document)
	}
	if v.Appointment.DocumentType == nil || *v.Appointment.DocumentType != "application/pdf" {
		t.Errorf("document type = %v, want application/pdf", v.Appointment.DocumentType)
	}
}

func TestTodayOrderingAndSearch(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	pending := f.addPatient(t, "Alice Adams", "aa10001")
	done := f.addPatient(t, "Bob Brown", "bb10002")
	inRoom := f.addPatient(t, "Carol Clark", "cc10003")
	gone := f.addPatient(t, "Dan Drake", "dd10004")

	aPending := f.book(t, pending.ID, today)
	aDone := f.book(t, done.ID, today)
	aIn := f.book(t, inRoom.ID, today)
	aGone := f.book(t, gone.ID, today)

	f.svc.SetStatus(ctx, aDone.ID, model.StatusIn)
	f.svc.SetStatus(ctx, aDone.ID, model.StatusOut)
	f.svc.SetStatus(ctx, aIn.ID, model.StatusIn)
	f.svc.Cancel(ctx, aGone.ID)

	views, stats, err := f.svc.Today(ctx, f.doc.ID, TodayQuery{Date: today})
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if len(views) != 4 {
		t.Fatalf("Today() = %d views, want 4", len(views))
	}
	wantOrder := []uint{aIn.ID, aPending.ID, aDone.ID, aGone.ID}
	for i, want := range wantOrder {
		if views[i].Appointment.ID != want {
			t.Errorf("Today()[%d] = appointment %d, want %d", i, views[i].Appointment.ID, want)
		}
	}
	if stats.Pending != 1 || stats.Complete != 1 {
		t.Errorf("stats = %+v, want pending 1 complete 1", stats)
	}

	// Partial encrypted-name search.
	views, _, err = f.svc.Today(ctx, f.doc.ID, TodayQuery{Date: today, SearchTerm: "aroL"})
	if err != nil {
		t.Fatalf("Today() search error = %v", err)
	}
	if len(views) != 1 || views[0].PatientName != "Carol Clark" {
		t.Errorf("search = %d views, want Carol Clark only", len(views))
	}

	// Patient code search shares the same transform.
	views, _, err = f.svc.Today(ctx, f.doc.ID, TodayQuery{Date: today, SearchTerm: "bb100"})
	if err != nil {
		t.Fatalf("Today() code search error = %v", err)
	}
	if len(views) != 1 || views[0].PatientName != "Bob Brown" {
		t.Errorf("code search = %d views, want Bob Brown only", len(views))
	}
}

func TestFirst(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	p2 := f.addPatient(t, "Jane Roe", "jr10002")
	a1 := f.book(t, p1.ID, today)
	f.book(t, p2.ID, today)

	if _, err := f.svc.First(ctx, f.doc.ID, f.owner, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("no one checked in error = %v, want ErrNotFound", err)
	}

	v, err := f.svc.First(ctx, f.doc.ID, f.owner, true)
	if err != nil {
		t.Fatalf("First(includePending) error = %v", err)
	}
	if v.Appointment.ID != a1.ID {
		t.Errorf("First(includePending) = %d, want first pending %d", v.Appointment.ID, a1.ID)
	}

	f.svc.SetStatus(ctx, a1.ID, model.StatusIn)
	v, err = f.svc.First(ctx, f.doc.ID, f.owner, false)
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if v.Appointment.ID != a1.ID {
		t.Errorf("First() = %d, want checked-in %d", v.Appointment.ID, a1.ID)
	}
}

func TestForPatient(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	f.book(t, p1.ID, today)
	f.book(t, p1.ID, tomorrow)

	views, err := f.svc.ForPatient(ctx, f.doc.ID, p1.ID)
	if err != nil {
		t.Fatalf("ForPatient() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("ForPatient() = %d views, want 2", len(views))
	}
	if views[0].Appointment.Date != tomorrow {
		t.Errorf("ForPatient() newest first, got %q", views[0].Appointment.Date)
	}

	if _, err := f.svc.ForPatient(ctx, f.doc.ID+1, p1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross tenant error = %v, want ErrNotFound", err)
	}
}

func TestCancelStale(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	p1 := f.addPatient(t, "John Doe", "jd10001")
	p2 := f.addPatient(t, "Jane Roe", "jr10002")

	// Yesterday falls within the slot's weekdays, so book via the service
	// won't admit a past date check here; seed the stale row directly.
	w := window
	stale := &model.Appointment{
		PatientID: p1.ID, DoctorID: f.owner.DoctorID, AppointmentNumber: 1,
		Reason: "enc", Date: yesterday, Process: "new", Fees: 500, AppointmentTime: &w,
	}
	if err := f.db.Create(stale).Error; err != nil {
		t.Fatalf("seed stale: %v", err)
	}
	fresh := f.book(t, p2.ID, today)

	n, err := f.svc.CancelStale(ctx, today)
	if err != nil {
		t.Fatalf("CancelStale() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CancelStale() = %d rows, want 1", n)
	}

	var gotStale model.Appointment
	f.db.First(&gotStale, stale.ID)
	if gotStale.Status == nil || *gotStale.Status != model.StatusCancel {
		t.Errorf("stale status = %v, want cancel", gotStale.Status)
	}
	var gotFresh model.Appointment
	f.db.First(&gotFresh, fresh.ID)
	if gotFresh.Status != nil {
		t.Errorf("fresh status = %v, want nil", *gotFresh.Status)
	}
}
