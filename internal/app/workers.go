package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/config"
	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/realtime"
	"github.com/cliniva/cliniva_backend/pkg/constants"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
	"github.com/cliniva/cliniva_backend/pkg/email"
)

// WorkerModule registers all NATS event workers and background sweeps.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	NC       *nats.Conn
	DB       *gorm.DB
	Mail     *email.Client
	Key      EncryptionKey
	Registry *realtime.Registry
	Appts    appointment.Service
}

func RegisterWorkers(p WorkerParams) {
	bridge := realtime.NewBridge(p.NC, p.Registry)
	sweepCtx, stopSweep := context.WithCancel(context.Background())

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := bridge.Start(); err != nil {
				return err
			}
			startEmailWorker(p.NC, p.DB, p.Mail, []byte(p.Key))
			go runStaleCancelSweep(sweepCtx, p.Appts, p.Cfg.Booking.StaleCancelHour)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopSweep()
			bridge.Stop()
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// email_worker
// ---------------------------------------------------------------------------

func startEmailWorker(nc *nats.Conn, db *gorm.DB, mail *email.Client, key []byte) {
	created := constants.SubjectPrefix + ".appointment.created.*"
	_, err := nc.Subscribe(created, func(msg *nats.Msg) {
		data, ok := loadBookingEmailData(db, key, msg.Data)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mail.Send(ctx, email.BuildBookingConfirmationEmail(data)); err != nil {
			if !errors.Is(err, email.ErrDisabled{}) {
				slog.Warn("email_worker: confirmation send failed", "email", data.Email, "err", err)
			}
		}
	})
	if err != nil {
		slog.Error("email_worker: subscribe appointment.created failed", "err", err)
	}

	cancelled := constants.SubjectPrefix + ".appointment.cancelled.*"
	_, err = nc.Subscribe(cancelled, func(msg *nats.Msg) {
		data, ok := loadBookingEmailData(db, key, msg.Data)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mail.Send(ctx, email.BuildCancellationEmail(data)); err != nil {
			if !errors.Is(err, email.ErrDisabled{}) {
				slog.Warn("email_worker: cancellation send failed", "email", data.Email, "err", err)
			}
		}
	})
	if err != nil {
		slog.Error("email_worker: subscribe appointment.cancelled failed", "err", err)
	}

	slog.Info("email_worker: started")
}

// loadBookingEmailData resolves the event payload (an appointment id) into
// the decrypted fields the mail templates need. Returns false when the
// patient has no email on file or the lookup fails.
func loadBookingEmailData(db *gorm.DB, key []byte, payload []byte) (email.BookingEmailData, bool) {
	idStr := strings.TrimSpace(string(payload))
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return email.BookingEmailData{}, false
	}

	var appt model.Appointment
	err = db.Preload("Patient").Preload("Doctor").Preload("SubDoctor.Doctor").
		First(&appt, uint(id)).Error
	if err != nil {
		slog.Warn("email_worker: appointment not found", "id", idStr, "err", err)
		return email.BookingEmailData{}, false
	}
	if appt.Patient == nil || appt.Patient.Email == nil {
		return email.BookingEmailData{}, false
	}

	addr, err := crypto.Decrypt(key, *appt.Patient.Email)
	if err != nil {
		slog.Warn("email_worker: decrypt patient email failed", "id", idStr, "err", err)
		return email.BookingEmailData{}, false
	}

	data := email.BookingEmailData{
		Email:             addr,
		Date:              appt.Date,
		AppointmentNumber: appt.AppointmentNumber,
	}
	if appt.AppointmentTime != nil {
		data.Window = *appt.AppointmentTime
	}
	if name, err := crypto.Decrypt(key, appt.Patient.Name); err == nil {
		data.PatientName = name
	}

	switch {
	case appt.Doctor != nil:
		data.ClinicName = appt.Doctor.ClinicName
		if name, err := crypto.Decrypt(key, appt.Doctor.Name); err == nil {
			data.PractitionerName = name
		}
	case appt.SubDoctor != nil:
		if name, err := crypto.Decrypt(key, appt.SubDoctor.Name); err == nil {
			data.PractitionerName = name
		}
		if appt.SubDoctor.Doctor != nil {
			data.ClinicName = appt.SubDoctor.Doctor.ClinicName
		}
	}
	return data, true
}

// ---------------------------------------------------------------------------
// stale_cancel_sweep
// ---------------------------------------------------------------------------

// staleCutoff is the exclusive cutoff date for the sweep: visits dated
// strictly before yesterday are abandoned. A pending visit from yesterday
// survives one more day so late status updates still land.
func staleCutoff(now time.Time) string {
	return now.AddDate(0, 0, -1).Format("2006-01-02")
}

// runStaleCancelSweep cancels never-attended appointments from past days.
// It fires once a day at the configured local hour.
func runStaleCancelSweep(ctx context.Context, appts appointment.Service, hour int) {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	slog.Info("stale_cancel_sweep: started", "hour", hour)

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		n, err := appts.CancelStale(ctx, staleCutoff(time.Now()))
		if err != nil {
			slog.Error("stale_cancel_sweep: sweep failed", "err", err)
			continue
		}
		if n > 0 {
			slog.Info("stale_cancel_sweep: cancelled stale appointments", "count", n)
		}
	}
}
