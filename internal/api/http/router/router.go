package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/config"
	"github.com/cliniva/cliniva_backend/internal/api/http/handler"
	"github.com/cliniva/cliniva_backend/internal/api/http/middleware"
	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/attendance"
	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/fees"
	"github.com/cliniva/cliniva_backend/internal/service/medicine"
	"github.com/cliniva/cliniva_backend/internal/service/notification"
	"github.com/cliniva/cliniva_backend/internal/service/patient"
	"github.com/cliniva/cliniva_backend/internal/service/practitioner"
	"github.com/cliniva/cliniva_backend/internal/service/realtime"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	DB              *gorm.DB
	SlotSvc         slot.Service
	AvailabilitySvc availability.Service
	AppointmentSvc  appointment.Service
	PatientSvc      patient.Service
	PractitionerSvc practitioner.Service
	FeesSvc         fees.Service
	MedicineSvc     medicine.Service
	NotificationSvc notification.Service
	AuditSvc        audit.Service
	AttendanceSvc   attendance.Service
	Registry        *realtime.Registry
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	tenantCtx := middleware.TenantContext(r.p.DB)

	// 3. Initialize Handlers
	slotH := handler.NewSlotHandler(r.p.SlotSvc, r.p.AuditSvc)
	availabilityH := handler.NewAvailabilityHandler(r.p.AvailabilitySvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc, r.p.AuditSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc, r.p.AuditSvc)
	practitionerH := handler.NewPractitionerHandler(r.p.PractitionerSvc, r.p.AuditSvc)
	feesH := handler.NewFeesHandler(r.p.FeesSvc, r.p.AuditSvc)
	medicineH := handler.NewMedicineHandler(r.p.MedicineSvc, r.p.AuditSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	auditH := handler.NewAuditHandler(r.p.AuditSvc)
	attendanceH := handler.NewAttendanceHandler(r.p.AttendanceSvc)
	realtimeH := handler.NewRealtimeHandler(r.p.Registry)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerPractitionerRoutes(api, practitionerH, tenantCtx)
	r.registerSlotRoutes(api, slotH, availabilityH, tenantCtx)
	r.registerPatientRoutes(api, patientH, appointmentH, tenantCtx)
	r.registerAppointmentRoutes(api, appointmentH, tenantCtx)
	r.registerFeesRoutes(api, feesH, tenantCtx)
	r.registerMedicineRoutes(api, medicineH, tenantCtx)
	r.registerNotificationRoutes(api, notificationH, tenantCtx)
	r.registerAttendanceRoutes(api, attendanceH, auditH, tenantCtx)
	r.registerRealtimeRoutes(api, realtimeH, tenantCtx)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
