package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/api/http/middleware"
	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/pkg/reqctx"
)

func actorFromLocals(c fiber.Ctx) (*reqctx.Actor, bool) {
	return middleware.ActorFromFiber(c)
}

func hospitalIDFromLocals(c fiber.Ctx) (uint, bool) {
	actor, ok := middleware.ActorFromFiber(c)
	if !ok {
		return 0, false
	}
	return actor.HospitalID, true
}

func paramUint(c fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// ownerBody is the practitioner reference shared by slot and booking
// payloads. Exactly one field must be set.
type ownerBody struct {
	DoctorID    *uint   `json:"doctor_id"`
	SubDoctorID *string `json:"sub_doctor_id"`
}

func (b ownerBody) owner() slot.Owner {
	return slot.Owner{DoctorID: b.DoctorID, SubDoctorID: b.SubDoctorID}
}

// ownerFromQuery reads the practitioner reference from query parameters.
func ownerFromQuery(c fiber.Ctx) (slot.Owner, error) {
	var q struct {
		DoctorID    *uint   `query:"doctor_id"`
		SubDoctorID *string `query:"sub_doctor_id"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return slot.Owner{}, err
	}
	o := slot.Owner{DoctorID: q.DoctorID, SubDoctorID: q.SubDoctorID}
	return o, o.Validate()
}

// auditEntry seeds an audit entry with the actor and request metadata of the
// current call. Handlers fill in the value snapshots before logging.
func auditEntry(c fiber.Ctx, action, entity string, entityID any, status string) audit.Entry {
	entry := audit.Entry{
		Status:   status,
		Endpoint: c.Path(),
		Action:   action,
	}
	if entity != "" {
		entry.Entity = &entity
	}
	if entityID != nil {
		id := fmt.Sprint(entityID)
		entry.EntityID = &id
	}
	if actor, ok := middleware.ActorFromFiber(c); ok {
		entry.HospitalID = actor.HospitalID
		entry.Actor = audit.Actor{
			Role:           actor.Role,
			DoctorID:       actor.DoctorID,
			ReceptionistID: actor.ReceptionistID,
			SubDoctorID:    actor.SubDoctorID,
		}
	}
	if meta, ok := middleware.RequestMetaFromFiber(c); ok {
		entry.IPAddress = meta.ClientIP
		entry.UserAgent = meta.UserAgent
	}
	return entry
}

func auditSuccess(c fiber.Ctx, action, entity string, entityID any) audit.Entry {
	return auditEntry(c, action, entity, entityID, model.AuditSuccess)
}
