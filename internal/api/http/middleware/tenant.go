package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/pkg/reqctx"
)

const (
	HeaderHospitalID = "X-Hospital-Id"
	HeaderActorRole  = "X-Actor-Role"
	HeaderActorID    = "X-Actor-Id"

	LocalsActor = "actor"
)

// TenantContext resolves the tenant and the acting staff member from gateway
// headers. Authentication happens upstream; the gateway sets these headers
// only after verifying the session, so here they are validated against the
// database and turned into the request actor.
//
// X-Hospital-Id carries the tenant (Doctor) id. X-Actor-Role is one of
// doctor/subdoctor/receptionist and X-Actor-Id the acting staff member's id
// (omitted for role doctor, where the actor is the tenant itself).
func TenantContext(db *gorm.DB) fiber.Handler {
	return func(c fiber.Ctx) error {
		idStr := c.Get(HeaderHospitalID)
		if idStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "X-Hospital-Id header is required")
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid X-Hospital-Id value")
		}
		hospitalID := uint(id)

		var count int64
		if err := db.WithContext(c.Context()).
			Model(&model.Doctor{}).
			Where("id = ?", hospitalID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fiber.ErrNotFound
		}

		actor := &reqctx.Actor{HospitalID: hospitalID}

		switch c.Get(HeaderActorRole) {
		case reqctx.RoleDoctor, "":
			actor.Role = reqctx.RoleDoctor
			actor.DoctorID = &hospitalID

		case reqctx.RoleSubDoctor:
			actorID := c.Get(HeaderActorID)
			if _, err := uuid.Parse(actorID); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid X-Actor-Id value")
			}
			var n int64
			if err := db.WithContext(c.Context()).
				Model(&model.SubDoctor{}).
				Where("id = ? AND added_by = ?", actorID, hospitalID).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fiber.ErrForbidden
			}
			actor.Role = reqctx.RoleSubDoctor
			actor.SubDoctorID = &actorID

		case reqctx.RoleReceptionist:
			rid, err := strconv.ParseUint(c.Get(HeaderActorID), 10, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid X-Actor-Id value")
			}
			recID := uint(rid)
			var n int64
			if err := db.WithContext(c.Context()).
				Model(&model.Receptionist{}).
				Where("id = ? AND doctor_id = ?", recID, hospitalID).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fiber.ErrForbidden
			}
			actor.Role = reqctx.RoleReceptionist
			actor.ReceptionistID = &recID

		default:
			return fiber.NewError(fiber.StatusBadRequest, "invalid X-Actor-Role value")
		}

		c.Locals(LocalsActor, actor)

		return c.Next()
	}
}

// ActorFromFiber retrieves the resolved actor from Fiber locals.
func ActorFromFiber(c fiber.Ctx) (*reqctx.Actor, bool) {
	v := c.Locals(LocalsActor)
	actor, ok := v.(*reqctx.Actor)
	return actor, ok && actor != nil
}
