package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/audit"
)

type AuditHandler struct {
	svc audit.Service
}

func NewAuditHandler(svc audit.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /audit-logs?limit=
func (h *AuditHandler) List(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Limit int `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	rows, err := h.svc.List(c.Context(), hospitalID, q.Limit)
	if err != nil {
		return internalError(c)
	}
	return ok(c, rows)
}
