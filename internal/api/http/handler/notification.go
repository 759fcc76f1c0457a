package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/cliniva/cliniva_backend/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrInvalidDate):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /notifications?date=&page=&per_page=
func (h *NotificationHandler) List(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Date    string `query:"date"`
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	res, err := h.svc.List(c.Context(), hospitalID, q.Date, q.Page, q.PerPage)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, res)
}

// GET /notifications/count
func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	count, err := h.svc.UnreadCount(c.Context(), hospitalID)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"count": count})
}

// PATCH /notifications/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.MarkRead(c.Context(), hospitalID, id); err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, fiber.Map{"message": "notification marked as read"})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	hospitalID, valid := hospitalIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUint(c, "id")
	if !valid {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.Delete(c.Context(), hospitalID, id); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}
