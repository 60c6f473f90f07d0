package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/notification"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// NotificationHandler bandeja del usuario autenticado.
type NotificationHandler struct {
	uc  *notification.UseCase
	log *logger.Logger
}

func NewNotificationHandler(uc *notification.UseCase, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Notificaciones del usuario y su área
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        unread  query  bool  false  "Solo no leídas"
// @Param        limit   query  int   false  "Límite"  default(20)
// @Param        offset  query  int   false  "Offset"  default(0)
// @Success      200     {object}  dto.NotificationListResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), actorFrom(c), c.QueryBool("unread", false), page)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// UnreadCount godoc
// @Summary      Cantidad de no leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.uc.UnreadCount(c.UserContext(), actorFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// MarkRead godoc
// @Summary      Marcar como leída
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.NotificationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	out, err := h.uc.MarkRead(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// MarkAllRead godoc
// @Summary      Marcar todas como leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.uc.MarkAllRead(c.UserContext(), actorFrom(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
