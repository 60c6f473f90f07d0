package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// RepositionHandler reposiciones y reprocesos.
type RepositionHandler struct {
	repositions *tracking.RepositionUseCase
	lifecycle   *tracking.LifecycleUseCase
	query       *tracking.QueryUseCase
	log         *logger.Logger
}

// NewRepositionHandler construye el handler.
func NewRepositionHandler(repositions *tracking.RepositionUseCase, lifecycle *tracking.LifecycleUseCase, query *tracking.QueryUseCase, log *logger.Logger) *RepositionHandler {
	return &RepositionHandler{repositions: repositions, lifecycle: lifecycle, query: query, log: log}
}

// Create godoc
// @Summary      Solicitar reposición
// @Description  Queda pendiente de aprobación; las piezas nacen en el área solicitante.
// @Tags         repositions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRepositionRequest  true  "Solicitud"
// @Success      201   {object}  dto.RepositionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/repositions [post]
func (h *RepositionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRepositionRequest
	if err := bind(c, &in); err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.repositions.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar reposiciones
// @Tags         repositions
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Estado"
// @Param        order_id  query  string  false  "Pedido de origen"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.RepositionListResponse
// @Router       /api/repositions [get]
func (h *RepositionHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.query.ListRepositions(c.UserContext(), c.Query("status"), c.Query("order_id"), page)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener reposición
// @Tags         repositions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.RepositionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/repositions/{id} [get]
func (h *RepositionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetReposition(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar reposición (admin)
// @Tags         repositions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.RepositionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/repositions/{id}/approve [post]
func (h *RepositionHandler) Approve(c *fiber.Ctx) error {
	out, err := h.repositions.Approve(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar reposición (admin)
// @Tags         repositions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID"
// @Param        body  body  dto.RejectRepositionRequest  true  "Motivo"
// @Success      200   {object}  dto.RepositionResponse
// @Router       /api/repositions/{id}/reject [post]
func (h *RepositionHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRepositionRequest
	if err := bind(c, &in); err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.repositions.Reject(c.UserContext(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar reposición
// @Tags         repositions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.RepositionResponse
// @Router       /api/repositions/{id}/cancel [post]
func (h *RepositionHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.repositions.Cancel(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar reposición
// @Tags         repositions
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/repositions/{id} [delete]
func (h *RepositionHandler) Delete(c *fiber.Ctx) error {
	if err := h.repositions.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return fail(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Pause godoc
// @Summary      Marcar material pendiente
// @Tags         repositions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID"
// @Param        body  body  dto.PauseRequest  true  "Motivo"
// @Success      200   {object}  dto.SubjectResponse
// @Router       /api/repositions/{id}/pause [post]
func (h *RepositionHandler) Pause(c *fiber.Ctx) error {
	return pauseSubject(c, h.lifecycle, h.log)
}

// Resume godoc
// @Summary      Reanudar reposición
// @Tags         repositions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.SubjectResponse
// @Router       /api/repositions/{id}/resume [post]
func (h *RepositionHandler) Resume(c *fiber.Ctx) error {
	out, err := h.lifecycle.Resume(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar reposición
// @Tags         repositions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.SubjectResponse
// @Router       /api/repositions/{id}/complete [post]
func (h *RepositionHandler) Complete(c *fiber.Ctx) error {
	out, err := h.lifecycle.Complete(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}
