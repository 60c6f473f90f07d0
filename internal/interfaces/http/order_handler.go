package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// OrderHandler pedidos de producción.
type OrderHandler struct {
	orders    *tracking.OrderUseCase
	lifecycle *tracking.LifecycleUseCase
	query     *tracking.QueryUseCase
	log       *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(orders *tracking.OrderUseCase, lifecycle *tracking.LifecycleUseCase, query *tracking.QueryUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, lifecycle: lifecycle, query: query, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Solo corte o admin. Todas las piezas quedan en el área de origen.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Datos del pedido"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bind(c, &in); err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.orders.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "active|paused|completed"
// @Param        area    query  string  false  "Área actual"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.query.ListOrders(c.UserContext(), c.Query("status"), c.Query("area"), page)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido con su distribución de piezas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Pause godoc
// @Summary      Pausar pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del pedido"
// @Param        body  body  dto.PauseRequest  true  "Motivo"
// @Success      200   {object}  dto.SubjectResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pause [post]
func (h *OrderHandler) Pause(c *fiber.Ctx) error {
	return pauseSubject(c, h.lifecycle, h.log)
}

// Resume godoc
// @Summary      Reanudar pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.SubjectResponse
// @Router       /api/orders/{id}/resume [post]
func (h *OrderHandler) Resume(c *fiber.Ctx) error {
	out, err := h.lifecycle.Resume(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar pedido
// @Description  Requiere todas las piezas en envíos.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.SubjectResponse
// @Router       /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	out, err := h.lifecycle.Complete(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar pedido (lógico)
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.orders.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return fail(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pauseSubject(c *fiber.Ctx, lifecycle *tracking.LifecycleUseCase, log *logger.Logger) error {
	var in dto.PauseRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, log, errInvalidBody)
	}
	out, err := lifecycle.Pause(c.UserContext(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, log, err)
	}
	return c.JSON(out)
}

// pageFrom lee limit/offset de la query.
func pageFrom(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, errInvalidBody
	}
	if err := check(page); err != nil {
		return page, err
	}
	return page, nil
}
