package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// TransferHandler propuestas de movimiento de piezas entre áreas.
type TransferHandler struct {
	transfers *tracking.TransferUseCase
	query     *tracking.QueryUseCase
	log       *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(transfers *tracking.TransferUseCase, query *tracking.QueryUseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{transfers: transfers, query: query, log: log}
}

// Propose godoc
// @Summary      Proponer transferencia
// @Description  Las piezas no se mueven hasta que el área destino acepta.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProposeTransferRequest  true  "Transferencia"
// @Success      201   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Propose(c *fiber.Ctx) error {
	var in dto.ProposeTransferRequest
	if err := bind(c, &in); err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.transfers.Propose(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar transferencias
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        subject_id  query  string  false  "Pedido o reposición"
// @Param        from_area   query  string  false  "Área origen"
// @Param        to_area     query  string  false  "Área destino"
// @Param        status      query  string  false  "pending|accepted|rejected"
// @Success      200         {array}  dto.TransferResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.query.ListTransfers(c.UserContext(), tracking.TransferQuery{
		SubjectID: c.Query("subject_id"),
		FromArea:  c.Query("from_area"),
		ToArea:    c.Query("to_area"),
		Status:    c.Query("status"),
		Page:      page,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Incoming godoc
// @Summary      Transferencias pendientes hacia el área del usuario
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/transfers/incoming [get]
func (h *TransferHandler) Incoming(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	out, err := h.query.ListTransfers(c.UserContext(), tracking.TransferQuery{
		ToArea: GetArea(c),
		Status: "pending",
		Page:   page,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener transferencia
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransferResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Accept godoc
// @Summary      Aceptar transferencia
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/accept [post]
func (h *TransferHandler) Accept(c *fiber.Ctx) error {
	return h.resolve(c, tracking.DecisionAccept)
}

// Reject godoc
// @Summary      Rechazar transferencia
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransferResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	return h.resolve(c, tracking.DecisionReject)
}

func (h *TransferHandler) resolve(c *fiber.Ctx, decision string) error {
	out, err := h.transfers.Resolve(c.UserContext(), actorFrom(c), c.Params("id"), decision)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}
