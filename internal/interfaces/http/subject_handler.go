package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// SubjectHandler consultas comunes a pedidos y reposiciones.
type SubjectHandler struct {
	query *tracking.QueryUseCase
	log   *logger.Logger
}

func NewSubjectHandler(query *tracking.QueryUseCase, log *logger.Logger) *SubjectHandler {
	return &SubjectHandler{query: query, log: log}
}

// Pieces godoc
// @Summary      Distribución de piezas por área
// @Tags         subjects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido o reposición"
// @Success      200  {object}  dto.PieceDistributionResponse
// @Router       /api/subjects/{id}/pieces [get]
func (h *SubjectHandler) Pieces(c *fiber.Ctx) error {
	out, err := h.query.Distribution(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial cronológico
// @Tags         subjects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido o reposición"
// @Success      200  {array}  dto.HistoryEventResponse
// @Router       /api/subjects/{id}/history [get]
func (h *SubjectHandler) History(c *fiber.Ctx) error {
	out, err := h.query.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(out)
}

// Areas godoc
// @Summary      Registro de áreas
// @Tags         areas
// @Produce      json
// @Success      200  {array}  dto.AreaResponse
// @Router       /api/areas [get]
func (h *SubjectHandler) Areas(c *fiber.Ctx) error {
	return c.JSON(tracking.Areas())
}
