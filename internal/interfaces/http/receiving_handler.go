package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/receiving"
)

// ReceivingHandler recepciones de mercadería contra órdenes de compra.
type ReceivingHandler struct {
	processor *receiving.Processor
	log       zerolog.Logger
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(processor *receiving.Processor, log zerolog.Logger) *ReceivingHandler {
	return &ReceivingHandler{processor: processor, log: log}
}

// Receive godoc
// @Summary      Registrar recepción
// @Description  Aplica todas las líneas o ninguna. Cada lote se suma al existente con la misma clave.
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la orden"
// @Param        body  body  dto.ReceiveRequest  true  "Lotes recibidos por línea"
// @Success      201   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_ORDER_STATE, LOT_CONFLICT"
// @Failure      422   {object}  dto.ErrorResponse  "OVER_RECEIPT, INVALID_LOT_DATA"
// @Router       /api/purchase-orders/{id}/receipts [post]
func (h *ReceivingHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.processor.ReceiveFromRequest(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByOrder godoc
// @Summary      Eventos de recepción de la orden
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}   dto.ReceivingEventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receipts [get]
func (h *ReceivingHandler) ListByOrder(c *fiber.Ctx) error {
	out, err := h.processor.ListOrderEvents(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByLine godoc
// @Summary      Eventos de recepción de una línea
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      200     {array}   dto.ReceivingEventResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/lines/{lineId}/receipts [get]
func (h *ReceivingHandler) ListByLine(c *fiber.Ctx) error {
	out, err := h.processor.ListLineEvents(c.UserContext(), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
