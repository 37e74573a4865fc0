package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/inventory"
)

// LotHandler lotes, ajustes de existencia y disponibilidad por producto.
type LotHandler struct {
	ledger       *inventory.LotLedger
	reservations *inventory.ReservationManager
	log          zerolog.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(ledger *inventory.LotLedger, reservations *inventory.ReservationManager, log zerolog.Logger) *LotHandler {
	return &LotHandler{ledger: ledger, reservations: reservations, log: log}
}

// FindOrCreate godoc
// @Summary      Buscar o crear lote
// @Description  Devuelve el lote con la misma clave (producto, proveedor, código) o lo crea vacío.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FindOrCreateLotRequest  true  "Clave y datos del lote"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "LOT_CONFLICT"
// @Router       /api/lots [post]
func (h *LotHandler) FindOrCreate(c *fiber.Ctx) error {
	var in dto.FindOrCreateLotRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	// el tag datetime ya validó el formato
	expiration, _ := time.Parse(dto.DateLayout, in.ExpirationDate)
	out, err := h.ledger.FindOrCreateLot(c.UserContext(), inventory.LotKey{
		ProductID:  in.ProductID,
		ProviderID: in.ProviderID,
		BatchCode:  in.BatchCode,
	}, expiration, in.Location, in.UnitPrice)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.ledger.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Increment godoc
// @Summary      Sumar existencia a un lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.AdjustLotRequest  true  "Cantidad"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/increment [post]
func (h *LotHandler) Increment(c *fiber.Ctx) error {
	var in dto.AdjustLotRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.Increment(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Decrement godoc
// @Summary      Restar existencia libre de un lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del lote"
// @Param        body  body  dto.AdjustLotRequest  true  "Cantidad"
// @Success      200   {object}  dto.LotResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/lots/{id}/decrement [post]
func (h *LotHandler) Decrement(c *fiber.Ctx) error {
	var in dto.AdjustLotRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.Decrement(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Lotes de un producto (primero el que vence antes)
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.LotResponse
// @Router       /api/products/{id}/lots [get]
func (h *LotHandler) ListByProduct(c *fiber.Ctx) error {
	out, err := h.ledger.QueryByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Disponibilidad de un producto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/availability [get]
func (h *LotHandler) Availability(c *fiber.Ctx) error {
	out, err := h.reservations.Availability(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
