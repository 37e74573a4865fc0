package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/inventory"
)

// ReservationHandler reservas de stock contra lotes.
type ReservationHandler struct {
	manager *inventory.ReservationManager
	log     zerolog.Logger
}

// NewReservationHandler construye el handler.
func NewReservationHandler(manager *inventory.ReservationManager, log zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{manager: manager, log: log}
}

// Create godoc
// @Summary      Reservar stock
// @Description  Con lot_id reserva sobre ese lote; con product_id reparte entre lotes por vencimiento.
// @Description  Responde siempre una lista de reservas creadas.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "Reserva"
// @Success      201   {array}   dto.ReservationResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "OVER_RESERVATION"
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	ctx := c.UserContext()
	if in.LotID != "" {
		out, err := h.manager.Reserve(ctx, inventory.ReserveInput{
			LotID:     in.LotID,
			DemandRef: in.DemandRef,
			Quantity:  in.Quantity,
			ExpiresAt: in.ExpiresAt,
		})
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON([]dto.ReservationResponse{*out})
	}
	out, err := h.manager.ReserveForProduct(ctx, inventory.ReserveProductInput{
		ProductID: in.ProductID,
		DemandRef: in.DemandRef,
		Quantity:  in.Quantity,
		ExpiresAt: in.ExpiresAt,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByDemand godoc
// @Summary      Reservas de una demanda
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        demand_ref  query  string  true  "Referencia de la demanda"
// @Success      200  {array}   dto.ReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListByDemand(c *fiber.Ctx) error {
	demandRef := c.Query("demand_ref")
	if demandRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "demand_ref es requerido"})
	}
	out, err := h.manager.ListByDemand(c.UserContext(), demandRef)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.manager.GetReservation(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Liberate godoc
// @Summary      Liberar reserva
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true   "ID de la reserva"
// @Param        body  body  dto.LiberateReservationRequest  false  "Motivo"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/liberate [post]
func (h *ReservationHandler) Liberate(c *fiber.Ctx) error {
	var in dto.LiberateReservationRequest
	if ok, err := decodeOptionalBody(c, &in); !ok {
		return err
	}
	out, err := h.manager.Liberate(c.UserContext(), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Utilize godoc
// @Summary      Utilizar reserva (descuenta la existencia del lote)
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/utilize [post]
func (h *ReservationHandler) Utilize(c *fiber.Ctx) error {
	out, err := h.manager.Utilize(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExpireDue godoc
// @Summary      Vencer reservas vencidas
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpireReservationsResponse
// @Failure      409  {object}  dto.ErrorResponse  "otro barrido en curso"
// @Router       /api/reservations/expire [post]
func (h *ReservationHandler) ExpireDue(c *fiber.Ctx) error {
	out, err := h.manager.ExpireDue(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
