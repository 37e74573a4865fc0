package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/pkg/validator"
)

var kindStatus = map[string]int{
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindValidation:        fiber.StatusBadRequest,
	domain.KindDuplicate:         fiber.StatusConflict,
	domain.KindUnauthorized:      fiber.StatusUnauthorized,
	domain.KindForbidden:         fiber.StatusForbidden,
	domain.KindConflict:          fiber.StatusConflict,
	domain.KindInsufficientStock: fiber.StatusConflict,
	domain.KindOverReservation:   fiber.StatusConflict,
	domain.KindLotConflict:       fiber.StatusConflict,
	domain.KindInvalidOrderState: fiber.StatusConflict,
	domain.KindInvalidLotData:    fiber.StatusUnprocessableEntity,
	domain.KindOverReceipt:       fiber.StatusUnprocessableEntity,
}

// respondError traduce err al código HTTP de su tipo. Los errores de negocio se registran en warn
// con su motivo; los de infraestructura en error y el cliente solo ve INTERNAL.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	kind := domain.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: domain.KindInternal, Message: "error interno"})
	}
	log.Warn().Err(err).
		Str("kind", kind).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("operación rechazada")
	return c.Status(status).JSON(dto.ErrorResponse{Code: kind, Message: err.Error()})
}

// decodeBody parsea el cuerpo JSON en out y aplica los tags validate.
// Si devuelve false la respuesta 400 ya fue escrita y el handler debe retornar el error.
func decodeBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return validateBody(c, out)
}

// decodeOptionalBody como decodeBody pero acepta cuerpo vacío.
func decodeOptionalBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if len(c.Body()) == 0 {
		return true, nil
	}
	return decodeBody(c, out)
}

func validateBody(c *fiber.Ctx, out interface{}) (bool, error) {
	errs := validator.ValidateStruct(out)
	if len(errs) == 0 {
		return true, nil
	}
	fields := make([]dto.FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, dto.FieldError{Field: fe.Field, Tag: fe.Tag, Param: fe.Param})
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
		Code:    domain.KindValidation,
		Message: "datos de entrada inválidos",
		Fields:  fields,
	})
}
