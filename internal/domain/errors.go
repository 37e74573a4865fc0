package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("%w: motivo") para dar contexto legible.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Lotes y reservas
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverReservation   = errors.New("la reserva supera el stock disponible del lote")
	ErrLotConflict       = errors.New("el lote ya existe con otro vencimiento")
	ErrInvalidLotData    = errors.New("datos de lote inválidos")

	// Órdenes de compra y recepción
	ErrOverReceipt       = errors.New("la cantidad recibida supera lo pendiente de la línea")
	ErrInvalidOrderState = errors.New("estado de la orden no admite la operación")
)

// Códigos estables por tipo de error, expuestos a la capa HTTP.
const (
	KindNotFound          = "NOT_FOUND"
	KindValidation        = "VALIDATION"
	KindDuplicate         = "DUPLICATE"
	KindUnauthorized      = "UNAUTHORIZED"
	KindForbidden         = "FORBIDDEN"
	KindConflict          = "CONFLICT"
	KindInsufficientStock = "INSUFFICIENT_STOCK"
	KindOverReservation   = "OVER_RESERVATION"
	KindLotConflict       = "LOT_CONFLICT"
	KindInvalidLotData    = "INVALID_LOT_DATA"
	KindOverReceipt       = "OVER_RECEIPT"
	KindInvalidOrderState = "INVALID_ORDER_STATE"
	KindInternal          = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInsufficientStock, KindInsufficientStock},
	{ErrOverReservation, KindOverReservation},
	{ErrLotConflict, KindLotConflict},
	{ErrInvalidLotData, KindInvalidLotData},
	{ErrOverReceipt, KindOverReceipt},
	{ErrInvalidOrderState, KindInvalidOrderState},
	{ErrNotFound, KindNotFound},
	{ErrInvalidInput, KindValidation},
	{ErrDuplicate, KindDuplicate},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrConflict, KindConflict},
}

// Kind devuelve el código del error de dominio contenido en err, o KindInternal si no hay ninguno.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsDomain indica si err corresponde a un resultado de negocio (no a una falla de infraestructura).
func IsDomain(err error) bool {
	k := Kind(err)
	return k != "" && k != KindInternal
}
