package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus estado de una reserva de stock.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "activa"
	ReservationUtilized  ReservationStatus = "utilizada"
	ReservationLiberated ReservationStatus = "liberada"
	ReservationExpired   ReservationStatus = "vencida"
)

// IsValid verifica que el estado sea conocido.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationActive, ReservationUtilized, ReservationLiberated, ReservationExpired:
		return true
	}
	return false
}

// IsTerminal indica que la reserva ya no retiene cantidad del lote.
func (s ReservationStatus) IsTerminal() bool {
	return s != ReservationActive
}

// Reservation asigna cantidad de un lote a una demanda (p. ej. una entrega programada de un plan
// de vacunación). Referencia al lote solo por ID: liberar una reserva no toca la existencia del lote.
type Reservation struct {
	ID        string
	LotID     string
	ProductID string
	DemandRef string
	Quantity  decimal.Decimal
	Status    ReservationStatus
	Reason    string     // motivo de liberación o vencimiento
	ExpiresAt *time.Time // opcional: vence si no se utiliza antes
	CreatedAt time.Time
	UpdatedAt time.Time
}
