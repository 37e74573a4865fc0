package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote de stock de un producto entregado por un proveedor.
// La clave natural es (ProductID, ProviderID, BatchCode).
// Invariante: 0 <= QuantityReserved <= QuantityOnHand.
type Lot struct {
	ID               string
	ProductID        string
	ProviderID       string
	BatchCode        string
	ExpirationDate   time.Time
	QuantityOnHand   decimal.Decimal
	QuantityReserved decimal.Decimal
	Location         string
	UnitPrice        decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available devuelve la cantidad libre (no reservada) del lote.
func (l *Lot) Available() decimal.Decimal {
	return l.QuantityOnHand.Sub(l.QuantityReserved)
}

// IsExpired indica si el lote venció respecto de la fecha dada (se compara por día calendario;
// el día de now es el de su propia zona horaria).
func (l *Lot) IsExpired(now time.Time) bool {
	return CalendarDate(l.ExpirationDate).Before(CalendarDate(now))
}

// CalendarDate devuelve el día calendario de t, leído en la zona de t, como medianoche UTC.
// Vencimientos (columna DATE, AAAA-MM-DD) y "hoy" se comparan siempre con esta forma.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
