package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivingEvent registro de auditoría de un lote ingresado contra una línea de orden.
// Solo se agrega; nunca se modifica. Los eventos de una misma llamada comparten ReceiptID.
type ReceivingEvent struct {
	ID             string
	ReceiptID      string
	OrderID        string
	OrderLineID    string
	LotID          string
	BatchCode      string
	ExpirationDate time.Time
	Quantity       decimal.Decimal
	Location       string
	UnitPrice      decimal.Decimal
	Notes          string
	CreatedBy      string
	ReceivedAt     time.Time
}
