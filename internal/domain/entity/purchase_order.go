package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de una orden de compra.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "borrador"
	OrderPending   OrderStatus = "pendiente"
	OrderConfirmed OrderStatus = "confirmada"
	OrderPartial   OrderStatus = "parcial"
	OrderReceived  OrderStatus = "ingresada"
	OrderCancelled OrderStatus = "cancelada"
)

// IsValid verifica que el estado sea conocido.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderDraft, OrderPending, OrderConfirmed, OrderPartial, OrderReceived, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal: una orden ingresada o cancelada es inmutable.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderReceived || s == OrderCancelled
}

// LineStatus estado de una línea de orden de compra.
type LineStatus string

const (
	LinePending   LineStatus = "pendiente"
	LinePartial   LineStatus = "parcial"
	LineComplete  LineStatus = "completo"
	LineCancelled LineStatus = "cancelado"
)

// PurchaseOrder cabecera de una orden de compra. Los proveedores se definen por línea.
type PurchaseOrder struct {
	ID           string
	Notes        string
	ExpectedDate *time.Time
	Status       OrderStatus
	CreatedBy    string
	Lines        []*OrderLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderLine línea de una orden: producto, proveedor, cantidad pedida y recibida.
// QuantityReceived nunca disminuye.
type OrderLine struct {
	ID                string
	OrderID           string
	Position          int
	ProductID         string
	ProviderID        string
	QuantityRequested decimal.Decimal
	QuantityReceived  decimal.Decimal
	UnitPrice         decimal.Decimal
	Status            LineStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Pending devuelve lo que falta recibir (nunca negativo).
func (l *OrderLine) Pending() decimal.Decimal {
	p := l.QuantityRequested.Sub(l.QuantityReceived)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
