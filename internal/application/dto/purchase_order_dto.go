package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderLineRequest línea de una orden nueva.
type CreateOrderLineRequest struct {
	ProductID         string           `json:"product_id" validate:"required"`
	ProviderID        string           `json:"provider_id" validate:"required"`
	QuantityRequested decimal.Decimal  `json:"quantity_requested" validate:"gt=0"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,gte=0"` // vacío = precio del producto
}

// CreateOrderRequest body para POST /api/purchase-orders.
// Draft=true deja la orden en borrador; si no, nace pendiente.
type CreateOrderRequest struct {
	Notes        string                   `json:"notes" validate:"max=2000"`
	ExpectedDate string                   `json:"expected_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Draft        bool                     `json:"draft"`
	Lines        []CreateOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CancelRequest body para cancelar orden o línea.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// OrderLineResponse línea de orden expuesta al API.
type OrderLineResponse struct {
	ID                string          `json:"id"`
	Position          int             `json:"position"`
	ProductID         string          `json:"product_id"`
	ProviderID        string          `json:"provider_id"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	Pending           decimal.Decimal `json:"pending"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Status            string          `json:"status"`
}

// OrderResponse orden de compra con sus líneas.
type OrderResponse struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	Notes        string              `json:"notes"`
	ExpectedDate string              `json:"expected_date,omitempty"`
	CreatedBy    string              `json:"created_by,omitempty"`
	Lines        []OrderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ProviderSubtotal totales de las líneas no canceladas de un proveedor.
type ProviderSubtotal struct {
	ProviderID      string          `json:"provider_id"`
	Lines           int             `json:"lines"`
	Requested       decimal.Decimal `json:"requested"`
	Received        decimal.Decimal `json:"received"`
	Pending         decimal.Decimal `json:"pending"`
	Subtotal        decimal.Decimal `json:"subtotal"`        // requested * unit_price
	ReceivedAmount  decimal.Decimal `json:"received_amount"` // received * unit_price
	PercentReceived decimal.Decimal `json:"percent_received"`
}

// OrderSummaryResponse resumen por proveedor y porcentaje recibido de la orden.
type OrderSummaryResponse struct {
	OrderID         string             `json:"order_id"`
	Status          string             `json:"status"`
	Providers       []ProviderSubtotal `json:"providers"`
	TotalRequested  decimal.Decimal    `json:"total_requested"`
	TotalReceived   decimal.Decimal    `json:"total_received"`
	Total           decimal.Decimal    `json:"total"`
	PercentReceived decimal.Decimal    `json:"percent_received"`
	CancelledLines  int                `json:"cancelled_lines"`
}
