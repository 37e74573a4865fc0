package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveLotRequest un lote entrante. Expiration en formato AAAA-MM-DD.
type ReceiveLotRequest struct {
	BatchCode  string          `json:"batch_code"`
	Expiration string          `json:"expiration"`
	Quantity   decimal.Decimal `json:"quantity"`
	Location   string          `json:"location" validate:"max=120"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes" validate:"max=500"`
}

// ReceiveLineRequest lotes recibidos para una línea de la orden.
type ReceiveLineRequest struct {
	OrderLineID string              `json:"order_line_id" validate:"required"`
	Lots        []ReceiveLotRequest `json:"lots" validate:"required,min=1,dive"`
}

// ReceiveRequest body para POST /api/purchase-orders/:id/receipts.
type ReceiveRequest struct {
	Lines []ReceiveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceivingEventResponse evento de auditoría de recepción.
type ReceivingEventResponse struct {
	ID             string          `json:"id"`
	ReceiptID      string          `json:"receipt_id"`
	OrderID        string          `json:"order_id"`
	OrderLineID    string          `json:"order_line_id"`
	LotID          string          `json:"lot_id"`
	BatchCode      string          `json:"batch_code"`
	ExpirationDate string          `json:"expiration_date"`
	Quantity       decimal.Decimal `json:"quantity"`
	Location       string          `json:"location"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	ReceivedAt     time.Time       `json:"received_at"`
}

// ReceivedLineResponse estado de una línea después de la recepción.
type ReceivedLineResponse struct {
	OrderLineID      string          `json:"order_line_id"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	Pending          decimal.Decimal `json:"pending"`
	Status           string          `json:"status"`
}

// ReceiveResponse resultado de una recepción aplicada.
type ReceiveResponse struct {
	ReceiptID   string                   `json:"receipt_id"`
	OrderID     string                   `json:"order_id"`
	OrderStatus string                   `json:"order_status"`
	Lines       []ReceivedLineResponse   `json:"lines"`
	Events      []ReceivingEventResponse `json:"events"`
}
