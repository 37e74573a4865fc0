package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotResponse lote con su disponible calculado.
type LotResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProviderID       string          `json:"provider_id"`
	BatchCode        string          `json:"batch_code"`
	ExpirationDate   string          `json:"expiration_date"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved decimal.Decimal `json:"quantity_reserved"`
	Available        decimal.Decimal `json:"available"`
	Location         string          `json:"location"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Expired          bool            `json:"expired"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AvailabilityResponse foto de disponibilidad de un producto, sumada sobre todos sus lotes.
// Available se muestra con piso en cero.
type AvailabilityResponse struct {
	ProductID         string           `json:"product_id"`
	OnHand            decimal.Decimal  `json:"on_hand"`
	Reserved          decimal.Decimal  `json:"reserved"`
	Available         decimal.Decimal  `json:"available"`
	AverageUnitCost   decimal.Decimal  `json:"average_unit_cost"`
	MinStock          *decimal.Decimal `json:"min_stock,omitempty"`
	BelowMinimum      bool             `json:"below_minimum"`
	LotCount          int              `json:"lot_count"`
	NearestExpiration string           `json:"nearest_expiration,omitempty"`
}

// AdjustLotRequest body para POST /api/lots/:id/increment|decrement.
type AdjustLotRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// CreateReservationRequest body para POST /api/reservations.
// Indicar lot_id reserva sobre ese lote; solo product_id reparte entre lotes (FEFO).
type CreateReservationRequest struct {
	LotID     string          `json:"lot_id,omitempty" validate:"required_without=ProductID"`
	ProductID string          `json:"product_id,omitempty" validate:"required_without=LotID"`
	DemandRef string          `json:"demand_ref" validate:"required,max=120"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// LiberateReservationRequest body para POST /api/reservations/:id/liberate.
type LiberateReservationRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// ReservationResponse reserva expuesta al API.
type ReservationResponse struct {
	ID        string          `json:"id"`
	LotID     string          `json:"lot_id"`
	ProductID string          `json:"product_id"`
	DemandRef string          `json:"demand_ref"`
	Quantity  decimal.Decimal `json:"quantity"`
	Status    string          `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExpireReservationsResponse resultado de un barrido de vencimientos.
type ExpireReservationsResponse struct {
	Expired        int      `json:"expired"`
	ReservationIDs []string `json:"reservation_ids"`
}

// CreateProductRequest body para POST /api/products (alta mínima para referenciar lotes).
type CreateProductRequest struct {
	ID        string           `json:"id,omitempty" validate:"omitempty,max=64"`
	Name      string           `json:"name" validate:"required,max=200"`
	UnitPrice decimal.Decimal  `json:"unit_price" validate:"gte=0"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
}

// ProductResponse producto expuesto al API.
type ProductResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// FindOrCreateLotRequest body para POST /api/lots. ExpirationDate en formato AAAA-MM-DD.
type FindOrCreateLotRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	ProviderID     string          `json:"provider_id" validate:"required"`
	BatchCode      string          `json:"batch_code" validate:"required,max=64"`
	ExpirationDate string          `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	Location       string          `json:"location" validate:"max=120"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"gte=0"`
}
