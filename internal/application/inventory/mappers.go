package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

func toLotResponse(l *entity.Lot, now time.Time) dto.LotResponse {
	return dto.LotResponse{
		ID:               l.ID,
		ProductID:        l.ProductID,
		ProviderID:       l.ProviderID,
		BatchCode:        l.BatchCode,
		ExpirationDate:   l.ExpirationDate.Format(dto.DateLayout),
		QuantityOnHand:   l.QuantityOnHand,
		QuantityReserved: l.QuantityReserved,
		Available:        decimal.Max(l.Available(), decimal.Zero),
		Location:         l.Location,
		UnitPrice:        l.UnitPrice,
		Expired:          l.IsExpired(now),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toReservationResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:        r.ID,
		LotID:     r.LotID,
		ProductID: r.ProductID,
		DemandRef: r.DemandRef,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
		Reason:    r.Reason,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
