package purchasing

import (
	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

func toOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:        o.ID,
		Status:    string(o.Status),
		Notes:     o.Notes,
		CreatedBy: o.CreatedBy,
		Lines:     make([]dto.OrderLineResponse, 0, len(o.Lines)),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.ExpectedDate != nil {
		out.ExpectedDate = o.ExpectedDate.Format(dto.DateLayout)
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:                l.ID,
			Position:          l.Position,
			ProductID:         l.ProductID,
			ProviderID:        l.ProviderID,
			QuantityRequested: l.QuantityRequested,
			QuantityReceived:  l.QuantityReceived,
			Pending:           l.Pending(),
			UnitPrice:         l.UnitPrice,
			Status:            string(l.Status),
		})
	}
	return out
}
