package receiving

import (
	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

func toEventResponse(ev *entity.ReceivingEvent) dto.ReceivingEventResponse {
	return dto.ReceivingEventResponse{
		ID:             ev.ID,
		ReceiptID:      ev.ReceiptID,
		OrderID:        ev.OrderID,
		OrderLineID:    ev.OrderLineID,
		LotID:          ev.LotID,
		BatchCode:      ev.BatchCode,
		ExpirationDate: ev.ExpirationDate.Format(dto.DateLayout),
		Quantity:       ev.Quantity,
		Location:       ev.Location,
		UnitPrice:      ev.UnitPrice,
		Notes:          ev.Notes,
		CreatedBy:      ev.CreatedBy,
		ReceivedAt:     ev.ReceivedAt,
	}
}

func toEventResponses(list []*entity.ReceivingEvent) []dto.ReceivingEventResponse {
	out := make([]dto.ReceivingEventResponse, 0, len(list))
	for _, ev := range list {
		out = append(out, toEventResponse(ev))
	}
	return out
}
