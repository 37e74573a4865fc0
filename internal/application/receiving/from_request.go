package receiving

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
)

// ReceiveFromRequest traduce el body HTTP a ReceiveInput y aplica la recepción.
// Un vencimiento que no es AAAA-MM-DD es ErrInvalidLotData.
func (p *Processor) ReceiveFromRequest(ctx context.Context, orderID, userID string, req dto.ReceiveRequest) (*dto.ReceiveResponse, error) {
	in := ReceiveInput{OrderID: orderID, UserID: userID}
	for _, l := range req.Lines {
		lr := LineReceipt{OrderLineID: l.OrderLineID}
		for _, lot := range l.Lots {
			exp, err := time.Parse(dto.DateLayout, lot.Expiration)
			if err != nil {
				return nil, fmt.Errorf("%w: vencimiento %q del lote %q", domain.ErrInvalidLotData, lot.Expiration, lot.BatchCode)
			}
			lr.Lots = append(lr.Lots, domaininv.LotInput{
				BatchCode:  lot.BatchCode,
				Expiration: exp,
				Quantity:   lot.Quantity,
				Location:   lot.Location,
				UnitPrice:  lot.UnitPrice,
				Notes:      lot.Notes,
			})
		}
		in.Lines = append(in.Lines, lr)
	}
	return p.Receive(ctx, in)
}
