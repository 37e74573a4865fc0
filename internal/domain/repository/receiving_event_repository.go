package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ReceivingEventRepository puerto de auditoría de recepciones (solo inserción y lectura).
type ReceivingEventRepository interface {
	Create(ctx context.Context, ev *entity.ReceivingEvent) error
	ListByLine(ctx context.Context, lineID string) ([]*entity.ReceivingEvent, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.ReceivingEvent, error)
}
