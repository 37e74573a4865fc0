package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.ReceivingEventRepository = (*ReceivingEventRepo)(nil)

const eventColumns = `id, receipt_id, order_id, order_line_id, lot_id, batch_code, expiration_date, quantity,
	location, unit_price, notes, created_by, received_at`

// ReceivingEventRepo auditoría de recepciones sobre PostgreSQL. Solo inserta y lee.
type ReceivingEventRepo struct {
	q Querier
}

// NewReceivingEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivingEventRepository(q Querier) *ReceivingEventRepo {
	return &ReceivingEventRepo{q: q}
}

// Create inserta el evento.
func (r *ReceivingEventRepo) Create(ctx context.Context, ev *entity.ReceivingEvent) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO receiving_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ev.ID, ev.ReceiptID, ev.OrderID, ev.OrderLineID, ev.LotID, ev.BatchCode, ev.ExpirationDate, ev.Quantity,
		ev.Location, ev.UnitPrice, ev.Notes, ev.CreatedBy, ev.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receiving event: %w", err)
	}
	return nil
}

// ListByLine eventos de una línea en orden de registro.
func (r *ReceivingEventRepo) ListByLine(ctx context.Context, lineID string) ([]*entity.ReceivingEvent, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM receiving_events WHERE order_line_id = $1 ORDER BY seq`, lineID)
}

// ListByOrder eventos de una orden en orden de registro.
func (r *ReceivingEventRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.ReceivingEvent, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM receiving_events WHERE order_id = $1 ORDER BY seq`, orderID)
}

func (r *ReceivingEventRepo) list(ctx context.Context, query, id string) ([]*entity.ReceivingEvent, error) {
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list receiving events: %w", err)
	}
	defer rows.Close()
	list := []*entity.ReceivingEvent{}
	for rows.Next() {
		var ev entity.ReceivingEvent
		if err := rows.Scan(&ev.ID, &ev.ReceiptID, &ev.OrderID, &ev.OrderLineID, &ev.LotID, &ev.BatchCode,
			&ev.ExpirationDate, &ev.Quantity, &ev.Location, &ev.UnitPrice, &ev.Notes, &ev.CreatedBy, &ev.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan receiving event: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
