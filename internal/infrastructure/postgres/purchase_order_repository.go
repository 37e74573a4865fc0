package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const (
	orderColumns = `id, notes, expected_date, status, created_by, created_at, updated_at`
	lineColumns  = `id, order_id, position, product_id, provider_id, quantity_requested, quantity_received,
	unit_price, status, created_at, updated_at`
)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador de órdenes de compra. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanOrder(row scanner) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var status string
	if err := row.Scan(&o.ID, &o.Notes, &o.ExpectedDate, &status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}

func scanLine(row scanner) (*entity.OrderLine, error) {
	var l entity.OrderLine
	var status string
	err := row.Scan(&l.ID, &l.OrderID, &l.Position, &l.ProductID, &l.ProviderID, &l.QuantityRequested,
		&l.QuantityReceived, &l.UnitPrice, &status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LineStatus(status)
	return &l, nil
}

// Create persiste cabecera y líneas. Debe llamarse dentro de una tx.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO purchase_orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.Notes, o.ExpectedDate, string(o.Status), o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.ID)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, l := range o.Lines {
		_, err := r.q.Exec(ctx,
			`INSERT INTO purchase_order_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			l.ID, o.ID, l.Position, l.ProductID, l.ProviderID, l.QuantityRequested, l.QuantityReceived,
			l.UnitPrice, string(l.Status), l.CreatedAt, l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order line: %w", err)
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	lines, err := r.listLines(ctx, `SELECT `+lineColumns+` FROM purchase_order_lines WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

// GetByID obtiene la orden con sus líneas ordenadas por posición.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la cabecera; las líneas se leen sin bloqueo (se bloquean con GetLineForUpdate).
func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus persiste el estado de la cabecera.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, o *entity.PurchaseOrder) error {
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = $3 WHERE id = $1`,
		o.ID, string(o.Status), o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, o.ID)
	}
	return nil
}

// List órdenes más nuevas primero, con sus líneas.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	var list []*entity.PurchaseOrder
	byID := map[string]*entity.PurchaseOrder{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	lines, err := r.listLines(ctx, `SELECT `+lineColumns+` FROM purchase_order_lines
		WHERE order_id = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return list, nil
}

func (r *PurchaseOrderRepo) listLines(ctx context.Context, query string, args ...any) ([]*entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetLineForUpdate obtiene la línea y bloquea la fila.
func (r *PurchaseOrderRepo) GetLineForUpdate(ctx context.Context, lineID string) (*entity.OrderLine, error) {
	l, err := scanLine(r.q.QueryRow(ctx,
		`SELECT `+lineColumns+` FROM purchase_order_lines WHERE id = $1 FOR UPDATE`, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order line: %w", err)
	}
	return l, nil
}

// UpdateLine persiste lo recibido y el estado de la línea.
func (r *PurchaseOrderRepo) UpdateLine(ctx context.Context, l *entity.OrderLine) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE purchase_order_lines SET quantity_received = $2, status = $3, updated_at = $4 WHERE id = $1`,
		l.ID, l.QuantityReceived, string(l.Status), l.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: línea %s", domain.ErrOverReceipt, l.ID)
		}
		return fmt.Errorf("update purchase order line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: línea %s", domain.ErrNotFound, l.ID)
	}
	return nil
}
