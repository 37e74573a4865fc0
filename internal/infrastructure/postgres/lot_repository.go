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

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, provider_id, batch_code, expiration_date, quantity_on_hand,
	quantity_reserved, location, unit_price, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row scanner) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.ProviderID, &l.BatchCode, &l.ExpirationDate, &l.QuantityOnHand,
		&l.QuantityReserved, &l.Location, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserta el lote. Si otra tx ya insertó la misma clave natural devuelve ErrDuplicate sin
// abortar la transacción (ON CONFLICT DO NOTHING), así el llamador puede releer la fila.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (product_id, provider_id, batch_code) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.ProviderID, lot.BatchCode, lot.ExpirationDate, lot.QuantityOnHand,
		lot.QuantityReserved, lot.Location, lot.UnitPrice, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, lot.ID)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, lot.BatchCode)
	}
	return nil
}

func (r *LotRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Lot, error) {
	lot, err := scanLot(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

// GetByKeyForUpdate busca por clave natural y bloquea la fila.
func (r *LotRepo) GetByKeyForUpdate(ctx context.Context, productID, providerID, batchCode string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND provider_id = $2 AND batch_code = $3
		FOR UPDATE`
	return r.getOne(ctx, query, productID, providerID, batchCode)
}

// UpdateQuantities persiste existencia y reservado. Los CHECK de la tabla rechazan valores
// negativos o reservado mayor a existencia.
func (r *LotRepo) UpdateQuantities(ctx context.Context, lot *entity.Lot) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE lots SET quantity_on_hand = $2, quantity_reserved = $3, updated_at = $4 WHERE id = $1`,
		lot.ID, lot.QuantityOnHand, lot.QuantityReserved, lot.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: lote %s", domain.ErrInsufficientStock, lot.ID)
		}
		return fmt.Errorf("update lot quantities: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lot.ID)
	}
	return nil
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

// ListByProduct lotes del producto, primero el que vence antes.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE product_id = $1
		ORDER BY expiration_date, created_at, batch_code`, productID)
}

// ListByProductForUpdate igual que ListByProduct bloqueando las filas en ese mismo orden.
func (r *LotRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE product_id = $1
		ORDER BY expiration_date, created_at, batch_code
		FOR UPDATE`, productID)
}
