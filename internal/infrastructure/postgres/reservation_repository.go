package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, lot_id, product_id, demand_ref, quantity, status, reason, expires_at, created_at, updated_at`

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func scanReservation(row scanner) (*entity.Reservation, error) {
	var res entity.Reservation
	var status string
	err := row.Scan(&res.ID, &res.LotID, &res.ProductID, &res.DemandRef, &res.Quantity, &status,
		&res.Reason, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.Status = entity.ReservationStatus(status)
	return &res, nil
}

// Create inserta la reserva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.LotID, res.ProductID, res.DemandRef, res.Quantity, string(res.Status),
		res.Reason, res.ExpiresAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reserva %s", domain.ErrDuplicate, res.ID)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) getOne(ctx context.Context, query string, id string) (*entity.Reservation, error) {
	res, err := scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// GetByID obtiene una reserva por ID.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la reserva y bloquea la fila.
func (r *ReservationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus persiste estado, motivo y fecha de actualización.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, res *entity.Reservation) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE reservations SET status = $2, reason = $3, updated_at = $4 WHERE id = $1`,
		res.ID, string(res.Status), res.Reason, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: reserva %s", domain.ErrNotFound, res.ID)
	}
	return nil
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// ListByDemand reservas de una demanda en orden de alta.
func (r *ReservationRepo) ListByDemand(ctx context.Context, demandRef string) ([]*entity.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE demand_ref = $1 ORDER BY created_at, id`, demandRef)
}

// SumActiveByLot suma las reservas activas del lote.
func (r *ReservationRepo) SumActiveByLot(ctx context.Context, lotID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM reservations WHERE lot_id = $1 AND status = $2`,
		lotID, string(entity.ReservationActive),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum active reservations: %w", err)
	}
	return sum, nil
}

// ListDueForUpdate reservas activas con plazo vencido. Las que otra tx tiene bloqueadas
// (una liberación en curso) se saltean: las toma el próximo barrido.
func (r *ReservationRepo) ListDueForUpdate(ctx context.Context, now time.Time, limit int) ([]*entity.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2
		ORDER BY created_at, id
		LIMIT $3
		FOR UPDATE SKIP LOCKED`, string(entity.ReservationActive), now, limit)
}

// ListActiveByExpiredLotsForUpdate reservas activas sobre lotes con vencimiento anterior a day.
func (r *ReservationRepo) ListActiveByExpiredLotsForUpdate(ctx context.Context, day time.Time, limit int) ([]*entity.Reservation, error) {
	return r.list(ctx, `SELECT r.id, r.lot_id, r.product_id, r.demand_ref, r.quantity, r.status, r.reason,
			r.expires_at, r.created_at, r.updated_at
		FROM reservations r
		JOIN lots l ON l.id = r.lot_id
		WHERE r.status = $1 AND l.expiration_date < $2::date
		ORDER BY r.created_at, r.id
		LIMIT $3
		FOR UPDATE OF r SKIP LOCKED`, string(entity.ReservationActive), day, limit)
}
