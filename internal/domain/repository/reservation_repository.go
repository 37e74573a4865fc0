package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia para reservas.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	// UpdateStatus persiste Status, Reason y UpdatedAt.
	UpdateStatus(ctx context.Context, r *entity.Reservation) error
	ListByDemand(ctx context.Context, demandRef string) ([]*entity.Reservation, error)
	// SumActiveByLot suma la cantidad de las reservas activas del lote.
	SumActiveByLot(ctx context.Context, lotID string) (decimal.Decimal, error)
	// ListDueForUpdate devuelve reservas activas con ExpiresAt <= now, bloqueadas, hasta limit.
	ListDueForUpdate(ctx context.Context, now time.Time, limit int) ([]*entity.Reservation, error)
	// ListActiveByExpiredLotsForUpdate devuelve reservas activas cuyo lote venció antes de day.
	ListActiveByExpiredLotsForUpdate(ctx context.Context, day time.Time, limit int) ([]*entity.Reservation, error)
}
