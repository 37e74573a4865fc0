package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// ReservationRepository implementación en memoria de repository.ReservationRepository.
type ReservationRepository struct {
	v view
}

func (r *ReservationRepository) Create(_ context.Context, res *entity.Reservation) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.reservations[res.ID]; ok {
		return fmt.Errorf("%w: reserva %s", domain.ErrDuplicate, res.ID)
	}
	st.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepository) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	defer r.v.lock()()
	res, ok := r.v.state().reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *ReservationRepository) UpdateStatus(_ context.Context, res *entity.Reservation) error {
	defer r.v.lock()()
	st := r.v.state()
	cur, ok := st.reservations[res.ID]
	if !ok {
		return fmt.Errorf("%w: reserva %s", domain.ErrNotFound, res.ID)
	}
	cur.Status = res.Status
	cur.Reason = res.Reason
	cur.UpdatedAt = res.UpdatedAt
	st.reservations[res.ID] = cur
	return nil
}

func (r *ReservationRepository) ListByDemand(_ context.Context, demandRef string) ([]*entity.Reservation, error) {
	defer r.v.lock()()
	return r.filter(func(res entity.Reservation) bool { return res.DemandRef == demandRef }, 0), nil
}

func (r *ReservationRepository) SumActiveByLot(_ context.Context, lotID string) (decimal.Decimal, error) {
	defer r.v.lock()()
	sum := decimal.Zero
	for _, res := range r.v.state().reservations {
		if res.LotID == lotID && res.Status == entity.ReservationActive {
			sum = sum.Add(res.Quantity)
		}
	}
	return sum, nil
}

func (r *ReservationRepository) ListDueForUpdate(_ context.Context, now time.Time, limit int) ([]*entity.Reservation, error) {
	defer r.v.lock()()
	return r.filter(func(res entity.Reservation) bool {
		return res.Status == entity.ReservationActive && res.ExpiresAt != nil && !res.ExpiresAt.After(now)
	}, limit), nil
}

func (r *ReservationRepository) ListActiveByExpiredLotsForUpdate(_ context.Context, day time.Time, limit int) ([]*entity.Reservation, error) {
	defer r.v.lock()()
	lots := r.v.state().lots
	return r.filter(func(res entity.Reservation) bool {
		if res.Status != entity.ReservationActive {
			return false
		}
		lot, ok := lots[res.LotID]
		return ok && lot.IsExpired(day)
	}, limit), nil
}

// filter devuelve copias ordenadas por alta; limit <= 0 es sin límite. Requiere el lock tomado.
func (r *ReservationRepository) filter(keep func(entity.Reservation) bool, limit int) []*entity.Reservation {
	var out []*entity.Reservation
	for _, res := range r.v.state().reservations {
		if keep(res) {
			c := res
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ repository.ReservationRepository = (*ReservationRepository)(nil)
