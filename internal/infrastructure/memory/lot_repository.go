package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// LotRepository implementación en memoria de repository.LotRepository.
// Los métodos ForUpdate no bloquean nada extra: la tx ya tiene el store entero.
type LotRepository struct {
	v view
}

func (r *LotRepository) Create(_ context.Context, lot *entity.Lot) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.lots[lot.ID]; ok {
		return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, lot.ID)
	}
	for _, l := range st.lots {
		if l.ProductID == lot.ProductID && l.ProviderID == lot.ProviderID && l.BatchCode == lot.BatchCode {
			return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, lot.BatchCode)
		}
	}
	st.lots[lot.ID] = *lot
	return nil
}

func (r *LotRepository) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	defer r.v.lock()()
	l, ok := r.v.state().lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LotRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *LotRepository) GetByKeyForUpdate(_ context.Context, productID, providerID, batchCode string) (*entity.Lot, error) {
	defer r.v.lock()()
	for _, l := range r.v.state().lots {
		if l.ProductID == productID && l.ProviderID == providerID && l.BatchCode == batchCode {
			out := l
			return &out, nil
		}
	}
	return nil, nil
}

func (r *LotRepository) UpdateQuantities(_ context.Context, lot *entity.Lot) error {
	defer r.v.lock()()
	st := r.v.state()
	cur, ok := st.lots[lot.ID]
	if !ok {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lot.ID)
	}
	cur.QuantityOnHand = lot.QuantityOnHand
	cur.QuantityReserved = lot.QuantityReserved
	cur.UpdatedAt = lot.UpdatedAt
	st.lots[lot.ID] = cur
	return nil
}

func (r *LotRepository) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	defer r.v.lock()()
	var out []*entity.Lot
	for _, l := range r.v.state().lots {
		if l.ProductID == productID {
			lot := l
			out = append(out, &lot)
		}
	}
	domaininv.SortFEFO(out)
	return out, nil
}

func (r *LotRepository) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.ListByProduct(ctx, productID)
}

var _ repository.LotRepository = (*LotRepository)(nil)
