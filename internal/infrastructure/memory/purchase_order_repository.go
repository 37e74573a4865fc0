package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// PurchaseOrderRepository implementación en memoria de repository.PurchaseOrderRepository.
type PurchaseOrderRepository struct {
	v view
}

func (r *PurchaseOrderRepository) Create(_ context.Context, order *entity.PurchaseOrder) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.orders[order.ID]; ok {
		return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, order.ID)
	}
	header := *order
	header.Lines = nil
	st.orders[order.ID] = header
	for _, l := range order.Lines {
		st.lines[l.ID] = *l
	}
	return nil
}

func (r *PurchaseOrderRepository) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	defer r.v.lock()()
	return r.load(id), nil
}

func (r *PurchaseOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

// load arma la orden con copias de sus líneas. Requiere el lock tomado.
func (r *PurchaseOrderRepository) load(id string) *entity.PurchaseOrder {
	st := r.v.state()
	header, ok := st.orders[id]
	if !ok {
		return nil
	}
	order := header
	order.Lines = nil
	for _, l := range st.lines {
		if l.OrderID == id {
			line := l
			order.Lines = append(order.Lines, &line)
		}
	}
	sort.Slice(order.Lines, func(i, j int) bool { return order.Lines[i].Position < order.Lines[j].Position })
	return &order
}

func (r *PurchaseOrderRepository) UpdateStatus(_ context.Context, order *entity.PurchaseOrder) error {
	defer r.v.lock()()
	st := r.v.state()
	cur, ok := st.orders[order.ID]
	if !ok {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, order.ID)
	}
	cur.Status = order.Status
	cur.UpdatedAt = order.UpdatedAt
	st.orders[order.ID] = cur
	return nil
}

func (r *PurchaseOrderRepository) List(_ context.Context, filter repository.OrderFilter) ([]*entity.PurchaseOrder, error) {
	defer r.v.lock()()
	var ids []entity.PurchaseOrder
	for _, o := range r.v.state().orders {
		if filter.Status == "" || o.Status == filter.Status {
			ids = append(ids, o)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if !ids[i].CreatedAt.Equal(ids[j].CreatedAt) {
			return ids[i].CreatedAt.After(ids[j].CreatedAt)
		}
		return ids[i].ID > ids[j].ID
	})
	if filter.Offset >= len(ids) {
		return []*entity.PurchaseOrder{}, nil
	}
	ids = ids[filter.Offset:]
	if filter.Limit > 0 && len(ids) > filter.Limit {
		ids = ids[:filter.Limit]
	}
	out := make([]*entity.PurchaseOrder, 0, len(ids))
	for _, o := range ids {
		out = append(out, r.load(o.ID))
	}
	return out, nil
}

func (r *PurchaseOrderRepository) GetLineForUpdate(_ context.Context, lineID string) (*entity.OrderLine, error) {
	defer r.v.lock()()
	l, ok := r.v.state().lines[lineID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *PurchaseOrderRepository) UpdateLine(_ context.Context, line *entity.OrderLine) error {
	defer r.v.lock()()
	st := r.v.state()
	cur, ok := st.lines[line.ID]
	if !ok {
		return fmt.Errorf("%w: línea %s", domain.ErrNotFound, line.ID)
	}
	cur.QuantityReceived = line.QuantityReceived
	cur.Status = line.Status
	cur.UpdatedAt = line.UpdatedAt
	st.lines[line.ID] = cur
	return nil
}

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)
