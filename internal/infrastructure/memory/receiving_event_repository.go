package memory

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// ReceivingEventRepository implementación en memoria; los eventos se listan en orden de alta.
type ReceivingEventRepository struct {
	v view
}

func (r *ReceivingEventRepository) Create(_ context.Context, ev *entity.ReceivingEvent) error {
	defer r.v.lock()()
	st := r.v.state()
	st.events = append(st.events, *ev)
	return nil
}

func (r *ReceivingEventRepository) ListByLine(_ context.Context, lineID string) ([]*entity.ReceivingEvent, error) {
	defer r.v.lock()()
	return r.filter(func(ev entity.ReceivingEvent) bool { return ev.OrderLineID == lineID }), nil
}

func (r *ReceivingEventRepository) ListByOrder(_ context.Context, orderID string) ([]*entity.ReceivingEvent, error) {
	defer r.v.lock()()
	return r.filter(func(ev entity.ReceivingEvent) bool { return ev.OrderID == orderID }), nil
}

func (r *ReceivingEventRepository) filter(keep func(entity.ReceivingEvent) bool) []*entity.ReceivingEvent {
	out := []*entity.ReceivingEvent{}
	for _, ev := range r.v.state().events {
		if keep(ev) {
			c := ev
			out = append(out, &c)
		}
	}
	return out
}

var _ repository.ReceivingEventRepository = (*ReceivingEventRepository)(nil)
