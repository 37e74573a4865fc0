package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct {
	v view
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.products[p.ID]; ok {
		return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
	}
	st.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.v.lock()()
	p, ok := r.v.state().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
