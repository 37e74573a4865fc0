package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ProductRepository puerto de lectura/alta de productos. El CRUD completo vive fuera de este módulo.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
