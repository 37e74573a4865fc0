package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// OrderFilter filtros para listar órdenes de compra.
type OrderFilter struct {
	Status entity.OrderStatus // vacío = todos
	Limit  int
	Offset int
}

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	// GetByID devuelve la orden con sus líneas ordenadas por posición.
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate igual que GetByID bloqueando la cabecera.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, order *entity.PurchaseOrder) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.PurchaseOrder, error)

	// GetLineForUpdate bloquea la línea (SELECT FOR UPDATE).
	GetLineForUpdate(ctx context.Context, lineID string) (*entity.OrderLine, error)
	// UpdateLine persiste QuantityReceived, Status y UpdatedAt.
	UpdateLine(ctx context.Context, line *entity.OrderLine) error
}
