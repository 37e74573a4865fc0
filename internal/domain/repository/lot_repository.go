package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia del libro de lotes.
// Los métodos ForUpdate bloquean la fila (SELECT FOR UPDATE) y solo tienen sentido dentro de una tx.
// Las búsquedas devuelven (nil, nil) si no existe el registro.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	GetByKeyForUpdate(ctx context.Context, productID, providerID, batchCode string) (*entity.Lot, error)
	// UpdateQuantities persiste QuantityOnHand y QuantityReserved.
	UpdateQuantities(ctx context.Context, lot *entity.Lot) error
	// ListByProduct devuelve los lotes del producto ordenados por vencimiento ascendente.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListByProductForUpdate igual que ListByProduct pero bloqueando las filas.
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error)
}
