package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Los lotes lo referencian; nunca lo poseen.
// MinStock es opcional: si es nil el producto no tiene umbral de stock mínimo.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	MinStock  *decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
