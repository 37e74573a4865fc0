package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// ProductCatalog alta y consulta de productos referenciados por lotes y órdenes.
type ProductCatalog struct {
	repo repository.ProductRepository
}

// NewProductCatalog construye el caso de uso.
func NewProductCatalog(repo repository.ProductRepository) *ProductCatalog {
	return &ProductCatalog{repo: repo}
}

// Create registra un producto. Si no viene ID se genera uno.
func (c *ProductCatalog) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if in.UnitPrice.IsNegative() || (in.MinStock != nil && in.MinStock.IsNegative()) {
		return nil, fmt.Errorf("%w: precio y stock mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if !domaininv.FitsNumeric(in.UnitPrice) || (in.MinStock != nil && !domaininv.FitsNumeric(*in.MinStock)) {
		return nil, fmt.Errorf("%w: precio y stock mínimo admiten hasta %d decimales", domain.ErrInvalidInput, domaininv.QuantityScale)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	p := &entity.Product{
		ID:        id,
		Name:      name,
		UnitPrice: in.UnitPrice,
		MinStock:  in.MinStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Get obtiene un producto por ID.
func (c *ProductCatalog) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return toProductResponse(p), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		MinStock:  p.MinStock,
		CreatedAt: p.CreatedAt,
	}
}
