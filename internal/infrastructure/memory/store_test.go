package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

func newLot(id, batch string, onHand int64) *entity.Lot {
	return &entity.Lot{
		ID:               id,
		ProductID:        "p1",
		ProviderID:       "prov1",
		BatchCode:        batch,
		ExpirationDate:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		QuantityOnHand:   decimal.NewFromInt(onHand),
		QuantityReserved: decimal.Zero,
	}
}

func TestRun_ErrorRevierteCambios(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Repos().Lots.Create(ctx, newLot("l1", "A", 10)))

	boom := errors.New("boom")
	err := s.Run(ctx, func(repos ports.TxRepos) error {
		lot, err := repos.Lots.GetByIDForUpdate(ctx, "l1")
		require.NoError(t, err)
		lot.QuantityOnHand = decimal.NewFromInt(99)
		require.NoError(t, repos.Lots.UpdateQuantities(ctx, lot))
		require.NoError(t, repos.Lots.Create(ctx, newLot("l2", "B", 1)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	lot, err := s.Repos().Lots.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, lot.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	missing, err := s.Repos().Lots.GetByID(ctx, "l2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRun_PanicRevierteYRepropaga(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	assert.Panics(t, func() {
		_ = s.Run(ctx, func(repos ports.TxRepos) error {
			_ = repos.Lots.Create(ctx, newLot("l1", "A", 1))
			panic("falla")
		})
	})
	lot, err := s.Repos().Lots.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, lot)
}

func TestLotRepository_ClaveNaturalUnica(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Repos().Lots.Create(ctx, newLot("l1", "A", 1)))
	err := s.Repos().Lots.Create(ctx, newLot("l2", "A", 1))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLotRepository_DevuelveCopias(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Repos().Lots.Create(ctx, newLot("l1", "A", 5)))
	lot, _ := s.Repos().Lots.GetByID(ctx, "l1")
	lot.QuantityOnHand = decimal.NewFromInt(100)

	again, _ := s.Repos().Lots.GetByID(ctx, "l1")
	assert.True(t, again.QuantityOnHand.Equal(decimal.NewFromInt(5)))
}

func TestPurchaseOrderRepository_ListPagina(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"o1", "o2", "o3"} {
		require.NoError(t, s.Repos().Orders.Create(ctx, &entity.PurchaseOrder{
			ID:        id,
			Status:    entity.OrderPending,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	list, err := s.Repos().Orders.List(ctx, repositoryFilter(entity.OrderPending, 2, 0))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o3", list[0].ID)
	assert.Equal(t, "o2", list[1].ID)

	list, err = s.Repos().Orders.List(ctx, repositoryFilter("", 10, 5))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func repositoryFilter(status entity.OrderStatus, limit, offset int) repository.OrderFilter {
	return repository.OrderFilter{Status: status, Limit: limit, Offset: offset}
}
