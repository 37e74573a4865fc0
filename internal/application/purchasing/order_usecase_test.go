package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newUseCase(t *testing.T) (*OrderUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, p := range []entity.Product{
		{ID: "vac-01", Name: "Vacuna A", UnitPrice: dec(10)},
		{ID: "vac-02", Name: "Vacuna B", UnitPrice: dec(4)},
	} {
		p := p
		require.NoError(t, store.Repos().Products.Create(ctx, &p))
	}
	return NewOrderUseCase(store, store.Repos().Orders, zerolog.Nop()), store
}

func twoLineOrder(draft bool) dto.CreateOrderRequest {
	price := dec(12)
	return dto.CreateOrderRequest{
		Notes:        "pedido mensual",
		ExpectedDate: "2025-07-01",
		Draft:        draft,
		Lines: []dto.CreateOrderLineRequest{
			{ProductID: "vac-01", ProviderID: "prov-a", QuantityRequested: dec(100), UnitPrice: &price},
			{ProductID: "vac-02", ProviderID: "prov-b", QuantityRequested: dec(50)},
		},
	}
}

func TestCreate_BorradorOPendiente(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	draft, err := uc.Create(ctx, "u1", twoLineOrder(true))
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderDraft), draft.Status)

	order, err := uc.Create(ctx, "u1", twoLineOrder(false))
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderPending), order.Status)
	assert.Equal(t, "2025-07-01", order.ExpectedDate)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 1, order.Lines[0].Position)
	assert.True(t, order.Lines[0].UnitPrice.Equal(dec(12)))
	assert.True(t, order.Lines[1].UnitPrice.Equal(dec(4)), "sin precio toma el del producto")
	assert.Equal(t, string(entity.LinePending), order.Lines[1].Status)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.CreateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := twoLineOrder(false)
	in.Lines[0].QuantityRequested = dec(0)
	_, err = uc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = twoLineOrder(false)
	in.Lines[1].ProductID = "nope"
	_, err = uc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in = twoLineOrder(false)
	in.Lines[1].QuantityRequested = decimal.RequireFromString("2.00005")
	_, err = uc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "NUMERIC(18,4) redondearía la cantidad")

	in = twoLineOrder(false)
	price := decimal.RequireFromString("12.123456")
	in.Lines[0].UnitPrice = &price
	_, err = uc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = twoLineOrder(false)
	in.ExpectedDate = "01/07/2025"
	_, err = uc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransiciones(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, "u1", twoLineOrder(true))
	require.NoError(t, err)

	_, err = uc.Confirm(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState, "borrador no se confirma directo")

	out, err := uc.Submit(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderPending), out.Status)

	out, err = uc.Confirm(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderConfirmed), out.Status)

	_, err = uc.Submit(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)

	_, err = uc.Confirm(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_CancelaLineasAbiertasYEsTerminal(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, "u1", twoLineOrder(false))
	require.NoError(t, err)

	out, err := uc.Cancel(ctx, order.ID, "proveedor sin stock")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderCancelled), out.Status)
	for _, l := range out.Lines {
		assert.Equal(t, string(entity.LineCancelled), l.Status)
	}

	_, err = uc.Cancel(ctx, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
	_, err = uc.CancelLine(ctx, order.ID, out.Lines[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
}

func TestCancelLine_UltimaLineaCancelaOrden(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, "u1", twoLineOrder(false))
	require.NoError(t, err)

	out, err := uc.CancelLine(ctx, order.ID, order.Lines[0].ID, "ya no se necesita")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderPending), out.Status)
	assert.Equal(t, string(entity.LineCancelled), out.Lines[0].Status)

	out, err = uc.CancelLine(ctx, order.ID, order.Lines[0].ID, "")
	require.NoError(t, err, "cancelar dos veces no falla")

	out, err = uc.CancelLine(ctx, order.ID, order.Lines[1].ID, "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderCancelled), out.Status)

	_, err = uc.CancelLine(ctx, order.ID, "otra", "")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)
}

func TestCancelLine_RestoCompletoIngresa(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, "u1", twoLineOrder(false))
	require.NoError(t, err)
	_, err = uc.Confirm(ctx, order.ID)
	require.NoError(t, err)

	// la primera línea se recibió completa
	require.NoError(t, store.Run(ctx, func(repos ports.TxRepos) error {
		line, err := repos.Orders.GetLineForUpdate(ctx, order.Lines[0].ID)
		require.NoError(t, err)
		line.QuantityReceived = line.QuantityRequested
		line.Status = entity.LineComplete
		require.NoError(t, repos.Orders.UpdateLine(ctx, line))
		o, err := repos.Orders.GetByIDForUpdate(ctx, order.ID)
		require.NoError(t, err)
		o.Status = entity.OrderPartial
		return repos.Orders.UpdateStatus(ctx, o)
	}))

	_, err = uc.CancelLine(ctx, order.ID, order.Lines[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState, "una línea completa no se cancela")

	out, err := uc.CancelLine(ctx, order.ID, order.Lines[1].ID, "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderReceived), out.Status)
}

func TestList_FiltraYPagina(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		uc.now = func() time.Time { return at }
		_, err := uc.Create(ctx, "u1", twoLineOrder(i == 0))
		require.NoError(t, err)
	}

	all, err := uc.List(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)
	assert.Equal(t, 20, all.Page.Limit)

	pending, err := uc.List(ctx, string(entity.OrderPending), dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, base.Add(2*time.Minute), pending.Items[0].CreatedAt)

	_, err = uc.List(ctx, "rara", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummary_PorProveedor(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, "u1", twoLineOrder(false))
	require.NoError(t, err)

	require.NoError(t, store.Run(ctx, func(repos ports.TxRepos) error {
		line, err := repos.Orders.GetLineForUpdate(ctx, order.Lines[0].ID)
		require.NoError(t, err)
		line.QuantityReceived = dec(25)
		line.Status = entity.LinePartial
		return repos.Orders.UpdateLine(ctx, line)
	}))

	sum, err := uc.Summary(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, sum.Providers, 2)
	a := sum.Providers[0]
	assert.Equal(t, "prov-a", a.ProviderID)
	assert.True(t, a.Subtotal.Equal(dec(1200)))
	assert.True(t, a.ReceivedAmount.Equal(dec(300)))
	assert.True(t, a.Pending.Equal(dec(75)))
	assert.True(t, a.PercentReceived.Equal(dec(25)))
	assert.True(t, sum.Total.Equal(dec(1400)))
	assert.True(t, sum.TotalRequested.Equal(dec(150)))
	assert.True(t, sum.PercentReceived.Equal(decimal.RequireFromString("16.67")))
	assert.Equal(t, 0, sum.CancelledLines)
}
