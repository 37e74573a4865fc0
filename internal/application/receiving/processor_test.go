package receiving

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/inventory"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/application/purchasing"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var nextYear = time.Now().AddDate(1, 0, 0)

type fixture struct {
	store     *memory.Store
	ledger    *inventory.LotLedger
	orders    *purchasing.OrderUseCase
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	ctx := context.Background()
	for _, p := range []entity.Product{
		{ID: "vac-01", Name: "Vacuna A", UnitPrice: dec(10)},
		{ID: "vac-02", Name: "Vacuna B", UnitPrice: dec(4)},
	} {
		p := p
		require.NoError(t, repos.Products.Create(ctx, &p))
	}
	ledger := inventory.NewLotLedger(store, repos.Lots, repos.Products, ports.NopAvailabilityCache{}, zerolog.Nop())
	return &fixture{
		store:     store,
		ledger:    ledger,
		orders:    purchasing.NewOrderUseCase(store, repos.Orders, zerolog.Nop()),
		processor: NewProcessor(store, ledger, repos.Orders, repos.Events, zerolog.Nop()),
	}
}

// confirmedOrder crea una orden confirmada con una línea por cantidad pedida (vac-01, vac-02, ...).
func (f *fixture) confirmedOrder(t *testing.T, requested ...int64) *dto.OrderResponse {
	t.Helper()
	ctx := context.Background()
	products := []string{"vac-01", "vac-02"}
	in := dto.CreateOrderRequest{}
	for i, q := range requested {
		in.Lines = append(in.Lines, dto.CreateOrderLineRequest{
			ProductID: products[i%len(products)], ProviderID: "prov-a", QuantityRequested: dec(q),
		})
	}
	order, err := f.orders.Create(ctx, "u1", in)
	require.NoError(t, err)
	order, err = f.orders.Confirm(ctx, order.ID)
	require.NoError(t, err)
	return order
}

func lotIn(batch string, qty int64) domaininv.LotInput {
	return domaininv.LotInput{BatchCode: batch, Expiration: nextYear, Quantity: dec(qty), Location: "A-1"}
}

func receive(orderID string, lines ...LineReceipt) ReceiveInput {
	return ReceiveInput{OrderID: orderID, UserID: "u1", Lines: lines}
}

func TestReceive_SobreRecepcionNoCreaLotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 100)

	_, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: order.Lines[0].ID, Lots: []domaininv.LotInput{lotIn("L1", 150)}}))
	require.ErrorIs(t, err, domain.ErrOverReceipt)

	lots, err := f.ledger.QueryByProduct(ctx, "vac-01")
	require.NoError(t, err)
	assert.Empty(t, lots)
	events, err := f.processor.ListOrderEvents(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].QuantityReceived.IsZero())
	assert.Equal(t, string(entity.OrderConfirmed), got.Status)
}

func TestReceive_ParcialLuegoCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 100)
	lineID := order.Lines[0].ID

	first, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("L1", 60)}}))
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderPartial), first.OrderStatus)
	require.Len(t, first.Lines, 1)
	assert.Equal(t, string(entity.LinePartial), first.Lines[0].Status)
	assert.True(t, first.Lines[0].Pending.Equal(dec(40)))

	second, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("L2", 40)}}))
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderReceived), second.OrderStatus)
	assert.Equal(t, string(entity.LineComplete), second.Lines[0].Status)
	assert.NotEqual(t, first.ReceiptID, second.ReceiptID)

	lots, err := f.ledger.QueryByProduct(ctx, "vac-01")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.QuantityOnHand)
		assert.True(t, l.UnitPrice.Equal(dec(10)), "sin precio toma el de la línea")
	}
	assert.True(t, total.Equal(dec(100)))

	events, err := f.processor.ListLineEvents(ctx, order.ID, lineID)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("L3", 1)}}))
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState, "una orden ingresada no admite más recepciones")
}

func TestReceive_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10, 5)

	_, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: order.Lines[0].ID, Lots: []domaininv.LotInput{lotIn("A1", 10)}},
		LineReceipt{OrderLineID: order.Lines[1].ID, Lots: []domaininv.LotInput{lotIn("B1", 6)}},
	))
	require.ErrorIs(t, err, domain.ErrOverReceipt)

	lots, err := f.ledger.QueryByProduct(ctx, "vac-01")
	require.NoError(t, err)
	assert.Empty(t, lots)
	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].QuantityReceived.IsZero())
}

func TestReceive_SumaEntradasDeLaMismaLinea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10)
	lineID := order.Lines[0].ID

	_, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("A1", 6)}},
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("A2", 6)}},
	))
	assert.ErrorIs(t, err, domain.ErrOverReceipt)
}

func TestReceive_MismoLoteDosVecesEnUnaRecepcion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10)

	out, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: order.Lines[0].ID, Lots: []domaininv.LotInput{lotIn("a1", 3), lotIn(" A1", 4)}}))
	require.NoError(t, err)
	require.Len(t, out.Events, 2)
	assert.Equal(t, out.Events[0].LotID, out.Events[1].LotID)
	assert.Equal(t, out.ReceiptID, out.Events[0].ReceiptID)

	lots, err := f.ledger.QueryByProduct(ctx, "vac-01")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "A1", lots[0].BatchCode)
	assert.True(t, lots[0].QuantityOnHand.Equal(dec(7)))
}

func TestReceive_LoteConOtroVencimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10)
	lineID := order.Lines[0].ID

	_, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("L1", 2)}}))
	require.NoError(t, err)

	other := lotIn("L1", 3)
	other.Expiration = nextYear.AddDate(0, 1, 0)
	_, err = f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("L2", 1), other}}))
	require.ErrorIs(t, err, domain.ErrLotConflict)

	lots, err := f.ledger.QueryByProduct(ctx, "vac-01")
	require.NoError(t, err)
	require.Len(t, lots, 1, "L2 no debe quedar creado")
	assert.True(t, lots[0].QuantityOnHand.Equal(dec(2)))
}

func TestReceive_EstadosInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.orders.Create(ctx, "u1", dto.CreateOrderRequest{Lines: []dto.CreateOrderLineRequest{
		{ProductID: "vac-01", ProviderID: "prov-a", QuantityRequested: dec(5)},
	}})
	require.NoError(t, err)
	_, err = f.processor.Receive(ctx, receive(pending.ID,
		LineReceipt{OrderLineID: pending.Lines[0].ID, Lots: []domaininv.LotInput{lotIn("L1", 1)}}))
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)

	order := f.confirmedOrder(t, 5, 5)
	_, err = f.orders.CancelLine(ctx, order.ID, order.Lines[1].ID, "")
	require.NoError(t, err)
	_, err = f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: order.Lines[1].ID, Lots: []domaininv.LotInput{lotIn("L1", 1)}}))
	assert.ErrorIs(t, err, domain.ErrInvalidOrderState)

	_, err = f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: pending.Lines[0].ID, Lots: []domaininv.LotInput{lotIn("L1", 1)}}))
	assert.ErrorIs(t, err, domain.ErrNotFound, "la línea es de otra orden")

	_, err = f.processor.Receive(ctx, receive("nope",
		LineReceipt{OrderLineID: "x", Lots: []domaininv.LotInput{lotIn("L1", 1)}}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_LineaCanceladaNoImpideIngresar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 5, 5)
	_, err := f.orders.CancelLine(ctx, order.ID, order.Lines[1].ID, "")
	require.NoError(t, err)

	out, err := f.processor.Receive(ctx, receive(order.ID,
		LineReceipt{OrderLineID: order.Lines[0].ID, Lots: []domaininv.LotInput{lotIn("L1", 5)}}))
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderReceived), out.OrderStatus)
}

func TestReceive_DatosDeLoteInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10)
	lineID := order.Lines[0].ID

	expired := lotIn("L1", 1)
	expired.Expiration = time.Now().AddDate(0, 0, -2)
	cases := []domaininv.LotInput{expired, lotIn("", 1), lotIn("L1", 0)}
	for _, lot := range cases {
		_, err := f.processor.Receive(ctx, receive(order.ID, LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lot}}))
		assert.ErrorIs(t, err, domain.ErrInvalidLotData)
	}

	_, err := f.processor.ReceiveFromRequest(ctx, order.ID, "u1", dto.ReceiveRequest{Lines: []dto.ReceiveLineRequest{{
		OrderLineID: lineID,
		Lots:        []dto.ReceiveLotRequest{{BatchCode: "L1", Expiration: "31/12/2030", Quantity: dec(1)}},
	}}})
	assert.ErrorIs(t, err, domain.ErrInvalidLotData)
}

func TestReceiveFromRequest_Aplica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10)

	out, err := f.processor.ReceiveFromRequest(ctx, order.ID, "u1", dto.ReceiveRequest{Lines: []dto.ReceiveLineRequest{{
		OrderLineID: order.Lines[0].ID,
		Lots: []dto.ReceiveLotRequest{{
			BatchCode: "L9", Expiration: nextYear.Format(dto.DateLayout), Quantity: dec(4), UnitPrice: dec(9), Location: "B-2",
		}},
	}}})
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, nextYear.Format(dto.DateLayout), out.Events[0].ExpirationDate)
	assert.True(t, out.Events[0].UnitPrice.Equal(dec(9)))
	assert.Equal(t, "u1", out.Events[0].CreatedBy)
}

func TestReceive_ConcurrentesNoSuperanLoPedido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.confirmedOrder(t, 10)
	lineID := order.Lines[0].ID

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.processor.Receive(ctx, receive(order.ID,
				LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotIn("L1", 3)}}))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrOverReceipt)
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ok)

	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].QuantityReceived.Equal(dec(9)))
	lots, err := f.ledger.QueryByProduct(ctx, "vac-01")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].QuantityOnHand.Equal(dec(9)))
}

func TestReceive_VenceHoyConServidorAlOesteDeUTC(t *testing.T) {
	f := newFixture(t)
	art := time.FixedZone("ART", -3*60*60)
	// 22 h del 17 en Argentina, ya 18 en UTC
	f.processor.now = func() time.Time { return time.Date(2026, 10, 17, 22, 0, 0, 0, art) }
	order := f.confirmedOrder(t, 10)
	ctx := context.Background()
	lineID := order.Lines[0].ID

	lotExp := func(day int) domaininv.LotInput {
		in := lotIn("L1", 4)
		in.Expiration = time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC)
		return in
	}

	_, err := f.processor.Receive(ctx, receive(order.ID, LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotExp(16)}}))
	assert.ErrorIs(t, err, domain.ErrInvalidLotData)

	res, err := f.processor.Receive(ctx, receive(order.ID, LineReceipt{OrderLineID: lineID, Lots: []domaininv.LotInput{lotExp(17)}}))
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "2026-10-17", res.Events[0].ExpirationDate)
}
