// Package receiving aplica recepciones de mercadería contra órdenes de compra:
// por cada lote entrante busca o crea el lote, suma existencia, registra un evento de auditoría
// y actualiza la línea y el estado de la orden, todo en una sola transacción.
package receiving

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/inventory"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/distribucion-api/internal/domain/purchasing"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// LineReceipt lotes recibidos para una línea.
type LineReceipt struct {
	OrderLineID string
	Lots        []domaininv.LotInput
}

// ReceiveInput una recepción: varias líneas de la misma orden, cada una con uno o más lotes.
type ReceiveInput struct {
	OrderID string
	UserID  string
	Lines   []LineReceipt
}

// Processor aplica recepciones.
type Processor struct {
	txRunner ports.TxRunner
	ledger   *inventory.LotLedger
	orders   repository.PurchaseOrderRepository
	events   repository.ReceivingEventRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewProcessor construye el procesador. orders y events son los repositorios de lectura fuera de tx.
func NewProcessor(
	txRunner ports.TxRunner,
	ledger *inventory.LotLedger,
	orders repository.PurchaseOrderRepository,
	events repository.ReceivingEventRepository,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		txRunner: txRunner,
		ledger:   ledger,
		orders:   orders,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// pendingLot lote a aplicar ya asociado a su línea.
type pendingLot struct {
	line *entity.OrderLine
	in   domaininv.LotInput
	code string
}

// Receive aplica la recepción completa o nada. Errores:
// ErrInvalidLotData (antes de abrir la tx), ErrNotFound, ErrInvalidOrderState (orden no confirmada
// o parcial, o línea cancelada), ErrOverReceipt (lo recibido supera lo pendiente de una línea,
// sumando todas las entradas de esa línea), ErrLotConflict (lote existente con otro vencimiento).
func (p *Processor) Receive(ctx context.Context, in ReceiveInput) (*dto.ReceiveResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: la recepción no tiene líneas", domain.ErrInvalidInput)
	}
	now := p.now()
	totals := map[string]decimal.Decimal{}
	var lineIDs []string
	for _, lr := range in.Lines {
		if lr.OrderLineID == "" {
			return nil, fmt.Errorf("%w: falta la línea de la orden", domain.ErrInvalidInput)
		}
		if len(lr.Lots) == 0 {
			return nil, fmt.Errorf("%w: la línea %s no tiene lotes", domain.ErrInvalidLotData, lr.OrderLineID)
		}
		if _, ok := totals[lr.OrderLineID]; !ok {
			totals[lr.OrderLineID] = decimal.Zero
			lineIDs = append(lineIDs, lr.OrderLineID)
		}
		for _, lot := range lr.Lots {
			if err := domaininv.ValidateLotInput(lot, now); err != nil {
				return nil, err
			}
			totals[lr.OrderLineID] = totals[lr.OrderLineID].Add(lot.Quantity)
		}
	}
	// orden fijo de bloqueo de líneas
	sort.Strings(lineIDs)

	receiptID := uuid.New().String()
	result := &dto.ReceiveResponse{ReceiptID: receiptID, OrderID: in.OrderID}
	products := map[string]struct{}{}

	err := p.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		order, err := repos.Orders.GetByIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, in.OrderID)
		}
		if !purchasing.CanReceive(order.Status) {
			return fmt.Errorf("%w: la orden está %s", domain.ErrInvalidOrderState, order.Status)
		}

		lines := make(map[string]*entity.OrderLine, len(lineIDs))
		for _, id := range lineIDs {
			line, err := repos.Orders.GetLineForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if line == nil || line.OrderID != order.ID {
				return fmt.Errorf("%w: línea %s en la orden %s", domain.ErrNotFound, id, order.ID)
			}
			if line.Status == entity.LineCancelled {
				return fmt.Errorf("%w: la línea %s está cancelada", domain.ErrInvalidOrderState, id)
			}
			if totals[id].GreaterThan(line.Pending()) {
				return fmt.Errorf("%w: línea %s pendiente %s, se recibió %s",
					domain.ErrOverReceipt, id, line.Pending(), totals[id])
			}
			lines[id] = line
		}

		var work []pendingLot
		for _, lr := range in.Lines {
			for _, lot := range lr.Lots {
				work = append(work, pendingLot{line: lines[lr.OrderLineID], in: lot, code: domaininv.NormalizeBatchCode(lot.BatchCode)})
			}
		}
		// lotes en orden de clave para que dos recepciones no se bloqueen en orden inverso
		sort.SliceStable(work, func(i, j int) bool {
			a, b := work[i], work[j]
			if a.line.ProductID != b.line.ProductID {
				return a.line.ProductID < b.line.ProductID
			}
			if a.line.ProviderID != b.line.ProviderID {
				return a.line.ProviderID < b.line.ProviderID
			}
			return a.code < b.code
		})

		for _, w := range work {
			ev, err := p.applyLot(ctx, repos, order, w, receiptID, in.UserID, now)
			if err != nil {
				return err
			}
			result.Events = append(result.Events, toEventResponse(ev))
			products[w.line.ProductID] = struct{}{}
		}

		for _, id := range lineIDs {
			line := lines[id]
			line.QuantityReceived = line.QuantityReceived.Add(totals[id])
			line.Status = purchasing.DeriveLineStatus(line)
			line.UpdatedAt = now
			if err := repos.Orders.UpdateLine(ctx, line); err != nil {
				return err
			}
			result.Lines = append(result.Lines, dto.ReceivedLineResponse{
				OrderLineID:      line.ID,
				QuantityReceived: line.QuantityReceived,
				Pending:          line.Pending(),
				Status:           string(line.Status),
			})
		}

		for i, l := range order.Lines {
			if updated, ok := lines[l.ID]; ok {
				order.Lines[i] = updated
			}
		}
		next := purchasing.DeriveOrderStatus(order.Status, order.Lines)
		if next != order.Status {
			order.Status = next
			order.UpdatedAt = now
			if err := repos.Orders.UpdateStatus(ctx, order); err != nil {
				return err
			}
		}
		result.OrderStatus = string(order.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	touched := make([]string, 0, len(products))
	for id := range products {
		touched = append(touched, id)
	}
	p.ledger.Invalidate(ctx, touched...)
	p.log.Info().
		Str("receipt_id", receiptID).
		Str("order_id", in.OrderID).
		Int("events", len(result.Events)).
		Str("order_status", result.OrderStatus).
		Msg("recepción aplicada")
	return result, nil
}

// applyLot busca o crea el lote de la línea, suma la cantidad y registra el evento.
// Un lote sin precio toma el precio de la línea.
func (p *Processor) applyLot(
	ctx context.Context,
	repos ports.TxRepos,
	order *entity.PurchaseOrder,
	w pendingLot,
	receiptID, userID string,
	now time.Time,
) (*entity.ReceivingEvent, error) {
	price := w.in.UnitPrice
	if price.IsZero() {
		price = w.line.UnitPrice
	}
	key := inventory.LotKey{ProductID: w.line.ProductID, ProviderID: w.line.ProviderID, BatchCode: w.code}
	lot, _, err := p.ledger.FindOrCreateLotInTx(ctx, repos, key, w.in.Expiration, w.in.Location, price)
	if err != nil {
		return nil, err
	}
	if err := p.ledger.IncrementInTx(ctx, repos, lot, w.in.Quantity); err != nil {
		return nil, err
	}
	ev := &entity.ReceivingEvent{
		ID:             uuid.New().String(),
		ReceiptID:      receiptID,
		OrderID:        order.ID,
		OrderLineID:    w.line.ID,
		LotID:          lot.ID,
		BatchCode:      lot.BatchCode,
		ExpirationDate: lot.ExpirationDate,
		Quantity:       w.in.Quantity,
		Location:       w.in.Location,
		UnitPrice:      price,
		Notes:          w.in.Notes,
		CreatedBy:      userID,
		ReceivedAt:     now,
	}
	if err := repos.Events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// ListOrderEvents eventos de recepción de la orden, en orden de registro.
func (p *Processor) ListOrderEvents(ctx context.Context, orderID string) ([]dto.ReceivingEventResponse, error) {
	if err := p.ensureOrder(ctx, orderID); err != nil {
		return nil, err
	}
	list, err := p.events.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toEventResponses(list), nil
}

// ListLineEvents eventos de recepción de una línea de la orden.
func (p *Processor) ListLineEvents(ctx context.Context, orderID, lineID string) ([]dto.ReceivingEventResponse, error) {
	if err := p.ensureOrder(ctx, orderID); err != nil {
		return nil, err
	}
	list, err := p.events.ListByLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ReceivingEvent, 0, len(list))
	for _, ev := range list {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	return toEventResponses(out), nil
}

func (p *Processor) ensureOrder(ctx context.Context, orderID string) error {
	order, err := p.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	return nil
}
