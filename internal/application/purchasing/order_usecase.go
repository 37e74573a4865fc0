package purchasing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
	rules "github.com/jhoicas/distribucion-api/internal/domain/purchasing"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// OrderUseCase ciclo de vida de órdenes de compra: alta, envío, confirmación, cancelación y consultas.
// La recepción (parcial / ingresada) vive en el paquete receiving.
type OrderUseCase struct {
	txRunner ports.TxRunner
	orders   repository.PurchaseOrderRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewOrderUseCase construye el caso de uso. orders es el repositorio de lectura fuera de tx.
func NewOrderUseCase(txRunner ports.TxRunner, orders repository.PurchaseOrderRepository, log zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, orders: orders, log: log, now: time.Now}
}

// Create registra una orden con sus líneas. Nace en borrador si in.Draft, si no pendiente.
// Una línea sin precio toma el precio del producto.
func (uc *OrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: la orden debe tener al menos una línea", domain.ErrInvalidInput)
	}
	var expected *time.Time
	if in.ExpectedDate != "" {
		d, err := time.Parse(dto.DateLayout, in.ExpectedDate)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha esperada %q", domain.ErrInvalidInput, in.ExpectedDate)
		}
		expected = &d
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" || strings.TrimSpace(l.ProviderID) == "" {
			return nil, fmt.Errorf("%w: línea %d sin producto o proveedor", domain.ErrInvalidInput, i+1)
		}
		if !l.QuantityRequested.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d cantidad debe ser mayor a cero", domain.ErrInvalidInput, i+1)
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d precio negativo", domain.ErrInvalidInput, i+1)
		}
		if !domaininv.FitsNumeric(l.QuantityRequested) || (l.UnitPrice != nil && !domaininv.FitsNumeric(*l.UnitPrice)) {
			return nil, fmt.Errorf("%w: línea %d cantidad o precio con más de %d decimales o fuera de rango",
				domain.ErrInvalidInput, i+1, domaininv.QuantityScale)
		}
	}

	now := uc.now()
	status := entity.OrderPending
	if in.Draft {
		status = entity.OrderDraft
	}
	order := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		Notes:        in.Notes,
		ExpectedDate: expected,
		Status:       status,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		for i, l := range in.Lines {
			product, err := repos.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
			}
			price := product.UnitPrice
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			order.Lines = append(order.Lines, &entity.OrderLine{
				ID:                uuid.New().String(),
				OrderID:           order.ID,
				Position:          i + 1,
				ProductID:         l.ProductID,
				ProviderID:        l.ProviderID,
				QuantityRequested: l.QuantityRequested,
				QuantityReceived:  decimal.Zero,
				UnitPrice:         price,
				Status:            entity.LinePending,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}
		return repos.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("status", string(order.Status)).Int("lines", len(order.Lines)).Msg("orden de compra creada")
	out := toOrderResponse(order)
	return &out, nil
}

// Submit pasa una orden de borrador a pendiente.
func (uc *OrderUseCase) Submit(ctx context.Context, id string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, id, entity.OrderPending, "")
}

// Confirm pasa una orden de pendiente a confirmada; desde ahí admite recepciones.
func (uc *OrderUseCase) Confirm(ctx context.Context, id string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, id, entity.OrderConfirmed, "")
}

// Cancel cancela una orden no terminal. Las líneas sin completar quedan canceladas;
// lo ya recibido permanece en los lotes.
func (uc *OrderUseCase) Cancel(ctx context.Context, id, reason string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, id, entity.OrderCancelled, reason)
}

func (uc *OrderUseCase) transition(ctx context.Context, id string, to entity.OrderStatus, reason string) (*dto.OrderResponse, error) {
	var order *entity.PurchaseOrder
	var from entity.OrderStatus
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, repos, id)
		if err != nil {
			return err
		}
		from = order.Status
		if !rules.CanTransition(from, to) {
			return fmt.Errorf("%w: no se puede pasar de %s a %s", domain.ErrInvalidOrderState, from, to)
		}
		now := uc.now()
		if to == entity.OrderCancelled {
			for _, l := range order.Lines {
				if l.Status == entity.LineComplete || l.Status == entity.LineCancelled {
					continue
				}
				l.Status = entity.LineCancelled
				l.UpdatedAt = now
				if err := repos.Orders.UpdateLine(ctx, l); err != nil {
					return err
				}
			}
		}
		order.Status = to
		order.UpdatedAt = now
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	ev := uc.log.Info().Str("order_id", order.ID).Str("from", string(from)).Str("to", string(to))
	if reason != "" {
		ev = ev.Str("reason", reason)
	}
	ev.Msg("orden de compra actualizada")
	out := toOrderResponse(order)
	return &out, nil
}

// CancelLine cancela una línea que no terminó de recibirse y vuelve a derivar el estado de la
// orden: si todas las líneas quedan canceladas la orden se cancela; si las restantes ya están
// completas la orden queda ingresada. Cancelar una línea ya cancelada no hace nada.
func (uc *OrderUseCase) CancelLine(ctx context.Context, orderID, lineID, reason string) (*dto.OrderResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, repos, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return fmt.Errorf("%w: la orden está %s", domain.ErrInvalidOrderState, order.Status)
		}
		var line *entity.OrderLine
		for _, l := range order.Lines {
			if l.ID == lineID {
				line = l
				break
			}
		}
		if line == nil {
			return fmt.Errorf("%w: línea %s en la orden %s", domain.ErrNotFound, lineID, orderID)
		}
		switch line.Status {
		case entity.LineCancelled:
			return nil
		case entity.LineComplete:
			return fmt.Errorf("%w: la línea %s ya fue recibida completa", domain.ErrInvalidOrderState, lineID)
		}
		now := uc.now()
		line.Status = entity.LineCancelled
		line.UpdatedAt = now
		if err := repos.Orders.UpdateLine(ctx, line); err != nil {
			return err
		}
		next := rules.DeriveOrderStatus(order.Status, order.Lines)
		if next == order.Status {
			return nil
		}
		order.Status = next
		order.UpdatedAt = now
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Str("line_id", lineID).Str("reason", reason).
		Str("order_status", string(order.Status)).Msg("línea de orden cancelada")
	out := toOrderResponse(order)
	return &out, nil
}

func lockOrder(ctx context.Context, repos ports.TxRepos, id string) (*entity.PurchaseOrder, error) {
	order, err := repos.Orders.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return order, nil
}

// Get obtiene una orden con sus líneas.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	out := toOrderResponse(order)
	return &out, nil
}

// List lista órdenes, más nuevas primero, opcionalmente filtradas por estado.
func (uc *OrderUseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	st := entity.OrderStatus(status)
	if status != "" && !st.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	list, err := uc.orders.List(ctx, repository.OrderFilter{Status: st, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, toOrderResponse(o))
	}
	return out, nil
}

// Summary totales por proveedor (líneas no canceladas) y porcentaje recibido de la orden.
func (uc *OrderUseCase) Summary(ctx context.Context, id string) (*dto.OrderSummaryResponse, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return buildSummary(order), nil
}

func buildSummary(order *entity.PurchaseOrder) *dto.OrderSummaryResponse {
	out := &dto.OrderSummaryResponse{
		OrderID:         order.ID,
		Status:          string(order.Status),
		TotalRequested:  decimal.Zero,
		TotalReceived:   decimal.Zero,
		Total:           decimal.Zero,
		PercentReceived: rules.PercentReceived(order.Lines),
	}
	byProvider := map[string][]*entity.OrderLine{}
	for _, l := range order.Lines {
		if l.Status == entity.LineCancelled {
			out.CancelledLines++
			continue
		}
		byProvider[l.ProviderID] = append(byProvider[l.ProviderID], l)
	}
	providers := make([]string, 0, len(byProvider))
	for p := range byProvider {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	for _, p := range providers {
		lines := byProvider[p]
		sub := dto.ProviderSubtotal{
			ProviderID:      p,
			Lines:           len(lines),
			Requested:       decimal.Zero,
			Received:        decimal.Zero,
			Pending:         decimal.Zero,
			Subtotal:        decimal.Zero,
			ReceivedAmount:  decimal.Zero,
			PercentReceived: rules.PercentReceived(lines),
		}
		for _, l := range lines {
			sub.Requested = sub.Requested.Add(l.QuantityRequested)
			sub.Received = sub.Received.Add(l.QuantityReceived)
			sub.Pending = sub.Pending.Add(l.Pending())
			sub.Subtotal = sub.Subtotal.Add(l.QuantityRequested.Mul(l.UnitPrice))
			sub.ReceivedAmount = sub.ReceivedAmount.Add(l.QuantityReceived.Mul(l.UnitPrice))
		}
		out.TotalRequested = out.TotalRequested.Add(sub.Requested)
		out.TotalReceived = out.TotalReceived.Add(sub.Received)
		out.Total = out.Total.Add(sub.Subtotal)
		out.Providers = append(out.Providers, sub)
	}
	return out
}
