// Package purchasing contiene las reglas puras del ciclo de vida de una orden de compra.
// El estado se deriva una sola vez por mutación y se persiste; ningún lector lo recalcula.
package purchasing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// DeriveLineStatus calcula el estado de la línea a partir de sus cantidades.
// Una línea cancelada conserva su estado sin importar lo recibido.
func DeriveLineStatus(line *entity.OrderLine) entity.LineStatus {
	if line.Status == entity.LineCancelled {
		return entity.LineCancelled
	}
	switch {
	case line.QuantityReceived.GreaterThanOrEqual(line.QuantityRequested):
		return entity.LineComplete
	case line.QuantityReceived.IsPositive():
		return entity.LinePartial
	default:
		return entity.LinePending
	}
}

// DeriveOrderStatus calcula el estado de la orden después de mutar sus líneas.
// Las líneas canceladas no cuentan para "todas completas"; si todas están canceladas la orden
// queda cancelada. Si nada fue recibido el estado actual se mantiene (las transiciones
// pendiente->confirmada y la cancelación las decide el llamador).
func DeriveOrderStatus(current entity.OrderStatus, lines []*entity.OrderLine) entity.OrderStatus {
	if current.IsTerminal() {
		return current
	}
	active, complete := 0, 0
	anyReceived := false
	for _, l := range lines {
		if l.Status == entity.LineCancelled {
			continue
		}
		active++
		if l.Status == entity.LineComplete {
			complete++
		}
		if l.QuantityReceived.IsPositive() {
			anyReceived = true
		}
	}
	switch {
	case len(lines) > 0 && active == 0:
		return entity.OrderCancelled
	case active > 0 && complete == active && anyReceived:
		return entity.OrderReceived
	case anyReceived:
		return entity.OrderPartial
	default:
		return current
	}
}

// CanTransition indica si una transición explícita (decidida por el llamador) es válida.
// parcial e ingresada solo se alcanzan por recepción, nunca por transición explícita.
func CanTransition(from, to entity.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case entity.OrderCancelled:
		return true
	case entity.OrderPending:
		return from == entity.OrderDraft
	case entity.OrderConfirmed:
		return from == entity.OrderPending
	}
	return false
}

// CanReceive indica si la orden admite recepciones.
func CanReceive(status entity.OrderStatus) bool {
	return status == entity.OrderConfirmed || status == entity.OrderPartial
}

// PercentReceived porcentaje recibido (0-100, 2 decimales) sobre las líneas no canceladas.
func PercentReceived(lines []*entity.OrderLine) decimal.Decimal {
	requested, received := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Status == entity.LineCancelled {
			continue
		}
		requested = requested.Add(l.QuantityRequested)
		received = received.Add(decimal.Min(l.QuantityReceived, l.QuantityRequested))
	}
	if !requested.IsPositive() {
		return decimal.Zero
	}
	return received.Div(requested).Mul(decimal.NewFromInt(100)).Round(2)
}
