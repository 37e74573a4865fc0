package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// MaxBatchCodeLen largo máximo del código de lote (columna batch_code).
const MaxBatchCodeLen = 64

// NormalizeBatchCode unifica el código de lote tal como lo tipea el operador:
// NFKC, sin espacios en los extremos y en mayúsculas. "l-12 " y "L-12" son el mismo lote.
func NormalizeBatchCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(code)))
}

// LotInput datos de un lote entrante (recepción o alta manual).
type LotInput struct {
	BatchCode  string
	Expiration time.Time
	Quantity   decimal.Decimal
	Location   string
	UnitPrice  decimal.Decimal
	Notes      string
}

// ValidateLotInput verifica código de lote, vencimiento (>= hoy), cantidad positiva y precio no negativo,
// ambos con a lo sumo QuantityScale decimales.
// Devuelve un error que envuelve domain.ErrInvalidLotData.
func ValidateLotInput(in LotInput, today time.Time) error {
	code := NormalizeBatchCode(in.BatchCode)
	if code == "" {
		return fmt.Errorf("%w: el código de lote es obligatorio", domain.ErrInvalidLotData)
	}
	if len(code) > MaxBatchCodeLen {
		return fmt.Errorf("%w: el código de lote %q supera %d caracteres", domain.ErrInvalidLotData, code, MaxBatchCodeLen)
	}
	if in.Expiration.IsZero() {
		return fmt.Errorf("%w: el lote %s no tiene vencimiento", domain.ErrInvalidLotData, code)
	}
	if entity.CalendarDate(in.Expiration).Before(entity.CalendarDate(today)) {
		return fmt.Errorf("%w: el lote %s venció el %s", domain.ErrInvalidLotData, code, in.Expiration.Format("2006-01-02"))
	}
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad del lote %s debe ser mayor a cero", domain.ErrInvalidLotData, code)
	}
	if in.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: el precio del lote %s no puede ser negativo", domain.ErrInvalidLotData, code)
	}
	if !FitsNumeric(in.Quantity) || !FitsNumeric(in.UnitPrice) {
		return fmt.Errorf("%w: cantidad %s o precio %s del lote %s fuera de rango (máximo %d decimales)",
			domain.ErrInvalidLotData, in.Quantity, in.UnitPrice, code, QuantityScale)
	}
	return nil
}

// SameExpiration compara vencimientos por día calendario.
func SameExpiration(a, b time.Time) bool {
	return entity.CalendarDate(a).Equal(entity.CalendarDate(b))
}

// SortFEFO ordena los lotes por vencimiento ascendente (primero en vencer, primero en salir).
// Desempata por fecha de alta y luego por código para que el orden sea estable.
func SortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ExpirationDate.Equal(b.ExpirationDate) {
			return a.ExpirationDate.Before(b.ExpirationDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.BatchCode < b.BatchCode
	})
}

// Allocation cantidad tomada de un lote.
type Allocation struct {
	Lot      *entity.Lot
	Quantity decimal.Decimal
}

// SelectFEFO reparte quantity entre lotes no vencidos con disponible, en orden FEFO.
// Devuelve las asignaciones y el faltante (cero si alcanzó).
func SelectFEFO(lots []*entity.Lot, quantity decimal.Decimal, now time.Time) ([]Allocation, decimal.Decimal) {
	sorted := make([]*entity.Lot, len(lots))
	copy(sorted, lots)
	SortFEFO(sorted)

	remaining := quantity
	var out []Allocation
	for _, lot := range sorted {
		if !remaining.IsPositive() {
			break
		}
		if lot.IsExpired(now) {
			continue
		}
		avail := lot.Available()
		if !avail.IsPositive() {
			continue
		}
		take := decimal.Min(avail, remaining)
		out = append(out, Allocation{Lot: lot, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return out, remaining
}
