package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/distribucion-api/internal/domain/inventory"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// LotKey clave natural de un lote (el código se normaliza al buscar).
type LotKey struct {
	ProductID  string
	ProviderID string
	BatchCode  string
}

// LotLedger libro de lotes: existencia por lote, vencimiento y ubicación.
// Los métodos *InTx operan con los repositorios de una transacción abierta por el llamador
// (recepción, reservas); los demás abren su propia transacción.
type LotLedger struct {
	txRunner ports.TxRunner
	lots     repository.LotRepository
	products repository.ProductRepository
	cache    ports.AvailabilityCache
	log      zerolog.Logger
	now      func() time.Time
}

// NewLotLedger construye el caso de uso. lots y products son los repositorios fuera de tx (lecturas).
func NewLotLedger(
	txRunner ports.TxRunner,
	lots repository.LotRepository,
	products repository.ProductRepository,
	cache ports.AvailabilityCache,
	log zerolog.Logger,
) *LotLedger {
	if cache == nil {
		cache = ports.NopAvailabilityCache{}
	}
	return &LotLedger{
		txRunner: txRunner,
		lots:     lots,
		products: products,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// FindOrCreateLotInTx devuelve el lote (bloqueado) para la clave, creándolo con existencia cero
// si no existe. Es idempotente sobre (producto, proveedor, código): si ya existe, el vencimiento
// debe coincidir o se devuelve ErrLotConflict. Ubicación y precio de un lote existente no se pisan.
func (l *LotLedger) FindOrCreateLotInTx(
	ctx context.Context,
	repos ports.TxRepos,
	key LotKey,
	expiration time.Time,
	location string,
	unitPrice decimal.Decimal,
) (*entity.Lot, bool, error) {
	code := domaininv.NormalizeBatchCode(key.BatchCode)
	if code == "" || expiration.IsZero() {
		return nil, false, fmt.Errorf("%w: código de lote y vencimiento son obligatorios", domain.ErrInvalidLotData)
	}
	if unitPrice.IsNegative() || !domaininv.FitsNumeric(unitPrice) {
		return nil, false, fmt.Errorf("%w: precio %s del lote %s fuera de rango", domain.ErrInvalidLotData, unitPrice, code)
	}
	if key.ProductID == "" || key.ProviderID == "" {
		return nil, false, fmt.Errorf("%w: producto y proveedor son obligatorios", domain.ErrInvalidInput)
	}

	existing, err := repos.Lots.GetByKeyForUpdate(ctx, key.ProductID, key.ProviderID, code)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if err := checkSameExpiration(existing, expiration); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	now := l.now()
	lot := &entity.Lot{
		ID:               uuid.New().String(),
		ProductID:        key.ProductID,
		ProviderID:       key.ProviderID,
		BatchCode:        code,
		ExpirationDate:   entity.CalendarDate(expiration),
		QuantityOnHand:   decimal.Zero,
		QuantityReserved: decimal.Zero,
		Location:         location,
		UnitPrice:        unitPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = repos.Lots.Create(ctx, lot)
	if errors.Is(err, domain.ErrDuplicate) {
		// otra tx creó el mismo lote entre la lectura y el insert: releer ya con lock
		existing, err = repos.Lots.GetByKeyForUpdate(ctx, key.ProductID, key.ProviderID, code)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("lote %s duplicado pero no encontrado", code)
		}
		if err := checkSameExpiration(existing, expiration); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return lot, true, nil
}

func checkSameExpiration(lot *entity.Lot, expiration time.Time) error {
	if domaininv.SameExpiration(lot.ExpirationDate, expiration) {
		return nil
	}
	return fmt.Errorf("%w: lote %s registrado con vencimiento %s, se declaró %s",
		domain.ErrLotConflict, lot.BatchCode,
		lot.ExpirationDate.Format(dto.DateLayout), expiration.Format(dto.DateLayout))
}

// IncrementInTx suma quantity a la existencia del lote. El lote debe venir bloqueado.
func (l *LotLedger) IncrementInTx(ctx context.Context, repos ports.TxRepos, lot *entity.Lot, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad a ingresar debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if !domaininv.FitsNumeric(quantity) {
		return fmt.Errorf("%w: cantidad %s admite hasta %d decimales", domain.ErrInvalidInput, quantity, domaininv.QuantityScale)
	}
	lot.QuantityOnHand = lot.QuantityOnHand.Add(quantity)
	lot.UpdatedAt = l.now()
	return repos.Lots.UpdateQuantities(ctx, lot)
}

// DecrementInTx resta quantity de la existencia del lote (bloqueado).
// Sin fromReserved solo puede tomar lo libre (existencia - reservado). Con fromReserved consume
// cantidad reservada: lo usa únicamente la utilización de una reserva, que baja ambos contadores.
func (l *LotLedger) DecrementInTx(ctx context.Context, repos ports.TxRepos, lot *entity.Lot, quantity decimal.Decimal, fromReserved bool) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad a descontar debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if !domaininv.FitsNumeric(quantity) {
		return fmt.Errorf("%w: cantidad %s admite hasta %d decimales", domain.ErrInvalidInput, quantity, domaininv.QuantityScale)
	}
	if fromReserved {
		if quantity.GreaterThan(lot.QuantityReserved) || quantity.GreaterThan(lot.QuantityOnHand) {
			return fmt.Errorf("%w: lote %s reservado %s, existencia %s, se pidió %s",
				domain.ErrInsufficientStock, lot.BatchCode, lot.QuantityReserved, lot.QuantityOnHand, quantity)
		}
		lot.QuantityReserved = lot.QuantityReserved.Sub(quantity)
	} else if quantity.GreaterThan(lot.Available()) {
		return fmt.Errorf("%w: lote %s disponible %s, se pidió %s",
			domain.ErrInsufficientStock, lot.BatchCode, lot.Available(), quantity)
	}
	lot.QuantityOnHand = lot.QuantityOnHand.Sub(quantity)
	lot.UpdatedAt = l.now()
	return repos.Lots.UpdateQuantities(ctx, lot)
}

// FindOrCreateLot versión transaccional de FindOrCreateLotInTx. Valida que el producto exista.
func (l *LotLedger) FindOrCreateLot(
	ctx context.Context,
	key LotKey,
	expiration time.Time,
	location string,
	unitPrice decimal.Decimal,
) (*dto.LotResponse, error) {
	var lot *entity.Lot
	err := l.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, key.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, key.ProductID)
		}
		lot, _, err = l.FindOrCreateLotInTx(ctx, repos, key, expiration, location, unitPrice)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toLotResponse(lot, l.now())
	return &out, nil
}

// Increment suma existencia a un lote (ajuste manual).
func (l *LotLedger) Increment(ctx context.Context, lotID string, quantity decimal.Decimal) (*dto.LotResponse, error) {
	return l.adjust(ctx, lotID, func(repos ports.TxRepos, lot *entity.Lot) error {
		return l.IncrementInTx(ctx, repos, lot, quantity)
	})
}

// Decrement resta existencia libre de un lote (consumo o entrega sin reserva).
func (l *LotLedger) Decrement(ctx context.Context, lotID string, quantity decimal.Decimal) (*dto.LotResponse, error) {
	return l.adjust(ctx, lotID, func(repos ports.TxRepos, lot *entity.Lot) error {
		return l.DecrementInTx(ctx, repos, lot, quantity, false)
	})
}

func (l *LotLedger) adjust(ctx context.Context, lotID string, apply func(ports.TxRepos, *entity.Lot) error) (*dto.LotResponse, error) {
	var lot *entity.Lot
	err := l.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		lot, err = repos.Lots.GetByIDForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
		}
		return apply(repos, lot)
	})
	if err != nil {
		return nil, err
	}
	l.Invalidate(ctx, lot.ProductID)
	l.log.Info().
		Str("lot_id", lot.ID).
		Str("batch_code", lot.BatchCode).
		Str("on_hand", lot.QuantityOnHand.String()).
		Msg("existencia de lote ajustada")
	out := toLotResponse(lot, l.now())
	return &out, nil
}

// GetLot obtiene un lote por ID.
func (l *LotLedger) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := l.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	out := toLotResponse(lot, l.now())
	return &out, nil
}

// QueryByProduct lista los lotes del producto, primero el que vence antes.
// No elige lotes: el llamador decide de cuál consumir.
func (l *LotLedger) QueryByProduct(ctx context.Context, productID string) ([]dto.LotResponse, error) {
	lots, err := l.lots.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	domaininv.SortFEFO(lots)
	now := l.now()
	out := make([]dto.LotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, toLotResponse(lot, now))
	}
	return out, nil
}

// Invalidate borra del cache la disponibilidad de los productos. Se llama después del Commit;
// un fallo del cache no revierte nada, solo se registra.
func (l *LotLedger) Invalidate(ctx context.Context, productIDs ...string) {
	if len(productIDs) == 0 {
		return
	}
	if err := l.cache.Invalidate(ctx, productIDs...); err != nil {
		l.log.Warn().Err(err).Strs("product_ids", productIDs).Msg("invalidar cache de disponibilidad")
	}
}
