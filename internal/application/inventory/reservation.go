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

const (
	expireLockKey   = "reservas:barrido-vencimiento"
	expireBatchSize = 500

	reasonReservationDue = "reserva vencida"
	reasonLotExpired     = "lote vencido"
)

// ReserveInput reserva sobre un lote concreto.
type ReserveInput struct {
	LotID     string
	DemandRef string
	Quantity  decimal.Decimal
	ExpiresAt *time.Time
}

// ReserveProductInput reserva sobre un producto; los lotes se eligen por FEFO.
type ReserveProductInput struct {
	ProductID string
	DemandRef string
	Quantity  decimal.Decimal
	ExpiresAt *time.Time
}

// ReservationManager administra reservas de stock por lote contra demandas.
type ReservationManager struct {
	txRunner     ports.TxRunner
	ledger       *LotLedger
	reservations repository.ReservationRepository
	lots         repository.LotRepository
	products     repository.ProductRepository
	cache        ports.AvailabilityCache
	locker       ports.Locker
	sweepTTL     time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewReservationManager construye el caso de uso. Los repositorios son los de lectura fuera de tx.
func NewReservationManager(
	txRunner ports.TxRunner,
	ledger *LotLedger,
	reservations repository.ReservationRepository,
	lots repository.LotRepository,
	products repository.ProductRepository,
	cache ports.AvailabilityCache,
	locker ports.Locker,
	sweepTTL time.Duration,
	log zerolog.Logger,
) *ReservationManager {
	if cache == nil {
		cache = ports.NopAvailabilityCache{}
	}
	if locker == nil {
		locker = ports.NewLocalLocker()
	}
	if sweepTTL <= 0 {
		sweepTTL = time.Minute
	}
	return &ReservationManager{
		txRunner:     txRunner,
		ledger:       ledger,
		reservations: reservations,
		lots:         lots,
		products:     products,
		cache:        cache,
		locker:       locker,
		sweepTTL:     sweepTTL,
		log:          log,
		now:          time.Now,
	}
}

func (m *ReservationManager) validateRequest(demandRef string, quantity decimal.Decimal, expiresAt *time.Time) error {
	if demandRef == "" {
		return fmt.Errorf("%w: la referencia de demanda es obligatoria", domain.ErrInvalidInput)
	}
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad a reservar debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if !domaininv.FitsNumeric(quantity) {
		return fmt.Errorf("%w: cantidad %s admite hasta %d decimales", domain.ErrInvalidInput, quantity, domaininv.QuantityScale)
	}
	if expiresAt != nil && !expiresAt.After(m.now()) {
		return fmt.Errorf("%w: el vencimiento de la reserva debe ser futuro", domain.ErrInvalidInput)
	}
	return nil
}

// Reserve aparta quantity del lote para la demanda. Dentro de la tx bloquea el lote y verifica
// que la suma de reservas activas más la nueva no supere la existencia (ErrOverReservation).
func (m *ReservationManager) Reserve(ctx context.Context, in ReserveInput) (*dto.ReservationResponse, error) {
	if err := m.validateRequest(in.DemandRef, in.Quantity, in.ExpiresAt); err != nil {
		return nil, err
	}

	var res *entity.Reservation
	var productID string
	err := m.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		lot, err := repos.Lots.GetByIDForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.LotID)
		}
		if lot.IsExpired(m.now()) {
			return fmt.Errorf("%w: el lote %s está vencido", domain.ErrConflict, lot.BatchCode)
		}
		active, err := repos.Reservations.SumActiveByLot(ctx, lot.ID)
		if err != nil {
			return err
		}
		if active.Add(in.Quantity).GreaterThan(lot.QuantityOnHand) {
			return fmt.Errorf("%w: lote %s existencia %s, reservado %s, se pidió %s",
				domain.ErrOverReservation, lot.BatchCode, lot.QuantityOnHand, active, in.Quantity)
		}
		res, err = m.createInTx(ctx, repos, lot, active, in.DemandRef, in.Quantity, in.ExpiresAt)
		productID = lot.ProductID
		return err
	})
	if err != nil {
		return nil, err
	}
	m.ledger.Invalidate(ctx, productID)
	m.log.Info().
		Str("reservation_id", res.ID).
		Str("lot_id", res.LotID).
		Str("demand_ref", res.DemandRef).
		Str("quantity", res.Quantity.String()).
		Msg("reserva creada")
	out := toReservationResponse(res)
	return &out, nil
}

// ReserveForProduct reparte quantity entre los lotes no vencidos del producto, primero el que vence
// antes, creando una reserva por lote. Si el disponible total no alcanza no reserva nada.
func (m *ReservationManager) ReserveForProduct(ctx context.Context, in ReserveProductInput) ([]dto.ReservationResponse, error) {
	if err := m.validateRequest(in.DemandRef, in.Quantity, in.ExpiresAt); err != nil {
		return nil, err
	}

	var created []*entity.Reservation
	err := m.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		lots, err := repos.Lots.ListByProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		allocations, shortfall := domaininv.SelectFEFO(lots, in.Quantity, m.now())
		if shortfall.IsPositive() {
			return fmt.Errorf("%w: producto %s faltan %s de %s",
				domain.ErrOverReservation, in.ProductID, shortfall, in.Quantity)
		}
		for _, a := range allocations {
			active, err := repos.Reservations.SumActiveByLot(ctx, a.Lot.ID)
			if err != nil {
				return err
			}
			if active.Add(a.Quantity).GreaterThan(a.Lot.QuantityOnHand) {
				return fmt.Errorf("%w: lote %s", domain.ErrOverReservation, a.Lot.BatchCode)
			}
			r, err := m.createInTx(ctx, repos, a.Lot, active, in.DemandRef, a.Quantity, in.ExpiresAt)
			if err != nil {
				return err
			}
			created = append(created, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.ledger.Invalidate(ctx, in.ProductID)
	m.log.Info().
		Str("product_id", in.ProductID).
		Str("demand_ref", in.DemandRef).
		Int("lots", len(created)).
		Msg("reserva por producto creada")

	out := make([]dto.ReservationResponse, 0, len(created))
	for _, r := range created {
		out = append(out, toReservationResponse(r))
	}
	return out, nil
}

// createInTx inserta la reserva y deja QuantityReserved del lote igual a active + quantity.
func (m *ReservationManager) createInTx(
	ctx context.Context,
	repos ports.TxRepos,
	lot *entity.Lot,
	active decimal.Decimal,
	demandRef string,
	quantity decimal.Decimal,
	expiresAt *time.Time,
) (*entity.Reservation, error) {
	now := m.now()
	r := &entity.Reservation{
		ID:        uuid.New().String(),
		LotID:     lot.ID,
		ProductID: lot.ProductID,
		DemandRef: demandRef,
		Quantity:  quantity,
		Status:    entity.ReservationActive,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.Reservations.Create(ctx, r); err != nil {
		return nil, err
	}
	lot.QuantityReserved = active.Add(quantity)
	lot.UpdatedAt = now
	if err := repos.Lots.UpdateQuantities(ctx, lot); err != nil {
		return nil, err
	}
	return r, nil
}

// Liberate devuelve la cantidad reservada al disponible del lote. La existencia no cambia.
// Liberar una reserva ya liberada no hace nada; una utilizada o vencida devuelve ErrConflict.
func (m *ReservationManager) Liberate(ctx context.Context, id, reason string) (*dto.ReservationResponse, error) {
	var res *entity.Reservation
	changed := false
	err := m.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		res, err = m.lockReservation(ctx, repos, id)
		if err != nil {
			return err
		}
		switch res.Status {
		case entity.ReservationLiberated:
			return nil
		case entity.ReservationActive:
		default:
			return fmt.Errorf("%w: la reserva %s está %s", domain.ErrConflict, res.ID, res.Status)
		}
		if err := m.releaseInTx(ctx, repos, res, entity.ReservationLiberated, reason); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		m.ledger.Invalidate(ctx, res.ProductID)
		m.log.Info().Str("reservation_id", res.ID).Str("reason", reason).Msg("reserva liberada")
	}
	out := toReservationResponse(res)
	return &out, nil
}

// Utilize consume la reserva: baja existencia y reservado del lote en la misma cantidad.
// Utilizar una reserva ya utilizada no hace nada; liberada o vencida devuelve ErrConflict.
func (m *ReservationManager) Utilize(ctx context.Context, id string) (*dto.ReservationResponse, error) {
	var res *entity.Reservation
	changed := false
	err := m.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		res, err = m.lockReservation(ctx, repos, id)
		if err != nil {
			return err
		}
		switch res.Status {
		case entity.ReservationUtilized:
			return nil
		case entity.ReservationActive:
		default:
			return fmt.Errorf("%w: la reserva %s está %s", domain.ErrConflict, res.ID, res.Status)
		}
		lot, err := repos.Lots.GetByIDForUpdate(ctx, res.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, res.LotID)
		}
		if err := m.ledger.DecrementInTx(ctx, repos, lot, res.Quantity, true); err != nil {
			return err
		}
		res.Status = entity.ReservationUtilized
		res.UpdatedAt = m.now()
		if err := repos.Reservations.UpdateStatus(ctx, res); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		m.ledger.Invalidate(ctx, res.ProductID)
		m.log.Info().Str("reservation_id", res.ID).Str("quantity", res.Quantity.String()).Msg("reserva utilizada")
	}
	out := toReservationResponse(res)
	return &out, nil
}

func (m *ReservationManager) lockReservation(ctx context.Context, repos ports.TxRepos, id string) (*entity.Reservation, error) {
	res, err := repos.Reservations.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
	}
	return res, nil
}

// releaseInTx pasa una reserva activa a un estado terminal sin consumo y descuenta su cantidad
// del reservado del lote.
func (m *ReservationManager) releaseInTx(
	ctx context.Context,
	repos ports.TxRepos,
	res *entity.Reservation,
	status entity.ReservationStatus,
	reason string,
) error {
	lot, err := repos.Lots.GetByIDForUpdate(ctx, res.LotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, res.LotID)
	}
	now := m.now()
	lot.QuantityReserved = decimal.Max(lot.QuantityReserved.Sub(res.Quantity), decimal.Zero)
	lot.UpdatedAt = now
	if err := repos.Lots.UpdateQuantities(ctx, lot); err != nil {
		return err
	}
	res.Status = status
	res.Reason = reason
	res.UpdatedAt = now
	return repos.Reservations.UpdateStatus(ctx, res)
}

// ExpireDue vence las reservas activas cuyo plazo pasó y las de lotes ya vencidos.
// Corre un barrido a la vez (Locker); si otro está en curso devuelve ErrConflict.
func (m *ReservationManager) ExpireDue(ctx context.Context) (*dto.ExpireReservationsResponse, error) {
	release, err := m.locker.Obtain(ctx, expireLockKey, m.sweepTTL)
	if errors.Is(err, ports.ErrLockNotObtained) {
		return nil, fmt.Errorf("%w: hay un barrido de vencimientos en curso", domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			m.log.Warn().Err(err).Msg("liberar lock de barrido")
		}
	}()

	now := m.now()
	out := &dto.ExpireReservationsResponse{ReservationIDs: []string{}}
	touched := map[string]struct{}{}
	err = m.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		due, err := repos.Reservations.ListDueForUpdate(ctx, now, expireBatchSize)
		if err != nil {
			return err
		}
		onExpiredLots, err := repos.Reservations.ListActiveByExpiredLotsForUpdate(ctx, entity.CalendarDate(now), expireBatchSize)
		if err != nil {
			return err
		}
		seen := map[string]struct{}{}
		expire := func(list []*entity.Reservation, reason string) error {
			for _, r := range list {
				if _, ok := seen[r.ID]; ok {
					continue
				}
				seen[r.ID] = struct{}{}
				if err := m.releaseInTx(ctx, repos, r, entity.ReservationExpired, reason); err != nil {
					return err
				}
				out.ReservationIDs = append(out.ReservationIDs, r.ID)
				touched[r.ProductID] = struct{}{}
			}
			return nil
		}
		if err := expire(due, reasonReservationDue); err != nil {
			return err
		}
		return expire(onExpiredLots, reasonLotExpired)
	})
	if err != nil {
		return nil, err
	}
	out.Expired = len(out.ReservationIDs)

	products := make([]string, 0, len(touched))
	for id := range touched {
		products = append(products, id)
	}
	m.ledger.Invalidate(ctx, products...)
	if out.Expired > 0 {
		m.log.Info().Int("expired", out.Expired).Msg("reservas vencidas")
	}
	return out, nil
}

// Availability suma existencia, reservado y disponible del producto sobre todos sus lotes.
// La foto se sirve desde el cache si hay una vigente. La generación se lee antes que los lotes:
// si un Commit invalida mientras se calcula, la foto queda guardada bajo la generación vieja.
func (m *ReservationManager) Availability(ctx context.Context, productID string) (*dto.AvailabilityResponse, error) {
	gen, err := m.cache.Generation(ctx, productID)
	cacheOK := err == nil
	if err != nil {
		m.log.Warn().Err(err).Str("product_id", productID).Msg("leer generación de disponibilidad")
	} else if cached, ok, err := m.cache.Get(ctx, productID, gen); err != nil {
		m.log.Warn().Err(err).Str("product_id", productID).Msg("leer cache de disponibilidad")
	} else if ok {
		return cached, nil
	}

	product, err := m.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	lots, err := m.lots.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := buildAvailability(product, lots, m.now())

	// sin generación no se guarda: no hay forma de saber si la foto ya nació vieja
	if cacheOK {
		if err := m.cache.Set(ctx, productID, gen, out); err != nil {
			m.log.Warn().Err(err).Str("product_id", productID).Msg("guardar cache de disponibilidad")
		}
	}
	return out, nil
}

func buildAvailability(product *entity.Product, lots []*entity.Lot, now time.Time) *dto.AvailabilityResponse {
	out := &dto.AvailabilityResponse{
		ProductID: product.ID,
		OnHand:    decimal.Zero,
		Reserved:  decimal.Zero,
		MinStock:  product.MinStock,
		LotCount:  len(lots),
	}
	quantities := make([]decimal.Decimal, 0, len(lots))
	prices := make([]decimal.Decimal, 0, len(lots))
	var nearest *time.Time
	for _, lot := range lots {
		out.OnHand = out.OnHand.Add(lot.QuantityOnHand)
		out.Reserved = out.Reserved.Add(lot.QuantityReserved)
		quantities = append(quantities, lot.QuantityOnHand)
		prices = append(prices, lot.UnitPrice)
		if lot.QuantityOnHand.IsPositive() && !lot.IsExpired(now) {
			if nearest == nil || lot.ExpirationDate.Before(*nearest) {
				exp := lot.ExpirationDate
				nearest = &exp
			}
		}
	}
	out.Available = decimal.Max(out.OnHand.Sub(out.Reserved), decimal.Zero)
	_, out.AverageUnitCost = domaininv.WeightedLotCost(quantities, prices)
	if product.MinStock != nil {
		out.BelowMinimum = out.Available.LessThan(*product.MinStock)
	}
	if nearest != nil {
		out.NearestExpiration = nearest.Format(dto.DateLayout)
	}
	return out
}

// GetReservation obtiene una reserva por ID.
func (m *ReservationManager) GetReservation(ctx context.Context, id string) (*dto.ReservationResponse, error) {
	res, err := m.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
	}
	out := toReservationResponse(res)
	return &out, nil
}

// ListByDemand lista las reservas de una demanda, en cualquier estado.
func (m *ReservationManager) ListByDemand(ctx context.Context, demandRef string) ([]dto.ReservationResponse, error) {
	list, err := m.reservations.ListByDemand(ctx, demandRef)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResponse(r))
	}
	return out, nil
}
