// Package memory implementa los repositorios y el TxRunner en memoria.
// Una transacción toma el lock global del store durante todo fn (serializable) y, si fn falla,
// restaura la copia tomada al comenzar. Se usa en tests y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

type state struct {
	products     map[string]entity.Product
	lots         map[string]entity.Lot
	reservations map[string]entity.Reservation
	orders       map[string]entity.PurchaseOrder // solo cabecera; las líneas van en lines
	lines        map[string]entity.OrderLine
	events       []entity.ReceivingEvent
}

func newState() *state {
	return &state{
		products:     map[string]entity.Product{},
		lots:         map[string]entity.Lot{},
		reservations: map[string]entity.Reservation{},
		orders:       map[string]entity.PurchaseOrder{},
		lines:        map[string]entity.OrderLine{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	c.events = append([]entity.ReceivingEvent(nil), s.events...)
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repositorios transaccionales. Mientras corre, ninguna otra operación
// (dentro o fuera de tx) accede al store. Dentro de fn solo deben usarse los repos recibidos.
func (s *Store) Run(ctx context.Context, fn func(repos ports.TxRepos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()
	return fn(s.repos(true))
}

// Repos devuelve los repositorios fuera de tx; cada llamada toma el lock por su cuenta.
func (s *Store) Repos() ports.TxRepos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) ports.TxRepos {
	v := view{s: s, inTx: inTx}
	return ports.TxRepos{
		Products:     &ProductRepository{v},
		Lots:         &LotRepository{v},
		Reservations: &ReservationRepository{v},
		Orders:       &PurchaseOrderRepository{v},
		Events:       &ReceivingEventRepository{v},
	}
}

// view acceso al estado; fuera de tx cada método toma y suelta el lock.
type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v view) state() *state {
	return v.s.st
}

var _ ports.TxRunner = (*Store)(nil)
