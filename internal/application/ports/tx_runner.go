package ports

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products     repository.ProductRepository
	Lots         repository.LotRepository
	Reservations repository.ReservationRepository
	Orders       repository.PurchaseOrderRepository
	Events       repository.ReceivingEventRepository
}

// TxRunner ejecuta fn dentro de una transacción (read committed o más estricta) con repositorios
// atados a ella. Si fn devuelve error, o hay panic, se hace Rollback; si no, Commit.
// Nada de lo hecho por fn queda aplicado parcialmente.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
