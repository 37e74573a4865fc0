package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained el lock lo tiene otro proceso.
var ErrLockNotObtained = errors.New("lock no obtenido")

// Locker lock distribuido de corta duración (ej. un solo barrido de vencimientos a la vez
// entre réplicas). No reemplaza el bloqueo de filas de la base.
type Locker interface {
	// Obtain devuelve una función para liberar el lock, o ErrLockNotObtained.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// LocalLocker implementación en proceso, para una sola réplica.
type LocalLocker struct {
	held chan struct{}
}

// NewLocalLocker construye un locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(chan struct{}, 1)}
}

// Obtain no bloquea: si ya está tomado devuelve ErrLockNotObtained. key y ttl se ignoran.
func (l *LocalLocker) Obtain(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, error) {
	select {
	case l.held <- struct{}{}:
		return func(context.Context) error {
			<-l.held
			return nil
		}, nil
	default:
		return nil, ErrLockNotObtained
	}
}
