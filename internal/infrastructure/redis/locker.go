package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"

	"github.com/jhoicas/distribucion-api/internal/application/ports"
)

var _ ports.Locker = (*Locker)(nil)

// Locker lock distribuido con redislock: un solo barrido de vencimientos entre réplicas.
type Locker struct {
	client *redislock.Client
}

// NewLocker construye el locker sobre un cliente de redislock.
func NewLocker(client *redislock.Client) *Locker {
	return &Locker{client: client}
}

// Obtain intenta tomar key por ttl sin reintentos.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ports.ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// venció el ttl antes de terminar
			return nil
		}
		return err
	}, nil
}
