package ports

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
)

// AvailabilityCache cache de la foto de disponibilidad por producto.
//
// Cada producto tiene una generación que Invalidate incrementa después de cada Commit que cambió
// lotes o reservas de ese producto. Las fotos se guardan y leen bajo una generación: quien lee
// Generation antes de consultar los lotes y guarda con ese valor nunca pisa una invalidación
// posterior, porque la foto queda bajo una generación que ya nadie consulta.
// Get devuelve (nil, false, nil) si no hay entrada.
type AvailabilityCache interface {
	Generation(ctx context.Context, productID string) (int64, error)
	Get(ctx context.Context, productID string, gen int64) (*dto.AvailabilityResponse, bool, error)
	Set(ctx context.Context, productID string, gen int64, snapshot *dto.AvailabilityResponse) error
	Invalidate(ctx context.Context, productIDs ...string) error
}

// NopAvailabilityCache no guarda nada; se usa cuando no hay Redis configurado.
type NopAvailabilityCache struct{}

func (NopAvailabilityCache) Generation(context.Context, string) (int64, error) { return 0, nil }
func (NopAvailabilityCache) Get(context.Context, string, int64) (*dto.AvailabilityResponse, bool, error) {
	return nil, false, nil
}
func (NopAvailabilityCache) Set(context.Context, string, int64, *dto.AvailabilityResponse) error {
	return nil
}
func (NopAvailabilityCache) Invalidate(context.Context, ...string) error { return nil }
