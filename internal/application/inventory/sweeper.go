package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain"
)

// RunExpirySweeper llama ExpireDue cada interval hasta que ctx se cancele.
// Si otra réplica tiene el lock del barrido, esa vuelta se salta.
func (m *ReservationManager) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	m.log.Info().Dur("interval", interval).Msg("barrido de reservas vencidas iniciado")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("barrido de reservas vencidas detenido")
			return
		case <-ticker.C:
			_, err := m.ExpireDue(ctx)
			switch {
			case errors.Is(err, domain.ErrConflict):
				m.log.Debug().Msg("barrido en curso en otra réplica")
			case err != nil && ctx.Err() == nil:
				m.log.Error().Err(err).Msg("barrido de reservas vencidas")
			}
		}
	}
}
