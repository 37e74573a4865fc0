package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityKey(t *testing.T) {
	assert.Equal(t, "disponibilidad:vac-01:0", availabilityKey("vac-01", 0))
	assert.Equal(t, "disponibilidad:vac-01:12", availabilityKey("vac-01", 12))
	assert.Equal(t, "disponibilidad:gen:vac-01", generationKey("vac-01"))
}

func TestAvailabilityKey_CadaGeneracionEsOtraEntrada(t *testing.T) {
	assert.NotEqual(t, availabilityKey("vac-01", 3), availabilityKey("vac-01", 4))
}

func TestNewAvailabilityCache_TTLPorDefecto(t *testing.T) {
	c := NewAvailabilityCache(nil, 0)
	assert.Equal(t, 30*time.Second, c.ttl)
	assert.Greater(t, generationTTL, c.ttl)
}

func TestInvalidate_SinProductosNoTocaRedis(t *testing.T) {
	c := NewAvailabilityCache(nil, time.Second)
	assert.NoError(t, c.Invalidate(context.Background()))
}
