package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
)

const (
	availabilityKeyPrefix = "disponibilidad:"
	generationKeyPrefix   = "disponibilidad:gen:"
	// la generación vive más que cualquier foto; si expira vuelve a 0 y las fotos viejas ya vencieron
	generationTTL = 24 * time.Hour
)

var _ ports.AvailabilityCache = (*AvailabilityCache)(nil)

// AvailabilityCache guarda la foto de disponibilidad por producto y generación como JSON con TTL.
// Invalidate hace INCR del contador del producto: las fotos guardadas con la generación anterior
// quedan huérfanas y vencen solas.
type AvailabilityCache struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewAvailabilityCache construye el cache. ttl <= 0 usa 30 segundos.
func NewAvailabilityCache(client goredis.Cmdable, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(productID string, gen int64) string {
	return availabilityKeyPrefix + productID + ":" + strconv.FormatInt(gen, 10)
}

func generationKey(productID string) string {
	return generationKeyPrefix + productID
}

// Generation devuelve la generación actual del producto; 0 si nunca se invalidó.
func (c *AvailabilityCache) Generation(ctx context.Context, productID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(productID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get availability generation: %w", err)
	}
	return gen, nil
}

// Get devuelve (nil, false, nil) si no hay entrada para esa generación.
func (c *AvailabilityCache) Get(ctx context.Context, productID string, gen int64) (*dto.AvailabilityResponse, bool, error) {
	raw, err := c.client.Get(ctx, availabilityKey(productID, gen)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get availability: %w", err)
	}
	var out dto.AvailabilityResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode availability: %w", err)
	}
	return &out, true, nil
}

// Set guarda la foto bajo la generación leída antes de calcularla, con el TTL configurado.
func (c *AvailabilityCache) Set(ctx context.Context, productID string, gen int64, snapshot *dto.AvailabilityResponse) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	if err := c.client.Set(ctx, availabilityKey(productID, gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set availability: %w", err)
	}
	return nil
}

// Invalidate avanza la generación de cada producto en un solo pipeline.
func (c *AvailabilityCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range productIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis incr availability generation: %w", err)
	}
	return nil
}
