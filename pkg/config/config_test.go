package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	// vacías cuentan como no definidas
	for _, k := range []string{"STORE_DRIVER", "DB_MAX_CONNS", "REDIS_ADDR", "APP_ENV", "HTTP_PORT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("DB_MIGRATE", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AVAILABILITY_CACHE_TTL_SECONDS", "15")
	t.Setenv("RESERVATION_SWEEP_LOCK_SECONDS", "abc")
	t.Setenv("RESERVATION_SWEEP_INTERVAL_SECONDS", "120")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 7, cfg.DB.MaxConns)
	assert.True(t, cfg.DB.Migrate)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 15*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, time.Minute, cfg.Reservations.SweepLockTTL, "valor inválido vuelve al defecto")
	assert.Equal(t, 2*time.Minute, cfg.Reservations.SweepInterval)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestValidate_SecretoEnProduccion(t *testing.T) {
	cfg := &Config{
		App:   AppConfig{Env: "production"},
		Store: StoreConfig{Driver: StorePostgres},
		DB:    DBConfig{MaxConns: 1},
	}
	assert.Error(t, cfg.Validate())
	cfg.JWT.Secret = "s"
	assert.NoError(t, cfg.Validate())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "distribucion", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/distribucion?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
