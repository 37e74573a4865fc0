package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/distribucion-api/internal/application/inventory"
	"github.com/jhoicas/distribucion-api/internal/application/ports"
	"github.com/jhoicas/distribucion-api/internal/application/purchasing"
	"github.com/jhoicas/distribucion-api/internal/application/receiving"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/distribucion-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/distribucion-api/pkg/config"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Persistencia: PostgreSQL o memoria (desarrollo y pruebas)
	var (
		txRunner ports.TxRunner
		repos    ports.TxRepos
	)
	switch cfg.Store.Driver {
	case config.StoreMemory:
		store := memory.NewStore()
		txRunner, repos = store, store.Repos()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	// Redis opcional: cache de disponibilidad y lock del barrido entre réplicas
	var (
		cache  ports.AvailabilityCache = ports.NopAvailabilityCache{}
		locker ports.Locker            = ports.NewLocalLocker()
	)
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		cache = infraredis.NewAvailabilityCache(client, cfg.Redis.CacheTTL)
		locker = infraredis.NewLocker(redislock.New(client))
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin cache de disponibilidad, lock del barrido local")
	}

	ledger := inventory.NewLotLedger(txRunner, repos.Lots, repos.Products, cache, log.Component("lot-ledger"))
	reservationManager := inventory.NewReservationManager(
		txRunner, ledger, repos.Reservations, repos.Lots, repos.Products,
		cache, locker, cfg.Reservations.SweepLockTTL, log.Component("reservations"),
	)
	orderUC := purchasing.NewOrderUseCase(txRunner, repos.Orders, log.Component("purchase-orders"))
	processor := receiving.NewProcessor(txRunner, ledger, repos.Orders, repos.Events, log.Component("receiving"))
	productCatalog := inventory.NewProductCatalog(repos.Products)

	go reservationManager.RunExpirySweeper(ctx, cfg.Reservations.SweepInterval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Distribución API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Products:     productCatalog,
		Ledger:       ledger,
		Reservations: reservationManager,
		Orders:       orderUC,
		Receiving:    processor,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log.Zerolog(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
