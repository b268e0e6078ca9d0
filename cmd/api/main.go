package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"

	"github.com/jhoicas/relief-ledger/internal/application/inventory"
	"github.com/jhoicas/relief-ledger/internal/application/lending"
	"github.com/jhoicas/relief-ledger/internal/application/ownership"
	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/application/usecase"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
	"github.com/jhoicas/relief-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/relief-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/relief-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/relief-ledger/internal/interfaces/http"
	"github.com/jhoicas/relief-ledger/pkg/config"
	"github.com/jhoicas/relief-ledger/pkg/logger"
)

// stores repositorios de lectura fuera de transacción más el runner transaccional.
type stores struct {
	tx         ports.TxRunner
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
	categories repository.CategoryRepository
	placements repository.PlacementRepository
	lends      repository.LendRepository
	owners     repository.OwnershipRepository
	identity   repository.IdentityLookup
	users      repository.UserRegistry
}

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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var st stores
	var idem ports.IdempotencyGuard = ports.NoopIdempotency{}
	switch cfg.App.StoreDriver {
	case "memory":
		mem := memory.NewStore()
		st = stores{
			tx:         mem,
			warehouses: mem.Warehouses(),
			items:      mem.Items(),
			categories: mem.Categories(),
			placements: mem.Placements(),
			lends:      mem.Lends(),
			owners:     mem.Owners(),
			identity:   mem,
			users:      mem,
		}
		idem = memory.NewIdempotencyGuard(24 * time.Hour)
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if _, err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		users := postgres.NewUserRepository(pool)
		st = stores{
			tx: postgres.NewTxRunner(pool, postgres.TxOptions{
				LockTimeout: cfg.DB.LockTimeout(),
				MaxRetries:  cfg.DB.TxMaxRetries,
			}, log),
			warehouses: postgres.NewWarehouseRepository(pool),
			items:      postgres.NewItemRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			placements: postgres.NewPlacementRepository(pool),
			lends:      postgres.NewLendRepository(pool),
			owners:     postgres.NewOwnershipRepository(pool),
			identity:   users,
			users:      users,
		}
	}

	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = infraredis.NewIdempotencyGuard(rdb, 0)
	}

	policy, err := lending.NewActivationPolicy(cfg.Lending.ActivationExpr)
	if err != nil {
		log.Fatal().Err(err).Str("expr", cfg.Lending.ActivationExpr).Msg("LEND_ACTIVATION_EXPR inválida")
	}

	lendUC := lending.NewLendUseCase(st.tx, st.warehouses, st.items, st.lends, st.owners, policy, idem)
	transferUC := inventory.NewTransferUseCase(st.tx, st.warehouses, st.items, st.placements, st.owners)
	ownershipUC := ownership.NewOwnershipUseCase(st.tx, st.warehouses, st.owners, st.identity)
	warehouseUC := usecase.NewWarehouseUseCase(st.tx, st.warehouses, st.owners)
	catalogUC := usecase.NewCatalogUseCase(st.items, st.categories)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		JSONEncoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Relief Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LendUC:      lendUC,
		TransferUC:  transferUC,
		OwnershipUC: ownershipUC,
		WarehouseUC: warehouseUC,
		CatalogUC:   catalogUC,
		Users:       st.users,
		JWTSecret:   cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
