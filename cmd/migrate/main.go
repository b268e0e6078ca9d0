package main

import (
	"context"
	"time"

	"github.com/jhoicas/relief-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/relief-ledger/pkg/config"
	"github.com/jhoicas/relief-ledger/pkg/logger"
)

// migrate aplica las migraciones pendientes y termina. Útil en despliegues donde el
// esquema se actualiza antes de levantar la API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Strs("applied", applied).Int("count", len(applied)).Msg("migraciones al día")
}
