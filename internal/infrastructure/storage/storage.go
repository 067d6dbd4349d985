// Package storage elige el adaptador de persistencia según DB_DRIVER y entrega los repositorios listos.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/merch-stock/internal/application/inventory"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
	"github.com/jhoicas/merch-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/merch-stock/internal/infrastructure/sqlite"
	"github.com/jhoicas/merch-stock/pkg/config"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// Store repositorios y runner de transacciones de un mismo backend.
type Store struct {
	Driver    string
	Products  repository.ProductRepository
	Movements repository.MovementRepository
	Tx        inventory.TxRunner
	close     func() error
}

// Close libera las conexiones.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open conecta al backend configurado y, si cfg.Migrate, aplica las migraciones embebidas.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, log)
	}
	return nil, fmt.Errorf("storage: driver no soportado %q", cfg.Driver)
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Store, error) {
	if cfg.Migrate {
		version, err := postgres.RunMigrations(cfg.ConnectionString())
		if err != nil {
			return nil, err
		}
		log.Info().Uint("version", version).Str("driver", cfg.Driver).Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		Driver:    config.DriverPostgres,
		Products:  postgres.NewProductRepository(pool),
		Movements: postgres.NewMovementRepository(pool),
		Tx:        postgres.NewTxRunner(pool),
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openSQLite(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Store, error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	// Una base en memoria siempre arranca vacía: se migra aunque DB_MIGRATE=false.
	if cfg.Migrate || cfg.SQLitePath == sqlite.MemoryPath || cfg.SQLitePath == "" {
		version, err := sqlite.RunMigrations(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Uint("version", version).Str("driver", cfg.Driver).Str("path", cfg.SQLitePath).Msg("migraciones aplicadas")
	}
	return &Store{
		Driver:    config.DriverSQLite,
		Products:  sqlite.NewProductRepository(db),
		Movements: sqlite.NewMovementRepository(db),
		Tx:        sqlite.NewTxRunner(db),
		close:     db.Close,
	}, nil
}
