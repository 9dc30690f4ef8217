// Package services assembles the storage backends selected by configuration.
package services

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	pgRepo "github.com/fastygo/taskboard/repository/postgres"
)

// Registrar receives shutdown hooks for opened resources.
type Registrar interface {
	Register(name string, fn lifecycle.ShutdownFunc)
}

// Stores holds the repositories of the configured driver and the probe the
// monitor uses to check it.
type Stores struct {
	Driver string
	Users  repository.UserRepository
	Tasks  repository.TaskRepository
	Probe  monitor.Probe

	// Bolt is set only for the bolt driver.
	Bolt *bolt.DB
}

// OpenStores opens the backend named by cfg.Storage.Driver and registers its
// shutdown with hooks.
func OpenStores(ctx context.Context, cfg *config.Config, hooks Registrar, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Storage.Driver {
	case config.DriverBolt:
		db, err := boltdb.Open(cfg.Storage.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		hooks.Register("boltdb", func(context.Context) error { return db.Close() })
		return &Stores{
			Driver: config.DriverBolt,
			Users:  boltRepo.NewUserRepository(db),
			Tasks:  boltRepo.NewTaskRepository(db),
			Probe:  monitor.BoltProbe(db),
			Bolt:   db,
		}, nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		hooks.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, logger)
			return nil
		})
		return &Stores{
			Driver: config.DriverPostgres,
			Users:  pgRepo.NewUserRepository(pool),
			Tasks:  pgRepo.NewTaskRepository(pool),
			Probe:  monitor.PostgresProbe(pool),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
