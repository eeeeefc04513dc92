package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/config"
	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/mongodb"
	"github.com/rahim112008/ovinmanager/internal/repository/sqlite"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

// Set bundles one repository per table over a shared store.
type Set struct {
	Store        store.Store
	Users        *Users
	Breeders     *Breeders
	Prices       *Prices
	Sheep        *Scoped[models.Sheep]
	Production   *Scoped[models.ProductionRecord]
	Health       *Scoped[models.HealthRecord]
	Reproduction *Scoped[models.ReproductionRecord]
	Nutrition    *Scoped[models.NutritionRecord]
}

// NewSet wires every repository to s.
func NewSet(s store.Store) *Set {
	return &Set{
		Store:        s,
		Users:        NewUsers(s),
		Breeders:     NewBreeders(s),
		Prices:       NewPrices(s),
		Sheep:        NewScoped[models.Sheep](s, store.Sheep),
		Production:   NewScoped[models.ProductionRecord](s, store.Production),
		Health:       NewScoped[models.HealthRecord](s, store.Health),
		Reproduction: NewScoped[models.ReproductionRecord](s, store.Reproduction),
		Nutrition:    NewScoped[models.NutritionRecord](s, store.Nutrition),
	}
}

// OpenStore opens the driver selected in the configuration.
func OpenStore(ctx context.Context, cfg config.StorageConfig, mongoCfg config.MongoDBConfig, logger *zap.Logger) (store.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case config.DriverSQLite, "":
		s, err := sqlite.Open(ctx, cfg.SQLitePath, logger.Named("store.sqlite"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongoDB:
		r, err := mongodb.NewMongoDBRepository(ctx, mongoCfg.URI, mongoCfg.DBName, logger.Named("store.mongodb"))
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", models.ErrStorageUnavailable, cfg.Driver)
	}
}
