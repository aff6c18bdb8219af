// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/nutrition/internal/infrastructure/config"
	gormModels "github.com/alchemorsel/nutrition/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/migrations"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// Connect opens the PostgreSQL database, configures the pool and applies
// schema migrations when enabled
func Connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger:                 gormModels.NewLogger(log, cfg.App.LogLevel, 0),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, closeOnFailure(db, fmt.Errorf("failed to connect to database: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, closeOnFailure(db, fmt.Errorf("failed to ping database: %w", err))
	}

	if err := registerReplicas(db, cfg, log); err != nil {
		return nil, closeOnFailure(db, err)
	}

	if cfg.Database.AutoMigrate {
		migrator, err := migrations.New(ctx, sqlDB, cfg.Database.Database, log)
		if err != nil {
			return nil, closeOnFailure(db, err)
		}
		defer migrator.Close()

		if err := migrator.Up(); err != nil {
			return nil, closeOnFailure(db, err)
		}
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	return db, nil
}

// closeOnFailure releases the pool of a connection that Connect will not return
func closeOnFailure(db *gorm.DB, err error) error {
	if db == nil {
		return err
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	return err
}

// registerReplicas routes reads to the configured replicas; writes and
// migrations stay on the primary
func registerReplicas(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if len(cfg.Database.ReadReplicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(cfg.Database.ReadReplicas))
	for i, host := range cfg.Database.ReadReplicas {
		replicas[i] = postgres.Open(cfg.ReplicaDSN(host))
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   loadBalancePolicy(cfg.Database.ReplicaPolicy),
	}).
		SetMaxOpenConns(cfg.Database.MaxOpenConns).
		SetMaxIdleConns(cfg.Database.MaxIdleConns).
		SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Use(resolver); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	log.Info("Read replicas configured",
		zap.Int("replica_count", len(replicas)),
		zap.String("load_balance_policy", cfg.Database.ReplicaPolicy),
	)

	return nil
}

func loadBalancePolicy(policy string) dbresolver.Policy {
	switch policy {
	case "round_robin":
		return dbresolver.RoundRobinPolicy()
	default:
		return dbresolver.RandomPolicy{}
	}
}
