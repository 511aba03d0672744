package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tunehost/internal/orm"
	"github.com/desertthunder/tunehost/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and migrates the library database it names.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	logger := shared.WithLogger(r.logger, "config", configPath)

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		logger.Info("config file not found, creating from template")
		if err := shared.CreateConfigFile(configPath); err != nil {
			logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			logger.Info("config file created")
			if config, err = shared.LoadConfig(configPath); err != nil {
				logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	if cmd.IsSet("database") {
		config.Database.URL = cmd.String("database")
	}

	target, err := orm.ParseURL(config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}
	if target.Memory {
		logger.Warn("in-memory database is discarded when setup exits", "url", config.Database.URL)
	}

	logger.Info("initializing database", "url", config.Database.URL, "driver", target.Driver)

	db, err := shared.OpenDatabase(ctx, target.Driver, target.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(ctx, db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		logger.Info("running database migrations")
		if err := shared.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	applied, err := shared.AppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to count applied migrations: %w", err)
	}

	logger.Infof("setup complete for database: %v", config.Database.URL)
	r.writePlain("%s\n", r.styles.OK("✓ Database ready"))
	r.writePlain("URL: %s\n", config.Database.URL)
	r.writePlain("Applied migrations: %d\n", applied)
	return nil
}
