package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"volleyball-live-system/config"
	"volleyball-live-system/logger"
	"volleyball-live-system/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, envDir)
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return errors.New("database.url is required")
		}
		if err := logger.Initialize(logger.Config{Debug: cfg.Debug}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := openDB(cfg.Database)
		if err != nil {
			return err
		}
		if err := models.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database schema is up to date")
		return nil
	},
}

func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}
