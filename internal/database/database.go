package database

import (
	"fmt"
	"time"

	"github.com/estatelink/backend/internal/config"
	"github.com/estatelink/backend/internal/database/migrations"
	"github.com/estatelink/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB initializes the database connection with configuration
func InitDB(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dbConfig.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdle)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return db, nil
}

// Migrate runs GORM auto-migration for all models. Versioned schema changes
// live under migrations/; auto-migration covers columns added between
// releases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserProfile{},
		&models.Ambassador{},
		&models.Lead{},
		&models.Developer{},
		&models.Deal{},
		&models.LeadNote{},
		&models.LeadTask{},
		&models.Attachment{},
	)
}
