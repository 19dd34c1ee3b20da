package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/correction-service/internal/config"
	"github.com/SAP-F-2025/correction-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables the correction pipeline reads and writes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.TestCategory{},
		&models.Question{},
		&models.Test{},
		&models.Contact{},
		&models.Candidate{},
		&models.Result{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
