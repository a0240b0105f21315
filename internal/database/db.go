package database

import (
	"fmt"
	"time"

	"restoran-pos/internal/config"
	"restoran-pos/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	zap.L().Info("database connected, migration complete")
	return nil
}

// Migrate creates or updates every table used by the service.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.DiningSession{}, "Tags", &models.SessionTag{}); err != nil {
		return fmt.Errorf("session_tags join table: %w", err)
	}

	err := db.AutoMigrate(
		&models.Merchant{},
		&models.Location{},
		&models.User{},
		&models.Invitation{},
		&models.DiningTable{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Tag{},
		&models.DiningSession{},
		&models.Seat{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.SessionTag{},
		&models.SessionEvent{},
		&models.WaitlistEntry{},
		&models.Reservation{},
		&models.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// at most one open session per table
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_sessions_open_table
		ON sessions (table_id) WHERE status = 'open' AND table_id IS NOT NULL`).Error; err != nil {
		zap.L().Warn("open table index could not be created", zap.Error(err))
	}
	return nil
}
