package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"keycab-backend/config"
	"keycab-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs AutoMigrate for every table. Exposed so tests can set up
// an in-memory database with the same schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Room{},
		&model.Faculty{},
		&model.Credential{},
		&model.ScheduleWindow{},
		&model.Term{},
		&model.Transaction{},
		&model.Device{},
		&model.ManualCommand{},
		&model.PushSubscription{},
	)
	if err != nil {
		return err
	}

	// At most one open session may exist per (credential, room, term).
	// The partial unique index holds the invariant even when two
	// concurrent grants both pass the close check before either insert
	// commits; the storage layer rejects the second open row.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uidx_open_session
		ON transactions (credential_id, room_id, academic_year, semester)
		WHERE close_time IS NULL AND access_granted`).Error
}
