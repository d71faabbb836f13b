package psql

import (
	"context"
	"fmt"

	"hevruta/hevruta/config"
	"hevruta/hevruta/sources/psql/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate models (automatic schema creation)
	err = db.WithContext(ctx).
		AutoMigrate(
			&models.User{},
			&models.Thread{},
			&models.Message{},
			&models.Feedback{},
		)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return &Database{DB: db}, nil
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
