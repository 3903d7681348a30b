package database

import (
	"modelhub-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the postgres connection and runs migrations for the
// catalog tables.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Model{},
		&models.ModelParameter{},
		&models.ModelPricing{},
		&models.CreditRate{},
	); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}
