package database

import (
	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/model"
)

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
