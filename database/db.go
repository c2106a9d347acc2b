package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkpulse/models"
)

const maxRetries = 5

// Connect opens the postgres connection and runs migrations. The database
// may still be starting up alongside the app, so the dial is retried.
func Connect(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max", maxRetries).Msg("database connect failed, retrying")
		time.Sleep(3 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.ShortLink{}, &models.ClickEvent{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info().Msg("database connected and migrated")
	return db, nil
}
