package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"swachhsetu/internal/model"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Report{},
		&model.GarbageSchedule{},
		&model.ScheduleSubscription{},
		&model.Notification{},
	}
}

// Reset drops all service tables. Missing tables are logged and skipped.
func Reset(db *gorm.DB, log zerolog.Logger) {
	tables := Models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			log.Warn().Err(err).Msg("drop table failed (may not exist)")
		}
	}
	log.Info().Msg("tables dropped")
}

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
