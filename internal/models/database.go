package models

import (
	"fmt"

	"github.com/giglink/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate creates the schema plus the indexes AutoMigrate's struct tags
// cannot express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&MusicianProfile{},
		&Instrument{},
		&Genre{},
		&PortfolioItem{},
		&Booking{},
		&Payment{},
		&Subscription{},
		&Review{},
		&Notification{},
	)
	if err != nil {
		return err
	}
	return createPaymentIndexes(db)
}

// createPaymentIndexes adds the partial unique index allowing one live
// payment per booking. Failed attempts hold no claim, so a booking can be
// re-initiated after a declined or failed payment. MySQL has no partial
// indexes; there the service-level check is the only guard.
func createPaymentIndexes(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		return nil
	}
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_booking_live ON payments(booking_id) WHERE status IN ('pending', 'successful')",
	).Error
}

func GetDB() *gorm.DB {
	return DB
}

var defaultInstruments = []string{
	"Vocals", "Guitar", "Bass Guitar", "Drums", "Keyboard", "Piano",
	"Violin", "Cello", "Saxophone", "Trumpet", "Trombone", "Flute",
	"DJ Deck", "Percussion",
}

var defaultGenres = []string{
	"Afrobeats", "Highlife", "Jazz", "Gospel", "Hip Hop", "R&B",
	"Pop", "Rock", "Classical", "Reggae", "Soul", "Fuji", "Juju",
}

// SeedReferenceData creates the instrument and genre reference rows if
// they do not exist yet.
func SeedReferenceData() error {
	for _, name := range defaultInstruments {
		var count int64
		DB.Model(&Instrument{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := DB.Create(&Instrument{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	for _, name := range defaultGenres {
		var count int64
		DB.Model(&Genre{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := DB.Create(&Genre{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
