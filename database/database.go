package database

import (
	"errors"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/audit"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/ioconfig"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the PostgreSQL connection and migrates all domain models.
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate for every domain model. Split out so tests can
// reuse it against another driver.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.Usuario{},

		&catalog.Serie{},
		&catalog.Capitulo{},
		&catalog.Personaje{},
		&catalog.Take{},
		&catalog.Intervencion{},

		&audit.Entry{},
		&ioconfig.Config{},
	)
}
