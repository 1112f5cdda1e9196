package ioconfig

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	ScheduleManual = "manual"

	// ExportSeriesAll selects every serie for the scheduled export.
	ExportSeriesAll = "all"
)

// Config is the single persisted IO configuration row. Schedule strings are
// "manual", "hourly", "daily@HH:MM" or "weekly@<day>@HH:MM".
type Config struct {
	ID uint `gorm:"primaryKey" json:"-"`

	ImportPath     string `json:"import_path"`
	ImportSchedule string `gorm:"default:'manual'" json:"import_schedule"`
	ExportPath     string `json:"export_path"`
	ExportSchedule string `gorm:"default:'manual'" json:"export_schedule"`

	// ExportSeriesIDs is "all" or a JSON array of serie ids.
	ExportSeriesIDs string `gorm:"default:'all'" json:"export_series_ids"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Config) TableName() string { return "io_config" }

// Load returns the stored configuration, falling back to the provided
// defaults when no row exists yet.
func Load(db *gorm.DB, defaultImportDir, defaultExportDir string) (Config, error) {
	var cfg Config
	err := db.Order("id").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Config{
			ImportPath:      defaultImportDir,
			ImportSchedule:  ScheduleManual,
			ExportPath:      defaultExportDir,
			ExportSchedule:  ScheduleManual,
			ExportSeriesIDs: ExportSeriesAll,
		}, nil
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save upserts the single configuration row.
func Save(db *gorm.DB, cfg *Config) error {
	var existing Config
	err := db.Order("id").First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(cfg).Error
	}
	if err != nil {
		return err
	}
	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	return db.Save(cfg).Error
}

// SeriesIDs decodes ExportSeriesIDs. ok is false when the selector is "all".
func (c Config) SeriesIDs() (ids []uint, all bool, err error) {
	if c.ExportSeriesIDs == "" || c.ExportSeriesIDs == ExportSeriesAll {
		return nil, true, nil
	}
	if err := json.Unmarshal([]byte(c.ExportSeriesIDs), &ids); err != nil {
		return nil, false, err
	}
	return ids, false, nil
}

// EncodeSeriesIDs builds the stored selector from an explicit id list.
func EncodeSeriesIDs(ids []uint) string {
	raw, err := json.Marshal(ids)
	if err != nil {
		return ExportSeriesAll
	}
	return string(raw)
}
