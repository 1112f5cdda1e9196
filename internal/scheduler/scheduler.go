package scheduler

import (
	"fmt"
	"strings"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/ioconfig"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/workbook"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var weekdays = map[string]string{
	"mon": "1", "tue": "2", "wed": "3", "thu": "4", "fri": "5", "sat": "6", "sun": "0",
	"monday": "1", "tuesday": "2", "wednesday": "3", "thursday": "4",
	"friday": "5", "saturday": "6", "sunday": "0",
	// spanish day names used by the admin frontend
	"lunes": "1", "martes": "2", "miercoles": "3", "jueves": "4",
	"viernes": "5", "sabado": "6", "domingo": "0",
}

// ParseSchedule translates a persisted schedule string into a cron spec.
// ok is false for "manual" (no job). Supported forms: "hourly",
// "daily@HH:MM", "weekly@<day>@HH:MM".
func ParseSchedule(s string) (spec string, ok bool, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == ioconfig.ScheduleManual:
		return "", false, nil
	case s == "hourly":
		return "0 * * * *", true, nil
	case strings.HasPrefix(s, "daily@"):
		hour, minute, err := parseClock(strings.TrimPrefix(s, "daily@"))
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s %s * * *", minute, hour), true, nil
	case strings.HasPrefix(s, "weekly@"):
		parts := strings.Split(s, "@")
		if len(parts) != 3 {
			return "", false, fmt.Errorf("invalid weekly schedule %q, want weekly@<day>@HH:MM", s)
		}
		dow, found := weekdays[parts[1]]
		if !found {
			return "", false, fmt.Errorf("unknown weekday %q in schedule %q", parts[1], s)
		}
		hour, minute, err := parseClock(parts[2])
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s %s * * %s", minute, hour, dow), true, nil
	default:
		return "", false, fmt.Errorf("unrecognized schedule %q", s)
	}
}

func parseClock(clock string) (hour, minute string, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid time %q, want HH:MM", clock)
	}
	hour, err = clockField(parts[0], 23)
	if err != nil {
		return "", "", fmt.Errorf("invalid time %q: %v", clock, err)
	}
	minute, err = clockField(parts[1], 59)
	if err != nil {
		return "", "", fmt.Errorf("invalid time %q: %v", clock, err)
	}
	return hour, minute, nil
}

// clockField accepts only one or two digits within [0, max].
func clockField(s string, max int) (string, error) {
	if s == "" || len(s) > 2 {
		return "", fmt.Errorf("field %q out of range", s)
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("field %q is not numeric", s)
		}
		n = n*10 + int(r-'0')
	}
	if n > max {
		return "", fmt.Errorf("field %q above maximum %d", s, max)
	}
	return s, nil
}

// Scheduler owns the cron runner for the batch import/export jobs. All
// collaborators are injected; Apply re-registers jobs from a saved config.
type Scheduler struct {
	db       *gorm.DB
	importer *workbook.Importer
	exporter *workbook.Exporter
	log      *zap.Logger

	cron     *cron.Cron
	importID cron.EntryID
	exportID cron.EntryID
}

func New(db *gorm.DB, importer *workbook.Importer, exporter *workbook.Exporter, log *zap.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		importer: importer,
		exporter: exporter,
		log:      log,
		cron:     cron.New(),
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() { s.cron.Stop() }

// Apply replaces the registered import/export jobs with the ones described
// by cfg. A "manual" schedule simply leaves that job unregistered.
func (s *Scheduler) Apply(cfg ioconfig.Config) error {
	if s.importID != 0 {
		s.cron.Remove(s.importID)
		s.importID = 0
	}
	if s.exportID != 0 {
		s.cron.Remove(s.exportID)
		s.exportID = 0
	}

	if spec, ok, err := ParseSchedule(cfg.ImportSchedule); err != nil {
		return fmt.Errorf("import schedule: %w", err)
	} else if ok {
		id, err := s.cron.AddFunc(spec, func() { s.runImport(cfg.ImportPath) })
		if err != nil {
			return fmt.Errorf("import schedule: %w", err)
		}
		s.importID = id
		s.log.Info("scheduled import job", zap.String("schedule", cfg.ImportSchedule), zap.String("spec", spec))
	}

	if spec, ok, err := ParseSchedule(cfg.ExportSchedule); err != nil {
		return fmt.Errorf("export schedule: %w", err)
	} else if ok {
		id, err := s.cron.AddFunc(spec, func() { s.runExport(cfg) })
		if err != nil {
			return fmt.Errorf("export schedule: %w", err)
		}
		s.exportID = id
		s.log.Info("scheduled export job", zap.String("schedule", cfg.ExportSchedule), zap.String("spec", spec))
	}

	return nil
}

func (s *Scheduler) runImport(dir string) {
	if dir == "" {
		s.log.Error("scheduled import skipped: no import path configured")
		return
	}
	imported, failed, err := s.importer.ImportDirectory(dir)
	if err != nil {
		s.log.Error("scheduled import failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	s.log.Info("scheduled import done",
		zap.String("dir", dir),
		zap.Int("imported", imported),
		zap.Int("failed", failed))
}

func (s *Scheduler) runExport(cfg ioconfig.Config) {
	if cfg.ExportPath == "" {
		s.log.Error("scheduled export skipped: no export path configured")
		return
	}
	ids, err := s.resolveSeriesIDs(cfg)
	if err != nil {
		s.log.Error("scheduled export failed resolving series", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		s.log.Warn("scheduled export: no series selected")
		return
	}
	summary, err := s.exporter.ExportSeries(ids, cfg.ExportPath)
	if err != nil {
		s.log.Error("scheduled export failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled export done", zap.Int("chapters", summary.ChaptersWritten))
}

func (s *Scheduler) resolveSeriesIDs(cfg ioconfig.Config) ([]uint, error) {
	ids, all, err := cfg.SeriesIDs()
	if err != nil {
		return nil, err
	}
	if !all {
		return ids, nil
	}
	var allIDs []uint
	if err := s.db.Model(&catalog.Serie{}).Pluck("id", &allIDs).Error; err != nil {
		return nil, err
	}
	return allIDs, nil
}
