package ioadmin

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/ioconfig"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/scheduler"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/workbook"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Importer  *workbook.Importer
	Exporter  *workbook.Exporter
	Scheduler *scheduler.Scheduler

	UploadDir        string
	DefaultImportDir string
	DefaultExportDir string
}

func NewHandler(db *gorm.DB, log *zap.Logger, importer *workbook.Importer, exporter *workbook.Exporter, sched *scheduler.Scheduler, uploadDir, defaultImportDir, defaultExportDir string) *Handler {
	return &Handler{
		DB:               db,
		Log:              log,
		Importer:         importer,
		Exporter:         exporter,
		Scheduler:        sched,
		UploadDir:        uploadDir,
		DefaultImportDir: defaultImportDir,
		DefaultExportDir: defaultExportDir,
	}
}

// POST /api/import/excel — multipart upload, saved under a random temp name,
// imported, then removed.
func (h *Handler) ImportExcel(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta archivo ('file')."})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato inválido (solo .xlsx)."})
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno durante la importación."})
		return
	}
	tempPath := filepath.Join(h.UploadDir, uuid.NewString()+".xlsx")
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno durante la importación."})
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			h.Log.Warn("could not remove temp upload", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	h.Log.Info("import requested",
		zap.Uint("user_id", c.GetUint("user_id")),
		zap.String("filename", file.Filename))

	result, err := h.Importer.ImportChapter(tempPath)
	if err != nil {
		if errors.Is(err, workbook.ErrWorkbook) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message(), "result": result})
}

// GET /api/capitulos/:id/export — stream one chapter as a workbook download.
func (h *Handler) ExportChapter(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	data, filename, err := h.Exporter.ExportChapter(uint(id))
	if err != nil {
		if errors.Is(err, workbook.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("chapter export failed", zap.Uint64("capitulo_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno durante la exportación."})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GET /api/admin/io/config
func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := ioconfig.Load(h.DB, h.DefaultImportDir, h.DefaultExportDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al obtener configuración de I/O."})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// POST /api/admin/io/config — persist the config and re-register the cron
// jobs from the new schedule strings.
func (h *Handler) SaveConfig(c *gin.Context) {
	var req SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan datos de configuración."})
		return
	}

	cfg, err := ioconfig.Load(h.DB, h.DefaultImportDir, h.DefaultExportDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al guardar configuración de I/O."})
		return
	}

	if req.ImportPath != nil {
		cfg.ImportPath = strings.TrimSpace(*req.ImportPath)
	}
	if req.ExportPath != nil {
		cfg.ExportPath = strings.TrimSpace(*req.ExportPath)
	}
	if req.ImportSchedule != nil {
		s := strings.TrimSpace(*req.ImportSchedule)
		if _, _, err := scheduler.ParseSchedule(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.ImportSchedule = s
	}
	if req.ExportSchedule != nil {
		s := strings.TrimSpace(*req.ExportSchedule)
		if _, _, err := scheduler.ParseSchedule(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.ExportSchedule = s
	}
	if req.ExportSeriesIDs != nil {
		selector, err := parseSeriesSelector(req.ExportSeriesIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.ExportSeriesIDs = selector
	}

	// Register the jobs first so a schedule the cron runner rejects never
	// reaches the database, where it would break the next startup.
	if err := h.Scheduler.Apply(cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ioconfig.Save(h.DB, &cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al guardar configuración de I/O."})
		return
	}

	h.Log.Info("io config saved",
		zap.Uint("user_id", c.GetUint("user_id")),
		zap.String("import_schedule", cfg.ImportSchedule),
		zap.String("export_schedule", cfg.ExportSchedule))
	c.JSON(http.StatusOK, gin.H{"message": "Configuración guardada. Programación actualizada.", "config": cfg})
}

// POST /api/admin/export/now
func (h *Handler) ExportNow(c *gin.Context) {
	var req ExportNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan datos para exportación."})
		return
	}

	cfg, err := ioconfig.Load(h.DB, h.DefaultImportDir, h.DefaultExportDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno durante la exportación."})
		return
	}

	exportPath := strings.TrimSpace(req.ExportPathOverride)
	if exportPath == "" {
		exportPath = cfg.ExportPath
	}
	if exportPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No hay ruta de exportación configurada."})
		return
	}

	selector := cfg.ExportSeriesIDs
	if req.SeriesIDsToExport != nil {
		selector, err = parseSeriesSelector(req.SeriesIDsToExport)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	ids, err := h.resolveSeriesSelector(selector)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No hay series seleccionadas para exportar."})
		return
	}

	summary, err := h.Exporter.ExportSeries(ids, exportPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": summary.Message(), "exported_to_path": exportPath, "summary": summary})
}

// POST /api/admin/import/now
func (h *Handler) ImportNow(c *gin.Context) {
	var req ImportNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan datos para importación."})
		return
	}

	cfg, err := ioconfig.Load(h.DB, h.DefaultImportDir, h.DefaultExportDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno durante la importación."})
		return
	}

	importPath := strings.TrimSpace(req.ImportPathOverride)
	if importPath == "" {
		importPath = cfg.ImportPath
	}
	if importPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No hay ruta de importación configurada."})
		return
	}

	imported, failed, err := h.Importer.ImportDirectory(importPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Importación completada: %d archivos importados, %d fallos.", imported, failed),
		"imported": imported,
		"failed":   failed,
	})
}

// parseSeriesSelector normalizes the "all"-or-id-list union the frontend
// sends into the persisted selector string.
func parseSeriesSelector(v any) (string, error) {
	switch val := v.(type) {
	case string:
		if val == ioconfig.ExportSeriesAll {
			return ioconfig.ExportSeriesAll, nil
		}
	case []any:
		ids := make([]uint, 0, len(val))
		for _, item := range val {
			f, ok := item.(float64)
			if !ok || f != float64(uint(f)) {
				break
			}
			ids = append(ids, uint(f))
		}
		if len(ids) == len(val) {
			return ioconfig.EncodeSeriesIDs(ids), nil
		}
	}
	return "", errors.New("Formato de selección de series inválido. Debe ser 'all' o una lista de IDs enteros.")
}

func (h *Handler) resolveSeriesSelector(selector string) ([]uint, error) {
	if selector == "" || selector == ioconfig.ExportSeriesAll {
		var ids []uint
		if err := h.DB.Model(&catalog.Serie{}).Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	}
	cfg := ioconfig.Config{ExportSeriesIDs: selector}
	ids, _, err := cfg.SeriesIDs()
	return ids, err
}
