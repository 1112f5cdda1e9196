package ioadmin

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/StablePeru/Fullstack-AsRecorded/database"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/ioconfig"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/scheduler"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/workbook"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	importer := workbook.NewImporter(db, log)
	exporter := workbook.NewExporter(db, log)
	sched := scheduler.New(db, importer, exporter, log)
	h := NewHandler(db, log, importer, exporter, sched,
		t.TempDir(), "/imports", "/exports")

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", uint(1)) })
	r.GET("/admin/io/config", h.GetConfig)
	r.POST("/admin/io/config", h.SaveConfig)
	r.POST("/admin/export/now", h.ExportNow)
	r.POST("/admin/import/now", h.ImportNow)
	r.POST("/import/excel", h.ImportExcel)
	r.GET("/capitulos/:id/export", h.ExportChapter)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetConfigReturnsDefaultsBeforeFirstSave(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/admin/io/config", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cfg ioconfig.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "/imports", cfg.ImportPath)
	assert.Equal(t, "/exports", cfg.ExportPath)
	assert.Equal(t, ioconfig.ScheduleManual, cfg.ImportSchedule)
	assert.Equal(t, ioconfig.ExportSeriesAll, cfg.ExportSeriesIDs)
}

func TestSaveConfigPersistsAndValidates(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := postJSON(r, "/admin/io/config", gin.H{
		"import_schedule":   "daily@02:00",
		"export_schedule":   "weekly@monday@06:00",
		"export_path":       "/mnt/out",
		"export_series_ids": []uint{1, 2},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := ioconfig.Load(db, "/imports", "/exports")
	require.NoError(t, err)
	assert.Equal(t, "daily@02:00", stored.ImportSchedule)
	assert.Equal(t, "/mnt/out", stored.ExportPath)
	assert.Equal(t, "[1,2]", stored.ExportSeriesIDs)
	// Untouched fields keep their previous values.
	assert.Equal(t, "/imports", stored.ImportPath)

	w = postJSON(r, "/admin/io/config", gin.H{"import_schedule": "cada rato"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A clock outside 00-23/00-59 is rejected before anything is stored.
	w = postJSON(r, "/admin/io/config", gin.H{"import_schedule": "daily@99:99"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	stored, err = ioconfig.Load(db, "/imports", "/exports")
	require.NoError(t, err)
	assert.Equal(t, "daily@02:00", stored.ImportSchedule)

	w = postJSON(r, "/admin/io/config", gin.H{"export_series_ids": "some"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/admin/io/config", gin.H{"export_series_ids": "all"})
	require.Equal(t, http.StatusOK, w.Code)
	stored, err = ioconfig.Load(db, "/imports", "/exports")
	require.NoError(t, err)
	assert.Equal(t, ioconfig.ExportSeriesAll, stored.ExportSeriesIDs)
}

func TestImportNowRequiresConfiguredPath(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	// The default /imports path does not exist, so the run itself fails,
	// but an explicitly empty configured path is rejected up front.
	require.NoError(t, ioconfig.Save(db, &ioconfig.Config{ImportSchedule: "manual", ExportSchedule: "manual"}))
	w := postJSON(r, "/admin/import/now", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportNowRunsOnDirectory(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	dir := t.TempDir()
	writeChapterWorkbook(t, filepath.Join(dir, "ref01_cap3.xlsx"))

	w := postJSON(r, "/admin/import/now", gin.H{"import_path_override": dir})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Imported int `json:"imported"`
		Failed   int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Imported)
	assert.Zero(t, resp.Failed)
}

func TestExportNowWritesWorkbooks(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	src := t.TempDir()
	writeChapterWorkbook(t, filepath.Join(src, "ref01_cap3.xlsx"))
	w := postJSON(r, "/admin/import/now", gin.H{"import_path_override": src})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := t.TempDir()
	w = postJSON(r, "/admin/export/now", gin.H{"export_path_override": out, "series_ids_to_export": "all"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	matches, err := filepath.Glob(filepath.Join(out, "*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestImportExcelUpload(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	writeChapterWorkbook(t, path)

	w := uploadFile(t, r, path, "capitulo.xlsx")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Result workbook.ImportResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Result.Takes)
	assert.Equal(t, 1, resp.Result.Intervenciones)
}

func TestImportExcelRejectsWrongExtension(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	writeChapterWorkbook(t, path)

	w := uploadFile(t, r, path, "capitulo.csv")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportChapterDownloadNotFound(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/capitulos/42/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// writeChapterWorkbook writes a minimal valid chapter workbook: serie REF01,
// chapter 3, one take, one intervention.
func writeChapterWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Serie"))
	rows := map[string][][]any{
		"Serie": {
			{"Referencia", "Nombre Serie", "Nº CAPÍTULO", "Título Capítulo"},
			{"REF01", "Mi Serie", 3, "El tercero"},
		},
		"Takes": {
			{"Numero Take", "TAKE IN", "TAKE OUT"},
			{1, "00:00:01:00", "00:00:10:00"},
		},
		"Intervenciones": {
			{"ID", "Personaje", "Dialogo", "TC IN", "TC OUT", "Numero Take"},
			{1, "MARTA", "Hola.", "00:00:01:05", "00:00:02:00", 1},
		},
	}
	for _, name := range []string{"Takes", "Intervenciones"} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	for name, sheetRows := range rows {
		for i, row := range sheetRows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func uploadFile(t *testing.T, r *gin.Engine, path, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/excel", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
