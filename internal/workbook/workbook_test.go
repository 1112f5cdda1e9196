package workbook

import (
	"path/filepath"
	"testing"

	"github.com/StablePeru/Fullstack-AsRecorded/database"

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

// writeTestWorkbook builds an xlsx file with the given sheets (name → rows,
// header row included) and returns its path.
func writeTestWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// chapterSheets is the canonical valid fixture: serie REF01 "Mi Serie",
// chapter 3, two takes, three interventions.
func chapterSheets() map[string][][]any {
	return map[string][][]any{
		SheetSerie: {
			{colReferencia, colNombreSerie, colNumeroCapitulo, colTituloCapitulo},
			{"REF01", "Mi Serie", 3, "El tercero"},
		},
		SheetTakes: {
			{colNumeroTake, colTakeIn, colTakeOut},
			{1, "00:00:01:00", "00:00:10:00"},
			{2, "00:00:11:00", "00:00:20:00"},
		},
		SheetIntervenciones: {
			{colID, colPersonaje, colDialogo, colTCIn, colTCOut, colNumeroTake},
			{1, "MARTA", "Hola.", "00:00:01:05", "00:00:02:00", 1},
			{2, "JON", "Adiós.", "00:00:02:10", "00:00:03:00", 1},
			{3, "MARTA", "Sigo aquí.", "00:00:12:00", "00:00:13:00", 2},
		},
	}
}

func newTestImporter(db *gorm.DB) *Importer { return NewImporter(db, zap.NewNop()) }

func newTestExporter(db *gorm.DB) *Exporter { return NewExporter(db, zap.NewNop()) }
