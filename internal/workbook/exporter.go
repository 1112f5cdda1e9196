package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound reports a chapter or serie that does not exist, as opposed to
// a failure assembling or writing the workbook.
var ErrNotFound = errors.New("not found")

type Exporter struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewExporter(db *gorm.DB, log *zap.Logger) *Exporter {
	return &Exporter{db: db, log: log}
}

type ExportSummary struct {
	ChaptersWritten int      `json:"chapters_written"`
	Failures        []string `json:"failures,omitempty"`
}

func (s *ExportSummary) Message() string {
	return fmt.Sprintf("Exportación completada: %d capítulos escritos, %d fallos",
		s.ChaptersWritten, len(s.Failures))
}

// intervencionRow is the flattened export row: the intervention joined with
// its character name and, when completed, the completing user's name.
type intervencionRow struct {
	catalog.Intervencion
	NombrePersonaje     string
	CompletadoPorNombre *string
}

// ExportChapter serializes one chapter as an in-memory workbook. The
// suggested filename combines the sanitized serie reference with the
// zero-padded chapter number.
func (ex *Exporter) ExportChapter(capituloID uint) ([]byte, string, error) {
	f, filename, err := ex.chapterWorkbook(capituloID)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), filename, nil
}

// ExportSeries writes one workbook per chapter found across the given series
// into dir. Per-chapter failures are logged and skipped; the call fails only
// when chapters existed and none could be written.
func (ex *Exporter) ExportSeries(serieIDs []uint, dir string) (*ExportSummary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var capitulos []catalog.Capitulo
	if err := ex.db.Where("serie_id IN ?", serieIDs).
		Order("serie_id, numero_capitulo").
		Find(&capitulos).Error; err != nil {
		return nil, err
	}

	summary := &ExportSummary{}
	for _, capitulo := range capitulos {
		if err := ex.exportChapterToDir(capitulo.ID, dir); err != nil {
			ex.log.Error("chapter export failed",
				zap.Uint("capitulo_id", capitulo.ID),
				zap.Error(err))
			summary.Failures = append(summary.Failures, fmt.Sprintf("capítulo %d: %v", capitulo.ID, err))
			continue
		}
		summary.ChaptersWritten++
	}

	if len(capitulos) > 0 && summary.ChaptersWritten == 0 {
		return summary, fmt.Errorf("no chapters could be exported to %s", dir)
	}
	ex.log.Info("series export done",
		zap.String("dir", dir),
		zap.Int("written", summary.ChaptersWritten),
		zap.Int("failed", len(summary.Failures)))
	return summary, nil
}

func (ex *Exporter) exportChapterToDir(capituloID uint, dir string) error {
	f, filename, err := ex.chapterWorkbook(capituloID)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filepath.Join(dir, filename))
}

func (ex *Exporter) chapterWorkbook(capituloID uint) (*excelize.File, string, error) {
	var capitulo catalog.Capitulo
	err := ex.db.First(&capitulo, capituloID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("%w: capítulo %d", ErrNotFound, capituloID)
	}
	if err != nil {
		return nil, "", err
	}
	var serie catalog.Serie
	if err := ex.db.First(&serie, capitulo.SerieID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: serie %d", ErrNotFound, capitulo.SerieID)
		}
		return nil, "", err
	}

	var takes []catalog.Take
	if err := ex.db.Where("capitulo_id = ?", capitulo.ID).
		Order("numero_take").
		Find(&takes).Error; err != nil {
		return nil, "", err
	}

	takeNumero := make(map[uint]int, len(takes))
	takeIDs := make([]uint, 0, len(takes))
	for _, t := range takes {
		takeNumero[t.ID] = t.NumeroTake
		takeIDs = append(takeIDs, t.ID)
	}

	var rows []intervencionRow
	if len(takeIDs) > 0 {
		err = ex.db.Table("intervenciones").
			Select("intervenciones.*, personajes.nombre_personaje, usuarios.nombre AS completado_por_nombre").
			Joins("JOIN personajes ON personajes.id = intervenciones.personaje_id").
			Joins("LEFT JOIN usuarios ON usuarios.id = intervenciones.completado_por_id").
			Where("intervenciones.take_id IN ?", takeIDs).
			Order("intervenciones.take_id, intervenciones.orden_en_take, intervenciones.id").
			Scan(&rows).Error
		if err != nil {
			return nil, "", err
		}
	}

	f, err := buildWorkbook(serie, capitulo, takes, rows, takeNumero)
	if err != nil {
		return nil, "", err
	}
	return f, exportFilename(serie.NumeroReferencia, capitulo.NumeroCapitulo), nil
}

func buildWorkbook(serie catalog.Serie, capitulo catalog.Capitulo, takes []catalog.Take, rows []intervencionRow, takeNumero map[uint]int) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSerie); err != nil {
		f.Close()
		return nil, err
	}
	serieHeader := []any{colReferencia, colNombreSerie, colNumeroCapitulo, colTituloCapitulo}
	serieRow := []any{serie.NumeroReferencia, serie.NombreSerie, capitulo.NumeroCapitulo, capitulo.TituloCapitulo}
	if err := writeSheet(f, SheetSerie, serieHeader, [][]any{serieRow}); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SheetTakes); err != nil {
		f.Close()
		return nil, err
	}
	takeRows := make([][]any, 0, len(takes))
	for _, t := range takes {
		takeRows = append(takeRows, []any{t.NumeroTake, t.TCIn, t.TCOut})
	}
	if err := writeSheet(f, SheetTakes, []any{colNumeroTake, colTakeIn, colTakeOut}, takeRows); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SheetIntervenciones); err != nil {
		f.Close()
		return nil, err
	}
	intervencionHeader := []any{
		colID, colPersonaje, colDialogo, colTCIn, colTCOut,
		colCompleto, colCompletadoPor, colCompletadoEn, colNumeroTake,
	}
	intervencionRows := make([][]any, 0, len(rows))
	for _, r := range rows {
		var completadoPor string
		if r.CompletadoPorNombre != nil {
			completadoPor = *r.CompletadoPorNombre
		}
		var completadoEn string
		if r.CompletadoEn != nil {
			completadoEn = r.CompletadoEn.Format(time.RFC3339)
		}
		intervencionRows = append(intervencionRows, []any{
			r.OrdenEnTake + 1,
			r.NombrePersonaje,
			r.Dialogo,
			r.TCIn,
			r.TCOut,
			r.Completo,
			completadoPor,
			completadoEn,
			takeNumero[r.TakeID],
		})
	}
	if err := writeSheet(f, SheetIntervenciones, intervencionHeader, intervencionRows); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		target, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, target, &row); err != nil {
			return err
		}
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func exportFilename(referencia string, numeroCapitulo int) string {
	ref := unsafeFilenameChars.ReplaceAllString(referencia, "_")
	if ref == "" {
		ref = "serie"
	}
	return fmt.Sprintf("%s_Cap%03d.xlsx", ref, numeroCapitulo)
}
