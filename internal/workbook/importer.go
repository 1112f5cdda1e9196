package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrWorkbook marks structural import failures: unreadable files, missing
// sheets and an unparseable series identity. These abort before any write.
var ErrWorkbook = errors.New("invalid workbook")

type Importer struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewImporter(db *gorm.DB, log *zap.Logger) *Importer {
	return &Importer{db: db, log: log}
}

type ImportResult struct {
	SerieID        uint     `json:"serie_id"`
	CapituloID     uint     `json:"capitulo_id"`
	Takes          int      `json:"takes"`
	Intervenciones int      `json:"intervenciones"`
	Warnings       []string `json:"warnings,omitempty"`
}

func (r *ImportResult) Message() string {
	return fmt.Sprintf("Importación completada: serie %d, capítulo %d, %d takes, %d intervenciones",
		r.SerieID, r.CapituloID, r.Takes, r.Intervenciones)
}

// ImportChapter parses the workbook at path and reconciles it into the
// database in a single transaction. Rows failing individual validation are
// skipped with a warning; structural failures abort with no partial state.
func (im *Importer) ImportChapter(path string) (*ImportResult, error) {
	im.log.Info("starting workbook import", zap.String("path", path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %q: %v", ErrWorkbook, path, err)
	}
	defer f.Close()

	sheets := make(map[string]table, 3)
	for _, name := range []string{SheetSerie, SheetTakes, SheetIntervenciones} {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: missing required sheet %q", ErrWorkbook, name)
		}
		sheets[name] = newTable(rows)
	}

	serieRef, serieName, numeroCapitulo, err := serieIdentity(sheets[SheetSerie])
	if err != nil {
		return nil, err
	}
	im.log.Info("workbook identity",
		zap.String("referencia", serieRef),
		zap.String("nombre_serie", serieName),
		zap.Int("numero_capitulo", numeroCapitulo))

	result := &ImportResult{}
	err = im.db.Transaction(func(tx *gorm.DB) error {
		serieID, err := findOrCreateSerie(tx, serieRef, serieName)
		if err != nil {
			return err
		}
		capituloID, err := resetOrCreateCapitulo(tx, serieID, numeroCapitulo)
		if err != nil {
			return err
		}

		personajes, err := resolvePersonajes(tx, characterNames(sheets[SheetIntervenciones]))
		if err != nil {
			return err
		}

		takeIDs, takeWarnings, err := insertTakes(tx, capituloID, sheets[SheetTakes])
		if err != nil {
			return err
		}
		intervenciones, intWarnings, err := buildIntervenciones(sheets[SheetIntervenciones], takeIDs, personajes)
		if err != nil {
			return err
		}
		if len(intervenciones) > 0 {
			if err := tx.Create(&intervenciones).Error; err != nil {
				return err
			}
		}

		result.SerieID = serieID
		result.CapituloID = capituloID
		result.Takes = len(takeIDs)
		result.Intervenciones = len(intervenciones)
		result.Warnings = append(takeWarnings, intWarnings...)
		return nil
	})
	if err != nil {
		im.log.Error("workbook import failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	for _, w := range result.Warnings {
		im.log.Warn("import row skipped", zap.String("path", path), zap.String("reason", w))
	}
	im.log.Info("workbook import done",
		zap.Uint("serie_id", result.SerieID),
		zap.Uint("capitulo_id", result.CapituloID),
		zap.Int("takes", result.Takes),
		zap.Int("intervenciones", result.Intervenciones))
	return result, nil
}

// ImportDirectory imports every .xlsx file found in dir. Per-file failures
// are logged and do not abort the remaining files.
func (im *Importer) ImportDirectory(dir string) (imported, failed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xlsx") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := im.ImportChapter(path); err != nil {
			im.log.Error("scheduled import of file failed", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		imported++
	}
	return imported, failed, nil
}

func serieIdentity(serie table) (ref, name string, numero int, err error) {
	if len(serie) == 0 {
		return "", "", 0, fmt.Errorf("%w: sheet %q has no data rows", ErrWorkbook, SheetSerie)
	}
	row := serie[0]

	ref = cell(row, colReferencia)
	if ref == "" {
		return "", "", 0, fmt.Errorf("%w: missing %q value in sheet %q", ErrWorkbook, colReferencia, SheetSerie)
	}
	name = cell(row, colNombreSerie)
	if name == "" {
		return "", "", 0, fmt.Errorf("%w: missing %q value in sheet %q", ErrWorkbook, colNombreSerie, SheetSerie)
	}
	numero, ok := intCell(row, colNumeroCapitulo)
	if !ok {
		return "", "", 0, fmt.Errorf("%w: %q must be an integer, got %q", ErrWorkbook, colNumeroCapitulo, cell(row, colNumeroCapitulo))
	}
	return ref, name, numero, nil
}

// findOrCreateSerie resolves a serie by its reference code. The stored name
// is not updated on a match.
func findOrCreateSerie(tx *gorm.DB, ref, name string) (uint, error) {
	var serie catalog.Serie
	err := tx.Where("numero_referencia = ?", ref).First(&serie).Error
	if err == nil {
		return serie.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	serie = catalog.Serie{NumeroReferencia: ref, NombreSerie: name}
	if err := tx.Create(&serie).Error; err != nil {
		return 0, err
	}
	return serie.ID, nil
}

// resetOrCreateCapitulo resolves the chapter by (serie, numero). A re-import
// wipes the chapter clean: interventions first, then takes, in FK-safe order.
func resetOrCreateCapitulo(tx *gorm.DB, serieID uint, numero int) (uint, error) {
	var capitulo catalog.Capitulo
	err := tx.Where("serie_id = ? AND numero_capitulo = ?", serieID, numero).First(&capitulo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		capitulo = catalog.Capitulo{
			SerieID:        serieID,
			NumeroCapitulo: numero,
			TituloCapitulo: fmt.Sprintf("Capítulo %d", numero),
		}
		if err := tx.Create(&capitulo).Error; err != nil {
			return 0, err
		}
		return capitulo.ID, nil
	}
	if err != nil {
		return 0, err
	}

	takeIDs := tx.Model(&catalog.Take{}).Select("id").Where("capitulo_id = ?", capitulo.ID)
	if err := tx.Where("take_id IN (?)", takeIDs).Delete(&catalog.Intervencion{}).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("capitulo_id = ?", capitulo.ID).Delete(&catalog.Take{}).Error; err != nil {
		return 0, err
	}
	return capitulo.ID, nil
}

func characterNames(intervenciones table) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range intervenciones {
		name := cell(row, colPersonaje)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// resolvePersonajes bulk-fetches existing characters by name and inserts the
// remainder individually, returning one merged name→id map.
func resolvePersonajes(tx *gorm.DB, names []string) (map[string]uint, error) {
	ids := make(map[string]uint, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	var existing []catalog.Personaje
	if err := tx.Where("nombre_personaje IN ?", names).Find(&existing).Error; err != nil {
		return nil, err
	}
	for _, p := range existing {
		ids[p.NombrePersonaje] = p.ID
	}

	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		p := catalog.Personaje{NombrePersonaje: name}
		if err := tx.Create(&p).Error; err != nil {
			return nil, err
		}
		ids[name] = p.ID
	}
	return ids, nil
}

// insertTakes creates the chapter's takes and returns the sheet
// take-number → row-id map used to resolve intervention references.
func insertTakes(tx *gorm.DB, capituloID uint, takes table) (map[int]uint, []string, error) {
	ids := make(map[int]uint, len(takes))
	var warnings []string
	for i, row := range takes {
		numero, ok := intCell(row, colNumeroTake)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("sheet %q row %d: missing or non-numeric %q", SheetTakes, i+2, colNumeroTake))
			continue
		}
		if _, dup := ids[numero]; dup {
			warnings = append(warnings, fmt.Sprintf("sheet %q row %d: duplicate %q %d, keeping the first row", SheetTakes, i+2, colNumeroTake, numero))
			continue
		}
		take := catalog.Take{
			CapituloID: capituloID,
			NumeroTake: numero,
			TCIn:       cell(row, colTakeIn),
			TCOut:      cell(row, colTakeOut),
		}
		if err := tx.Create(&take).Error; err != nil {
			return nil, nil, err
		}
		ids[numero] = take.ID
	}
	return ids, warnings, nil
}

// buildIntervenciones validates the intervention rows and assigns the dense
// zero-based per-take order in source-row order. Invalid rows are skipped.
func buildIntervenciones(rows table, takeIDs map[int]uint, personajes map[string]uint) ([]catalog.Intervencion, []string, error) {
	var out []catalog.Intervencion
	var warnings []string
	ordenPorTake := make(map[uint]int, len(takeIDs))

	for i, row := range rows {
		numeroTake, ok := intCell(row, colNumeroTake)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("sheet %q row %d: missing or non-numeric %q", SheetIntervenciones, i+2, colNumeroTake))
			continue
		}
		takeID, ok := takeIDs[numeroTake]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("sheet %q row %d: take %d not present in sheet %q", SheetIntervenciones, i+2, numeroTake, SheetTakes))
			continue
		}
		nombre := cell(row, colPersonaje)
		if nombre == "" {
			warnings = append(warnings, fmt.Sprintf("sheet %q row %d: empty %q", SheetIntervenciones, i+2, colPersonaje))
			continue
		}
		personajeID, ok := personajes[nombre]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("sheet %q row %d: unresolvable character %q", SheetIntervenciones, i+2, nombre))
			continue
		}

		orden := ordenPorTake[takeID]
		ordenPorTake[takeID] = orden + 1

		out = append(out, catalog.Intervencion{
			TakeID:      takeID,
			PersonajeID: personajeID,
			Dialogo:     cell(row, colDialogo),
			Completo:    false,
			Estado:      catalog.EstadoPendiente,
			TCIn:        cell(row, colTCIn),
			TCOut:       cell(row, colTCOut),
			OrdenEnTake: orden,
		})
	}
	return out, warnings, nil
}
