package workbook

import (
	"strconv"
	"strings"
)

// Sheet and column names are the wire format of the exchanged workbooks and
// must match what the studio tooling produces.
const (
	SheetSerie          = "Serie"
	SheetTakes          = "Takes"
	SheetIntervenciones = "Intervenciones"

	colReferencia     = "Referencia"
	colNombreSerie    = "Nombre Serie"
	colNumeroCapitulo = "Nº CAPÍTULO"
	colTituloCapitulo = "Título Capítulo"

	colNumeroTake = "Numero Take"
	colTakeIn     = "TAKE IN"
	colTakeOut    = "TAKE OUT"

	colID            = "ID"
	colPersonaje     = "Personaje"
	colDialogo       = "Dialogo"
	colTCIn          = "TC IN"
	colTCOut         = "TC OUT"
	colCompleto      = "Completo"
	colCompletadoPor = "Completado Por"
	colCompletadoEn  = "Completado En"
)

// table is a parsed sheet: one map per data row, keyed by the header row.
// Cells beyond the header width are dropped; missing trailing cells read as
// empty strings.
type table []map[string]string

func newTable(rows [][]string) table {
	if len(rows) == 0 {
		return nil
	}
	headers := rows[0]
	out := make(table, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		empty := true
		for _, cell := range raw {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			if i < len(raw) {
				row[h] = raw[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

func cell(row map[string]string, col string) string {
	return strings.TrimSpace(row[col])
}

// intCell parses an integer cell, tolerating the float rendering some
// spreadsheet tools use for numeric columns ("3" and "3.0" both parse to 3).
func intCell(row map[string]string, col string) (int, bool) {
	v := cell(row, col)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
