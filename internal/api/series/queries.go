package series

import (
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/catalog"

	"gorm.io/gorm"
)

func capitulosQuery(db *gorm.DB, serieID uint) *gorm.DB {
	return db.Model(&catalog.Capitulo{}).
		Where("serie_id = ?", serieID).
		Order("numero_capitulo")
}

// resumenRows aggregates per-character completion counts for every character
// with pending interventions in the serie, most work remaining first.
func resumenRows(db *gorm.DB, serieID uint) ([]ResumenRow, error) {
	type aggRow struct {
		PersonajeID     uint
		NombrePersonaje string
		Total           int
		Completas       int
	}
	var rows []aggRow
	err := db.Table("personajes p").
		Select(`p.id AS personaje_id,
			p.nombre_personaje,
			COUNT(i.id) AS total,
			SUM(CASE WHEN i.completo THEN 1 ELSE 0 END) AS completas`).
		Joins("JOIN intervenciones i ON i.personaje_id = p.id").
		Joins("JOIN takes t ON t.id = i.take_id").
		Joins("JOIN capitulos c ON c.id = t.capitulo_id").
		Where("c.serie_id = ?", serieID).
		Group("p.id, p.nombre_personaje").
		Having("SUM(CASE WHEN i.completo THEN 0 ELSE 1 END) > 0").
		Order("SUM(CASE WHEN i.completo THEN 0 ELSE 1 END) DESC, p.nombre_personaje").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]ResumenRow, 0, len(rows))
	for _, r := range rows {
		var pct float64
		if r.Total > 0 {
			pct = float64(r.Completas) / float64(r.Total) * 100
		}
		out = append(out, ResumenRow{
			PersonajeID:          r.PersonajeID,
			NombrePersonaje:      r.NombrePersonaje,
			Restantes:            r.Total - r.Completas,
			PorcentajeCompletado: pct,
		})
	}
	return out, nil
}
