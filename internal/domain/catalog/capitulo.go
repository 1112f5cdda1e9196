package catalog

import (
	"time"
)

type Capitulo struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SerieID        uint   `gorm:"not null;uniqueIndex:idx_capitulos_serie_numero,priority:1" json:"serie_id"`
	NumeroCapitulo int    `gorm:"not null;uniqueIndex:idx_capitulos_serie_numero,priority:2" json:"numero_capitulo"`
	TituloCapitulo string `json:"titulo_capitulo"`

	Takes []Take `gorm:"foreignKey:CapituloID;constraint:OnDelete:CASCADE;" json:"takes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Capitulo) TableName() string { return "capitulos" }
