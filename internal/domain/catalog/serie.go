package catalog

import (
	"time"
)

type Serie struct {
	ID uint `gorm:"primaryKey" json:"id"`

	NumeroReferencia string `gorm:"type:varchar(50);not null;uniqueIndex:idx_series_referencia" json:"numero_referencia"`
	NombreSerie      string `gorm:"not null" json:"nombre_serie"`

	Capitulos []Capitulo `gorm:"foreignKey:SerieID;constraint:OnDelete:CASCADE;" json:"capitulos,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Serie) TableName() string { return "series" }
