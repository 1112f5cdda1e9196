package catalog

import (
	"time"
)

type Take struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CapituloID uint   `gorm:"not null;index:idx_takes_capitulo" json:"capitulo_id"`
	NumeroTake int    `gorm:"not null" json:"numero_take"`
	TCIn       string `gorm:"column:tc_in" json:"tc_in"`
	TCOut      string `gorm:"column:tc_out" json:"tc_out"`

	Intervenciones []Intervencion `gorm:"foreignKey:TakeID;constraint:OnDelete:CASCADE;" json:"intervenciones,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Take) TableName() string { return "takes" }
