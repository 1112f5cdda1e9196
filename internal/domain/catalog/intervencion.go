package catalog

import (
	"time"
)

// Estado values for an intervention. "completado" and the legacy Completo
// flag move together; "omitido" requires a non-empty EstadoNota.
const (
	EstadoPendiente  = "pendiente"
	EstadoCompletado = "completado"
	EstadoOmitido    = "omitido"
)

type Intervencion struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TakeID      uint `gorm:"not null;index:idx_intervenciones_take" json:"take_id"`
	PersonajeID uint `gorm:"not null;index:idx_intervenciones_personaje" json:"personaje_id"`

	Dialogo string `gorm:"type:text" json:"dialogo"`

	Completo   bool   `gorm:"not null;default:false" json:"completo"`
	Estado     string `gorm:"type:varchar(20);not null;default:'pendiente'" json:"estado"`
	EstadoNota string `json:"estado_nota,omitempty"`

	NecesitaEfectos bool   `gorm:"not null;default:false" json:"necesita_efectos"`
	EfectosNota     string `json:"efectos_nota,omitempty"`
	EfectosOrigen   string `json:"efectos_origen,omitempty"`
	EfectosMarca    string `json:"efectos_marca,omitempty"`

	TCIn  string `gorm:"column:tc_in" json:"tc_in"`
	TCOut string `gorm:"column:tc_out" json:"tc_out"`

	// OrdenEnTake is dense and zero-based within a take, assigned at import.
	OrdenEnTake int `gorm:"not null;default:0" json:"orden_en_take"`

	CompletadoPorID *uint      `gorm:"column:completado_por_id" json:"completado_por_id,omitempty"`
	CompletadoEn    *time.Time `gorm:"column:completado_en" json:"completado_en,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Intervencion) TableName() string { return "intervenciones" }

func ValidEstado(estado string) bool {
	switch estado {
	case EstadoPendiente, EstadoCompletado, EstadoOmitido:
		return true
	}
	return false
}
