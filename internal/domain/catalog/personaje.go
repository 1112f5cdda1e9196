package catalog

import (
	"time"
)

type Personaje struct {
	ID uint `gorm:"primaryKey" json:"id"`

	NombrePersonaje string  `gorm:"not null;uniqueIndex:idx_personajes_nombre" json:"nombre_personaje"`
	ActorDoblaje    *string `json:"actor_doblaje,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Personaje) TableName() string { return "personajes" }
