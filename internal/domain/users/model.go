package users

import (
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleDirector   = "director"
	RoleTecnico    = "tecnico"
	RoleSupervisor = "supervisor"
)

type Usuario struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Nombre       string `gorm:"not null;uniqueIndex:idx_usuarios_nombre" json:"nombre"`
	PasswordHash string `gorm:"not null" json:"-"`
	Rol          string `gorm:"type:varchar(20);not null;default:'tecnico'" json:"rol"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Usuario) TableName() string { return "usuarios" }

func ValidRole(rol string) bool {
	switch rol {
	case RoleAdmin, RoleDirector, RoleTecnico, RoleSupervisor:
		return true
	}
	return false
}
