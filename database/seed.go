package database

import (
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed inserts the default users when the usuarios table is empty. Existing
// rows are never touched.
func Seed(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&users.Usuario{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		nombre   string
		password string
		rol      string
	}{
		{"admin", "admin123", users.RoleAdmin},
		{"director_ana", "director123", users.RoleDirector},
		{"tecnico_juan", "tecnico123", users.RoleTecnico},
		{"supervisor_pepe", "super123", users.RoleSupervisor},
	}

	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u := users.Usuario{Nombre: d.nombre, PasswordHash: string(hash), Rol: d.rol}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		log.Info("seeded user", zap.String("nombre", d.nombre), zap.String("rol", d.rol))
	}
	return nil
}
