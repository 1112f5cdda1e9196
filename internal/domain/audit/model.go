package audit

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entry is an append-only audit record, one row per mutating action on an
// intervention.
type Entry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Entidad   string `gorm:"not null;index:idx_auditoria_entidad" json:"entidad"`
	EntidadID uint   `gorm:"not null;index:idx_auditoria_entidad" json:"entidad_id"`
	UsuarioID uint   `gorm:"not null" json:"usuario_id"`
	Accion    string `gorm:"not null" json:"accion"`
	Payload   string `gorm:"type:text" json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Entry) TableName() string { return "auditoria" }

// Log writes an audit row. A failed write is logged and swallowed so that it
// never undoes the action it describes.
func Log(db *gorm.DB, log *zap.Logger, entidad string, entidadID, usuarioID uint, accion string, payload any) {
	var encoded string
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			encoded = string(raw)
		}
	}
	entry := Entry{
		Entidad:   entidad,
		EntidadID: entidadID,
		UsuarioID: usuarioID,
		Accion:    accion,
		Payload:   encoded,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Error("failed to write audit entry",
			zap.String("entidad", entidad),
			zap.Uint("entidad_id", entidadID),
			zap.String("accion", accion),
			zap.Error(err))
		return
	}
	log.Info("audit",
		zap.Uint("usuario_id", usuarioID),
		zap.String("accion", accion),
		zap.String("entidad", entidad),
		zap.Uint("entidad_id", entidadID))
}
