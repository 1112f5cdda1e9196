package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Log: log}
}

type UserDTO struct {
	ID     uint   `json:"id"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
}

var sortableColumns = map[string]string{
	"id":     "id",
	"nombre": "nombre",
	"rol":    "rol",
}

// GET /api/users?search=&sortBy=&sortOrder=
func (h *Handler) ListUsers(c *gin.Context) {
	column, ok := sortableColumns[c.DefaultQuery("sortBy", "nombre")]
	if !ok {
		column = "nombre"
	}
	order := column
	if strings.EqualFold(c.DefaultQuery("sortOrder", "ASC"), "DESC") {
		order += " DESC"
	}

	q := h.DB.Model(&users.Usuario{}).Order(order)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Where("nombre LIKE ?", "%"+search+"%")
	}

	var list []users.Usuario
	if err := q.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al listar usuarios."})
		return
	}

	out := make([]UserDTO, 0, len(list))
	for _, u := range list {
		out = append(out, UserDTO{ID: u.ID, Nombre: u.Nombre, Rol: u.Rol})
	}
	c.JSON(http.StatusOK, out)
}

// PUT /api/users/:id/role
func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var req struct {
		Rol string `json:"rol" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta el campo 'rol' en el cuerpo JSON."})
		return
	}
	rol := strings.ToLower(strings.TrimSpace(req.Rol))
	if !users.ValidRole(rol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rol '" + rol + "' inválido."})
		return
	}

	var user users.Usuario
	dbErr := h.DB.First(&user, uint(id)).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado."})
		return
	}
	if dbErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al actualizar rol de usuario."})
		return
	}

	// Refuse to demote the last remaining admin.
	if user.Rol == users.RoleAdmin && rol != users.RoleAdmin {
		var admins int64
		if err := h.DB.Model(&users.Usuario{}).Where("rol = ?", users.RoleAdmin).Count(&admins).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al actualizar rol de usuario."})
			return
		}
		if admins <= 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "No se puede quitar el rol al último administrador."})
			return
		}
	}

	user.Rol = rol
	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno al actualizar rol de usuario."})
		return
	}

	h.Log.Info("user role updated",
		zap.Uint("admin_id", c.GetUint("user_id")),
		zap.Uint("user_id", user.ID),
		zap.String("rol", rol))
	c.JSON(http.StatusOK, gin.H{"message": "Rol actualizado.", "user": UserDTO{ID: user.ID, Nombre: user.Nombre, Rol: user.Rol}})
}
