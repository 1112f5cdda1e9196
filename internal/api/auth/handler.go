package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles a user may self-assign during registration. Admin and supervisor are
// granted through user administration only.
var allowedRegisterRoles = map[string]bool{
	users.RoleTecnico:  true,
	users.RoleDirector: true,
}

type Handler struct {
	DB        *gorm.DB
	Log       *zap.Logger
	JWTSecret string
}

func NewHandler(db *gorm.DB, log *zap.Logger, jwtSecret string) *Handler {
	return &Handler{DB: db, Log: log, JWTSecret: jwtSecret}
}

func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Nombre   string `json:"nombre" binding:"required"`
		Password string `json:"password" binding:"required"`
		Rol      string `json:"rol"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nombre := strings.TrimSpace(input.Nombre)
	if nombre == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre no puede estar vacío."})
		return
	}
	if len(input.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contraseña debe tener al menos 6 caracteres."})
		return
	}

	rol := strings.ToLower(strings.TrimSpace(input.Rol))
	if rol == "" {
		rol = users.RoleTecnico
	}
	if !allowedRegisterRoles[rol] {
		h.Log.Warn("registration requested a disallowed role, falling back to tecnico",
			zap.String("nombre", nombre), zap.String("rol", rol))
		rol = users.RoleTecnico
	}

	var existing users.Usuario
	if err := h.DB.Where("nombre = ?", nombre).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "El nombre de usuario '" + nombre + "' ya está en uso."})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := users.Usuario{Nombre: nombre, PasswordHash: string(hashed), Rol: rol}
	if err := h.DB.Create(&user).Error; err != nil {
		h.Log.Error("user insert failed", zap.String("nombre", nombre), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "No se pudo registrar el usuario."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Usuario registrado.",
		"user":    gin.H{"id": user.ID, "nombre": user.Nombre, "rol": user.Rol},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Nombre   string `json:"nombre" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user users.Usuario
	err := h.DB.Where("nombre = ?", strings.TrimSpace(input.Nombre)).First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Nombre de usuario o contraseña incorrectos."})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		h.Log.Warn("login failed", zap.String("nombre", user.Nombre))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Nombre de usuario o contraseña incorrectos."})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"nombre":  user.Nombre,
		"rol":     user.Rol,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	h.Log.Info("login ok", zap.Uint("user_id", user.ID), zap.String("rol", user.Rol))
	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  gin.H{"id": user.ID, "nombre": user.Nombre, "rol": user.Rol},
	})
}

// Logout exists for API compatibility; tokens are stateless, the client
// simply discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada."})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":     c.GetUint("user_id"),
		"nombre": c.GetString("nombre"),
		"rol":    c.GetString("rol"),
	}})
}
