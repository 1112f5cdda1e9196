package routes

import (
	authapi "github.com/StablePeru/Fullstack-AsRecorded/internal/api/auth"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/api/interventions"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/api/ioadmin"
	seriesapi "github.com/StablePeru/Fullstack-AsRecorded/internal/api/series"
	usersapi "github.com/StablePeru/Fullstack-AsRecorded/internal/api/users"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/app/http/middleware"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth          *authapi.Handler
	Series        *seriesapi.Handler
	Interventions *interventions.Handler
	Users         *usersapi.Handler
	IO            *ioadmin.Handler
	JWTSecret     string
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	api := r.Group("/api")

	api.GET("/status", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes get input sanitization on their JSON bodies.
	public := api.Group("/")
	public.Use(middleware.SanitizeInputMiddleware())
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	// Authenticated
	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware(h.JWTSecret))
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/users/me", h.Auth.Me)

	auth.GET("/series", h.Series.ListSeries)
	auth.GET("/series/:id", h.Series.GetSerie)
	auth.GET("/series/:id/capitulos", h.Series.ListCapitulos)
	auth.GET("/series/:id/resumen", h.Series.Resumen)
	auth.GET("/capitulos/:id/details", h.Series.ChapterDetails)
	auth.GET("/capitulos/:id/export", h.IO.ExportChapter)

	auth.POST("/series", middleware.RequireRoles(users.RoleAdmin, users.RoleDirector), h.Series.CreateSerie)
	auth.DELETE("/series/:id", middleware.RequireRoles(users.RoleAdmin), h.Series.DeleteSerie)

	recording := middleware.RequireRoles(users.RoleAdmin, users.RoleDirector, users.RoleTecnico)
	auth.PATCH("/intervenciones/:id/status", recording, h.Interventions.UpdateStatus)
	auth.PATCH("/intervenciones/:id/estado", recording, h.Interventions.UpdateEstado)
	auth.PATCH("/intervenciones/:id/efectos", recording, h.Interventions.UpdateEfectos)
	auth.PATCH("/intervenciones/:id/timecode", recording, h.Interventions.UpdateTimecode)
	auth.PATCH("/intervenciones/:id/dialogo",
		middleware.RequireRoles(users.RoleAdmin, users.RoleDirector), h.Interventions.UpdateDialogo)

	auth.POST("/import/excel",
		middleware.RequireRoles(users.RoleAdmin, users.RoleDirector), h.IO.ImportExcel)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.JWTSecret), middleware.RequireRoles(users.RoleAdmin))
	admin.GET("/io/config", h.IO.GetConfig)
	admin.POST("/io/config", h.IO.SaveConfig)
	admin.POST("/export/now", h.IO.ExportNow)
	admin.POST("/import/now", h.IO.ImportNow)
	admin.GET("/users", h.Users.ListUsers)
	admin.PUT("/users/:id/role", h.Users.UpdateRole)
}
