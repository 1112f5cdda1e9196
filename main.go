package main

import (
	"time"

	"github.com/StablePeru/Fullstack-AsRecorded/config"
	"github.com/StablePeru/Fullstack-AsRecorded/database"
	authapi "github.com/StablePeru/Fullstack-AsRecorded/internal/api/auth"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/api/interventions"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/api/ioadmin"
	seriesapi "github.com/StablePeru/Fullstack-AsRecorded/internal/api/series"
	usersapi "github.com/StablePeru/Fullstack-AsRecorded/internal/api/users"
	routes "github.com/StablePeru/Fullstack-AsRecorded/internal/app/http"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/domain/ioconfig"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/scheduler"
	"github.com/StablePeru/Fullstack-AsRecorded/internal/workbook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.InitDB(config.DB_URL)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	if err := database.Seed(db, log); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}

	importer := workbook.NewImporter(db, log)
	exporter := workbook.NewExporter(db, log)

	sched := scheduler.New(db, importer, exporter, log)
	cfg, err := ioconfig.Load(db, config.DEFAULT_IMPORT_DIR, config.DEFAULT_EXPORT_DIR)
	if err != nil {
		log.Fatal("io config load failed", zap.Error(err))
	}
	if err := sched.Apply(cfg); err != nil {
		log.Fatal("schedule registration failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	r := gin.Default()

	// CORS must be registered before the routes.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:          authapi.NewHandler(db, log, config.JWT_SECRET),
		Series:        seriesapi.NewHandler(db, log),
		Interventions: interventions.NewHandler(db, log),
		Users:         usersapi.NewHandler(db, log),
		IO: ioadmin.NewHandler(db, log, importer, exporter, sched,
			config.UPLOAD_DIR, config.DEFAULT_IMPORT_DIR, config.DEFAULT_EXPORT_DIR),
		JWTSecret: config.JWT_SECRET,
	})

	if err := r.Run(":" + config.PORT); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
