package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	UPLOAD_DIR         string
	DEFAULT_IMPORT_DIR string
	DEFAULT_EXPORT_DIR string

	CORS_ORIGIN string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	UPLOAD_DIR = getEnv("UPLOAD_DIR", "temp_uploads")
	DEFAULT_IMPORT_DIR = getEnv("DEFAULT_IMPORT_DIR", "/app/io_external/imports")
	DEFAULT_EXPORT_DIR = getEnv("DEFAULT_EXPORT_DIR", "/app/io_external/exports")

	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
