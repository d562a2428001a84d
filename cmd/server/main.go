package main

import (
	"log"
	"time"

	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/middleware"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	settings := config.Load()
	db := config.InitDB(settings.DatabaseURL)

	db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.VendorAlias{},
		&models.Category{},
		&models.Document{},
		&models.LedgerEntry{},
		&models.AuditLog{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestLogger())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())))

	routes.RegisterRoutes(r, db, settings)

	r.Run(":" + settings.Port)
}
