package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/extraction"
	handler "muhasebe-backend/internal/handlers"
	"muhasebe-backend/internal/ocr"
	"muhasebe-backend/internal/repository"
	"muhasebe-backend/internal/services/documents"
	"muhasebe-backend/internal/services/reports"
	"muhasebe-backend/internal/services/vendormatch"
	"muhasebe-backend/internal/telegram"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, settings config.Settings) {
	vendorRepo := repository.NewVendorRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	userRepo := repository.NewUserRepository(db)

	matcher := vendormatch.NewMatcher(vendorRepo)
	extractor := extraction.NewExtractor()
	engine := ocr.NewEngine(settings.TesseractLanguages...)

	documentService := documents.NewService(documentRepo, extractor, matcher, engine)
	reportService := reports.NewService(ledgerRepo)

	documentHandler := handler.NewDocumentHandler(documentService, documentRepo, settings.UploadDir, settings.MaxUploadSize)
	vendorHandler := handler.NewVendorHandler(vendorRepo, matcher)
	ledgerHandler := handler.NewLedgerHandler(ledgerRepo)
	reportHandler := handler.NewReportHandler(reportService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := api.Group("/v1")

	docs := v1.Group("/documents")
	docs.GET("", documentHandler.List)
	docs.GET("/drafts", documentHandler.ListDrafts)
	docs.POST("/upload", documentHandler.Upload)
	docs.GET("/:id", documentHandler.Get)
	docs.PATCH("/:id", documentHandler.Update)
	docs.POST("/:id/confirm", documentHandler.Confirm)
	docs.POST("/:id/cancel", documentHandler.Cancel)

	vendors := v1.Group("/vendors")
	vendors.GET("", vendorHandler.List)
	vendors.POST("", vendorHandler.Create)
	vendors.GET("/resolve", vendorHandler.Resolve)
	vendors.GET("/:id", vendorHandler.Get)
	vendors.PATCH("/:id", vendorHandler.Update)
	vendors.POST("/:id/aliases", vendorHandler.AddAlias)

	ledger := v1.Group("/ledger")
	ledger.GET("", ledgerHandler.List)
	ledger.POST("", ledgerHandler.Create)
	ledger.DELETE("/:id", ledgerHandler.Delete)

	categories := v1.Group("/categories")
	categories.GET("", ledgerHandler.ListCategories)
	categories.POST("", ledgerHandler.CreateCategory)

	reportGroup := v1.Group("/reports")
	reportGroup.GET("/summary", reportHandler.Summary)
	reportGroup.GET("/by-vendor", reportHandler.ByVendor)
	reportGroup.GET("/export/csv", reportHandler.ExportCSV)
	reportGroup.GET("/export/xlsx", reportHandler.ExportXLSX)

	// Webhook only registers when the bot is configured.
	if settings.TelegramBotToken != "" {
		bot := telegram.NewBot(settings.TelegramBotToken)
		telegramHandler := handler.NewTelegramHandler(
			bot, documentService, userRepo,
			settings.TelegramWebhookSecret, settings.UploadDir,
		)
		v1.POST("/telegram/webhook", telegramHandler.Webhook)
	}
}
