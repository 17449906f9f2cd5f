package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"procurement-receipt-api/config"
	"procurement-receipt-api/controllers"
	"procurement-receipt-api/middleware"
	"procurement-receipt-api/routes"
	"procurement-receipt-api/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		config.Log.Info("No .env file found, using environment variables")
	}

	logFile := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	config.InitDB()

	// Probe optional columns once instead of retrying per request.
	caps := services.ProbeSchemaCapabilities(config.DB)

	// Storage directories
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	signaturePath := os.Getenv("SIGNATURE_PATH")
	if signaturePath == "" {
		signaturePath = "./uploads/signatures"
	}
	for _, dir := range []string{uploadPath, signaturePath} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			config.Log.WithError(err).Warnf("failed to create directory %s", dir)
		}
	}

	// Wire services
	push := services.NewPushSender(config.DB, config.PushFromEnv(), config.Log)
	dispatcher := services.NewDispatcher(config.DB, push, config.MailerFromEnv(), config.Log)
	history := services.NewHistoryService(config.DB)
	attachments := services.NewAttachmentService(config.DB, uploadPath, history, config.Log)
	renderer := services.NewPDFRenderer(signaturePath)

	controllers.Init(controllers.Deps{
		Goods:        services.NewGoodsReceiptService(config.DB, history, attachments, dispatcher, caps, config.Log),
		Work:         services.NewWorkReceiptService(config.DB, history, attachments, dispatcher, caps, config.Log),
		Documents:    services.NewDocumentService(config.DB),
		Attachments:  attachments,
		History:      history,
		Dispatcher:   dispatcher,
		Push:         push,
		Renderer:     renderer,
		UploadDir:    uploadPath,
		SignatureDir: signaturePath,
	})

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	config.Log.Infof("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		config.Log.WithError(err).Fatal("Failed to start server")
	}
}
