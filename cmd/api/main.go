package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	applogger "alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/metrics"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := applogger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("✅ Config loaded successfully")

	// Initialize services
	extractor := services.NewTextExtractor()
	promptBuilder := services.NewPromptBuilder()

	// The service boots without a Gemini key so health and service info stay
	// reachable; analyze requests then fail with a configuration error.
	var gemini services.GeminiService
	if cfg.Gemini.APIKey != "" {
		gemini, err = services.NewGeminiService(context.Background(), cfg.Gemini)
		if err != nil {
			logger.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
		}
		logger.Info("✅ Gemini AI initialized successfully", zap.String("model", cfg.Gemini.Model))
	} else {
		logger.Warn("⚠️ GEMINI_API_KEY not set; analyze requests will be rejected")
	}

	analyzer := services.NewAnalyzerService(extractor, promptBuilder, gemini, logger)
	m := metrics.New()
	logger.Info("✅ Services initialized successfully")

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(analyzer, m, logger)
	systemHandler := handlers.NewSystemHandler(version, gemini != nil)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Analyzer API",
		BodyLimit:    int(cfg.Upload.MaxFileSize),
		ErrorHandler: handlers.NewErrorHandler(logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(m.Middleware())

	// Routes
	handlers.RegisterRoutes(app, analyzeHandler, systemHandler)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			logger.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
