package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"complaintdesk/internal/config"
	"complaintdesk/internal/database"
	"complaintdesk/internal/handlers"
	"complaintdesk/internal/jobs"
	"complaintdesk/internal/logging"
	"complaintdesk/internal/middleware"
	"complaintdesk/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Complaintdesk Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: %s, AI configured: %v)",
		cfg.Port, cfg.DatabasePath, cfg.AIConfigured())

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Services
	safeData := services.NewSafeDataService(db)
	contextBuilder := services.NewContextBuilder(safeData)
	fallback := services.NewChatService()
	geminiClient := services.NewGeminiClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AIRequestsPerSecond)
	aiChat := services.NewAIChatService(contextBuilder, fallback, geminiClient)
	complaints := services.NewComplaintService(db)
	checker := services.NewDuplicationChecker(aiChat, cfg.DuplicationWorkers)
	metrics := services.InitMetrics()

	if !geminiClient.Configured() {
		log.Println("⚠️  AI gateway not configured - chat will return the setup message, duplication checks are disabled")
	}

	// Handlers
	chatHandler := handlers.NewChatHandler(aiChat, metrics)
	complaintHandler := handlers.NewComplaintHandler(complaints, checker, metrics, cfg.DuplicationCandidates)
	healthHandler := handlers.NewHealthHandler(db, geminiClient)

	// Background jobs
	scheduler := jobs.NewJobScheduler()
	scheduler.Register("daily-stats", jobs.NewDailyStatsJob(safeData))
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:      "Complaintdesk",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // chat turns wait on the AI gateway
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("complaintdesk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	rateLimits := middleware.LoadRateLimitConfig()
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimits))

	// Routes
	app.Get("/health", healthHandler.Handle)
	app.Post("/api/chat/send", middleware.ChatRateLimiter(rateLimits), chatHandler.Send)
	app.Get("/api/complaints", complaintHandler.List)
	app.Post("/api/complaints", middleware.SubmitRateLimiter(rateLimits), complaintHandler.Create)
	app.Get("/api/categories", complaintHandler.Categories)
	app.Get("/api/departments", complaintHandler.Departments)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down...")
		scheduler.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Server shutdown error: %v", err)
		}
	}()

	log.Printf("🌐 Listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}
