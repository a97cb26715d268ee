package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/handlers"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	scenarioRepo := repositories.NewScenarioRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	criteriaRepo := repositories.NewCriteriaRepository(db)
	contextualRepo := repositories.NewContextualQuestionRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	resumeIndex, err := services.NewResumeIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := resumeIndex.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize resume ingestion pipeline
	ingestionService := services.NewIngestionService(
		resumeRepo,
		pdfParser,
		chunker,
		geminiService,
		resumeIndex,
		cfg.Interview.ChunkSize,
	)

	worker := services.NewWorker(
		resumeRepo,
		ingestionService,
		cfg.Worker.Concurrency,
	)
	log.Println("✅ Worker initialized successfully")

	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize navigation engine
	graphs := services.NewGraphCache(scenarioRepo)
	locks := services.NewSessionLocks()
	contextStore := services.NewSessionContextService(sessionRepo, graphs, locks)
	navigator := services.NewNavigatorService(sessionRepo, graphs, locks)
	log.Println("✅ Navigation engine initialized")

	// Initialize interview services
	scorer := services.NewGeminiScorer(geminiService, cfg.Worker.RetryMaxAttempts)
	generator := services.NewGeminiQuestionGenerator(geminiService, cfg.Worker.RetryMaxAttempts)
	criteriaService := services.NewCriteriaService(
		criteriaRepo,
		cfg.Interview.MandatoryImportanceFloor,
		cfg.Interview.MustHaveMinScore,
	)
	contextualService := services.NewContextualQuestionService(
		contextualRepo,
		sessionRepo,
		generator,
		geminiService,
		resumeIndex,
		cfg.Interview.MaxContextualQuestions,
	)
	interviewService := services.NewInterviewService(
		sessionRepo,
		resumeRepo,
		questionRepo,
		criteriaRepo,
		contextStore,
		navigator,
		scorer,
		graphs,
		cfg.Interview.MustHaveMinScore,
	)
	log.Println("✅ Interview services initialized")

	// Initialize handlers
	scenarioHandler := handlers.NewScenarioHandler(scenarioRepo, questionRepo)
	criteriaHandler := handlers.NewCriteriaHandler(criteriaService)
	sessionHandler := handlers.NewSessionHandler(interviewService)
	contextualHandler := handlers.NewContextualQuestionHandler(contextualService)
	resumeHandler := handlers.NewResumeHandler(
		resumeRepo,
		storageService,
		worker,
		cfg.Storage.MaxFileSize,
	)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Interviewer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Scenario endpoints
	api.Post("/scenarios", scenarioHandler.HandleCreate)
	api.Post("/scenarios/validate", scenarioHandler.HandleValidate)
	api.Get("/scenarios/:id", scenarioHandler.HandleGet)

	// Criteria endpoints
	api.Post("/vacancies/:id/criteria", criteriaHandler.HandleDerive)
	api.Delete("/criteria/:id", criteriaHandler.HandleDelete)

	// Resume endpoints
	api.Post("/resumes", resumeHandler.HandleUpload)
	api.Get("/resumes/:id", resumeHandler.HandleGet)

	// Session endpoints
	api.Post("/sessions", sessionHandler.HandleCreate)
	api.Get("/sessions/:id", sessionHandler.HandleGet)
	api.Post("/sessions/:id/answers", sessionHandler.HandleAnswer)
	api.Post("/sessions/:id/advance", sessionHandler.HandleForceAdvance)

	// Contextual question endpoints
	api.Post("/sessions/:id/contextual-questions", contextualHandler.HandleGenerate)
	api.Post("/contextual-questions/:id/use", contextualHandler.HandleMarkUsed)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Interviewer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/scenarios",
				"POST /api/v1/scenarios/validate",
				"GET /api/v1/scenarios/:id",
				"POST /api/v1/vacancies/:id/criteria",
				"DELETE /api/v1/criteria/:id",
				"POST /api/v1/resumes",
				"GET /api/v1/resumes/:id",
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"POST /api/v1/sessions/:id/answers",
				"POST /api/v1/sessions/:id/advance",
				"POST /api/v1/sessions/:id/contextual-questions",
				"POST /api/v1/contextual-questions/:id/use",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
