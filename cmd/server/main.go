package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/aiclient"
	"github.com/gittldr/server/internal/config"
	"github.com/gittldr/server/internal/database"
	"github.com/gittldr/server/internal/github"
	"github.com/gittldr/server/internal/handler"
	"github.com/gittldr/server/internal/middleware"
	"github.com/gittldr/server/internal/repository"
	"github.com/gittldr/server/internal/service"
)

// main is the single entry‑point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - Database: %s", cfg.DBName)
	log.Printf("  - AI backend: %s", cfg.AIServiceURL)
	log.Printf("  - AI provider: %s", cfg.AIProvider)

	// Connect to MongoDB
	client, ctx, cancel, err := database.NewMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancel()
	defer client.Disconnect(ctx)
	log.Printf("Connected to MongoDB")

	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Printf("Warning: failed to ensure indexes: %v", err)
	}

	// Initialize repositories
	repoRepo := repository.NewRepoRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	fixRepo := repository.NewFixRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	// External clients
	gh := github.NewClient(cfg.GitHubToken)
	ai := aiclient.NewClient(cfg.AIServiceURL, cfg.AIServiceToken)

	// AI provider for question answering
	var embedder service.EmbeddingClient
	var llm service.LLMClient
	if cfg.AIProvider == "vertex" {
		embedder, err = service.NewVertexEmbedder(cfg.ProjectID, cfg.Location)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI embedder: %v", err)
		}
		llm, err = service.NewVertexLLM(cfg.ProjectID, cfg.Location)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI LLM: %v", err)
		}
	} else {
		log.Printf("Using dummy AI provider")
		embedder = service.NewDummyEmbedder()
		llm = service.NewDummyLLM()
	}
	defer embedder.Close()
	defer llm.Close()

	// Initialize services
	creditSvc := service.NewCreditService(gh, creditRepo, cfg.CreditCacheTTL)
	repoSvc := service.NewRepoService(repoRepo, gh, creditSvc, ai)
	qnaSvc := service.NewQnAService(repoRepo, questionRepo, embedder, llm)
	thinkingSvc := service.NewThinkingService(repoRepo, ai)
	fixSvc := service.NewFixService(fixRepo, ai, gh, repoRepo, cfg.FixPollInterval, cfg.FixPollTimeout)
	teamSvc := service.NewTeamService(teamRepo, gh)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Add middleware
	app.Use(middleware.Logging())

	// Register routes
	handler.RegisterRoutes(app, repoSvc, creditSvc, qnaSvc, thinkingSvc, fixSvc, teamSvc)

	// Add health check
	handler.NewHealthHandler(client).Register(app)

	// Shut down cleanly so in-flight fix poll loops finish their writes.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Printf("Shutting down...")
		fixSvc.Shutdown()
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
