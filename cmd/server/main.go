// @title           GenieUs Backend API
// @version         1.0.0
// @description     Backend API for AI-assisted ad and creative generation. Handles project persistence with split blob storage, credit-gated generation workflows, brand profiles, chat and session state.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"net/url"

	"genieus-backend/docs"
	"genieus-backend/internal/account"
	"genieus-backend/internal/chat"
	"genieus-backend/internal/config"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/events"
	"genieus-backend/internal/genai"
	"genieus-backend/internal/handlers"
	"genieus-backend/internal/middleware"
	"genieus-backend/internal/publish"
	"genieus-backend/internal/session"
	"genieus-backend/internal/store"
	"genieus-backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/supabase-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	// Persistence. Postgres when DATABASE_URL is configured, in-memory
	// otherwise so the service still comes up for local development.
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pg.Close()

		migrator, err := store.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to initialize migrator", zap.Error(err))
		} else {
			if err := migrator.Run(); err != nil {
				logger.Warn("migration failed", zap.Error(err))
			} else {
				logger.Info("migrations completed")
			}
			migrator.Close()
		}
		st = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store; projects will not survive a restart")
		st = store.NewMemory()
	}

	genClient := genai.NewClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey)

	// Supabase is optional: without it there is no asset mirroring and no
	// realtime events, but every workflow still runs.
	var publisher *publish.Publisher
	var eventPublisher *events.Publisher
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		publisher, err = publish.NewPublisher(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
		if err != nil {
			logger.Warn("failed to initialize storage publisher", zap.Error(err))
		}

		supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
		if err != nil {
			logger.Warn("failed to initialize supabase client", zap.Error(err))
		} else {
			eventPublisher = events.NewPublisher(supabaseClient)
		}
	}

	ledger := credits.NewLedger()
	sessions := session.NewManager()
	registry := account.NewRegistry(ledger)
	chats := chat.NewManager(genClient)
	engine := workflow.NewEngine(logger, st, genClient, ledger, registry, sessions, eventPublisher)

	projectsHandler := handlers.NewProjectsHandler(logger, st, publisher)
	uploadHandler := handlers.NewUploadHandler(st)
	generateHandler := handlers.NewGenerateHandler(engine, ledger, sessions)
	brandHandler := handlers.NewBrandHandler(st, engine)
	chatHandler := handlers.NewChatHandler(chats, st)
	accountHandler := handlers.NewAccountHandler(registry, ledger)
	sessionHandler := handlers.NewSessionHandler(sessions)
	assetsHandler := handlers.NewAssetsHandler(st)

	router := gin.Default()

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Project routes
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	api.POST("/projects/:project_id/publish", projectsHandler.PublishProject)

	// Upload and generation
	api.POST("/projects/:project_id/upload", uploadHandler.Upload)
	api.POST("/projects/:project_id/generate", generateHandler.Generate)
	api.POST("/projects/:project_id/regenerate", generateHandler.Regenerate)
	api.POST("/projects/:project_id/animate", generateHandler.Animate)
	api.POST("/projects/:project_id/extend", generateHandler.Extend)

	// Assets
	api.GET("/assets/:asset_id", assetsHandler.GetAsset)

	// Brand profile
	api.GET("/brand", brandHandler.GetBrandProfile)
	api.PUT("/brand", brandHandler.SaveBrandProfile)
	api.PUT("/brand/logo", brandHandler.UploadBrandLogo)
	api.DELETE("/brand", brandHandler.DeleteBrandProfile)
	api.POST("/brand/fetch", brandHandler.FetchBrandProfile)

	// Chat
	api.POST("/chat/messages", chatHandler.SendMessage)
	api.GET("/chat/messages", chatHandler.GetTranscript)
	api.DELETE("/chat", chatHandler.ResetChat)

	// Account and session
	api.GET("/account", accountHandler.GetAccount)
	api.POST("/account/plan", accountHandler.SelectPlan)
	api.GET("/session", sessionHandler.GetSession)
	api.POST("/session/navigate", sessionHandler.Navigate)
	api.POST("/session/back", sessionHandler.GoBack)
	api.GET("/session/statuses", sessionHandler.GetStatuses)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
