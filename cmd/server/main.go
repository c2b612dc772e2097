package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/cache"
	"github.com/aja5jo/ggoggolist-backend/internal/database"
	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/handlers"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/recommend"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"github.com/aja5jo/ggoggolist-backend/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== ggoggolist recommendation backend starting ===")

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional: without it the popular pool is rebuilt per request
	var redisClient *cache.RedisClient
	if os.Getenv("REDIS_HOST") != "" {
		rc, err := cache.NewRedisClient(
			os.Getenv("REDIS_HOST"),
			os.Getenv("REDIS_PORT"),
			os.Getenv("REDIS_PASSWORD"),
		)
		if err != nil {
			log.Printf("Warning: redis unavailable, candidate pool cache disabled: %v", err)
		} else {
			redisClient = rc
			defer redisClient.Close()
		}
	}

	// Tracing
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "ggoggolist-recommendation",
		Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		SamplingRate: 1.0,
	})
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	// Embedding provider
	dimension, err := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMENSION", "1536"))
	if err != nil {
		log.Fatalf("Invalid EMBEDDING_DIMENSION: %v", err)
	}
	provider := embedding.NewClient(
		getEnvOrDefault("EMBEDDING_API_URL", "https://api.openai.com"),
		os.Getenv("EMBEDDING_API_KEY"),
		getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		dimension,
	)

	// Wire the recommendation pipeline
	items := repository.NewItemRepository(database.DB)
	favorites := repository.NewFavoriteRepository(database.DB)
	prefs := repository.NewPreferenceRepository(database.DB)
	embeddings := embedding.NewStore(database.DB)

	candidates := recommend.NewCandidateService(items, redisClient)
	profiles := recommend.NewUserProfileBuilder(provider, embeddings, favorites, prefs)
	ranker := recommend.NewRankingService(provider, embeddings, items)
	assembler := recommend.NewFeedAssembler(items, favorites)
	recService := recommend.NewService(candidates, profiles, ranker, assembler)

	h := handlers.NewHandlers(recService)

	// Setup Gin router
	if getEnvOrDefault("ENVIRONMENT", "development") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"} // Configure properly for production
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-User-ID", "X-Request-ID"}
	r.Use(cors.New(config))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	handlers.SetupRoutes(r, h)

	port := getEnvOrDefault("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("ggoggolist recommendation backend listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
