package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/api/handlers"
	"github.com/AmartyaKumar11/X-NOSIS/internal/bootstrap"
	"github.com/AmartyaKumar11/X-NOSIS/internal/cache/redis"
	"github.com/AmartyaKumar11/X-NOSIS/internal/ingestion"
	"github.com/AmartyaKumar11/X-NOSIS/internal/kg/builder"
	"github.com/AmartyaKumar11/X-NOSIS/internal/kg/neo4j"
	"github.com/AmartyaKumar11/X-NOSIS/internal/metrics"
	"github.com/AmartyaKumar11/X-NOSIS/internal/middleware/ratelimit"
	"github.com/AmartyaKumar11/X-NOSIS/internal/middleware/security"
	"github.com/AmartyaKumar11/X-NOSIS/internal/middleware/validation"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/config"
	appLogger "github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting X-NOSIS API server")

	store, err := bootstrap.OpenStore(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to open corpus store", zap.Error(err))
	}
	defer store.Close()

	registry := terms.NewRegistry(appLogger.Named("corpus"))
	snap, err := bootstrap.LoadCorpus(context.Background(), store, registry, cfg, appLogger.Named("populate"))
	if err != nil {
		// The engine still runs pattern-only until a reload succeeds.
		appLogger.Error("Failed to load corpus", zap.Error(err))
	} else {
		appLogger.Info("Corpus ready", zap.String("version", snap.Version()), zap.Int("terms", snap.Len()))
	}

	engine, err := bootstrap.NewEngine(cfg.Analysis)
	if err != nil {
		appLogger.Fatal("Failed to build extraction engine", zap.Error(err))
	}

	opts := []ingestion.Option{}
	if cfg.Analysis.PersistResults {
		opts = append(opts, ingestion.WithStore(store))
	}

	deps := map[string]handlers.Pinger{"sqlite": store}

	var cacheInvalidator handlers.CacheInvalidator
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()

		opts = append(opts, ingestion.WithCache(redisClient))
		cacheInvalidator = redisClient
		deps["redis"] = redisClient
	}

	var conditionFinder handlers.ConditionFinder
	if cfg.Neo4j.Enabled {
		neo4jClient, err := neo4j.NewClient(
			cfg.Neo4j.URI,
			cfg.Neo4j.Username,
			cfg.Neo4j.Password,
			cfg.Neo4j.Database,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Neo4j client", zap.Error(err))
		}
		defer neo4jClient.Close(context.Background())

		if err := neo4jClient.EnsureSchema(context.Background()); err != nil {
			appLogger.Warn("Failed to ensure graph schema", zap.Error(err))
		}

		opts = append(opts, ingestion.WithGraph(builder.NewBuilder(neo4jClient)))
		conditionFinder = neo4jClient
		deps["neo4j"] = neo4jClient
	}

	processor := ingestion.NewProcessor(engine, registry, ingestion.Config{
		MaxTextLength:  cfg.Analysis.MaxTextLength,
		PersistResults: cfg.Analysis.PersistResults,
	}, opts...)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: splitOrigins(cfg.Server.AllowedOrigins),
		IsDevelopment:  cfg.Server.Development,
	}))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Logger:            appLogger.Named("ratelimit"),
		})
		defer limiter.Stop()
		app.Use("/api", limiter.Middleware())
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
		app.Get(cfg.Metrics.Path, metrics.MetricsHandler())
	}

	analysisHandler := handlers.NewAnalysisHandler(processor, store, int64(cfg.Server.BodyLimit))
	corpusHandler := handlers.NewCorpusHandler(store, registry, cacheInvalidator, conditionFinder)
	healthHandler := handlers.NewHealthHandler(registry, deps)
	wsHandler := handlers.NewWebSocketHandler(processor)

	api := app.Group("/api/v1", validation.Middleware(validation.Config{
		MaxTextLength: cfg.Analysis.MaxTextLength,
		Logger:        appLogger.Named("validation"),
	}))

	api.Post("/analyze", analysisHandler.Analyze)
	api.Post("/analyze/file", analysisHandler.AnalyzeFile)
	api.Get("/analyses", analysisHandler.ListAnalyses)
	api.Get("/analyses/:id", analysisHandler.GetAnalysis)

	api.Get("/corpus/stats", corpusHandler.Stats)
	api.Get("/corpus/search", corpusHandler.Search)
	api.Post("/corpus/reload", corpusHandler.Reload)
	api.Get("/graph/conditions", corpusHandler.RelatedConditions)

	api.Get("/health", healthHandler.Health)
	api.Get("/ready", healthHandler.Ready)

	app.Get("/ws/analyze", wsHandler.Upgrade, websocket.New(wsHandler.HandleConnection))

	addr := cfg.Server.Address()
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
