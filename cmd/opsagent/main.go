// opsagent is the operations-reasoning orchestrator server: it answers
// natural-language back-office questions by planning, dispatching and
// evaluating domain-specialist agents, gating proposed mutations behind
// human approval.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/opsreasoner/opsreasoner/pkg/agent"
	"github.com/opsreasoner/opsreasoner/pkg/api"
	"github.com/opsreasoner/opsreasoner/pkg/checkpoint"
	"github.com/opsreasoner/opsreasoner/pkg/config"
	"github.com/opsreasoner/opsreasoner/pkg/database"
	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/memory"
	"github.com/opsreasoner/opsreasoner/pkg/orchestrator"
	"github.com/opsreasoner/opsreasoner/pkg/pendingaction"
	"github.com/opsreasoner/opsreasoner/pkg/planner"
	"github.com/opsreasoner/opsreasoner/pkg/services"
	"github.com/opsreasoner/opsreasoner/pkg/telemetry"
	"github.com/opsreasoner/opsreasoner/pkg/tooltransport"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// configureLogging sets the process-wide slog level from LOG_LEVEL.
func configureLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v", envPath, err)
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	appEnv := getEnv("APP_ENV", "development")
	if appEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(getEnv("GIN_MODE", gin.DebugMode))
	}
	configureLogging(getEnv("LOG_LEVEL", "info"))

	log.Printf("Starting opsagent (%s)", appEnv)
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	tracerShutdown, err := telemetry.InitTracing(ctx, "opsagent")
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	metrics := telemetry.NewMetrics()

	// Pending-action and timeline persistence.
	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("✓ Connected to PostgreSQL database")

	// Checkpoint store: Redis when configured, in-process otherwise.
	var checkpoints checkpoint.Store
	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", addr, err)
		}
		checkpoints = checkpoint.NewRedisStore(redisClient, "", 7*24*time.Hour)
		log.Println("✓ Connected to Redis checkpoint store")
	} else {
		checkpoints = checkpoint.NewMemoryStore()
		log.Println("✓ Using in-process checkpoint store (REDIS_ADDR not set)")
	}

	// Tool transport, shared by every agent and the action executor.
	transport := tooltransport.New(
		cfg.Transport.Endpoint,
		os.Getenv(cfg.Transport.APIKeyEnv),
		tooltransport.WithTimeout(cfg.Guardrails.ToolTimeout),
		tooltransport.WithObserver(metrics.ObserveToolCall),
	)

	// LLM client for planning, SQL generation and synthesis.
	providerCfg, err := cfg.LLMProviderRegistry.Get(cfg.Defaults.LLMProvider)
	if err != nil {
		log.Fatalf("Failed to resolve default LLM provider: %v", err)
	}
	llm, err := llmclient.New(providerCfg, os.Getenv(providerCfg.APIKeyEnv))
	if err != nil {
		log.Fatalf("Failed to build LLM client: %v", err)
	}
	llm = llmclient.WithObserver(llm, func(d time.Duration, err error) {
		metrics.ObserveLLMCall("chat", d, err)
	})

	mem := memory.New(transport)

	registry, err := agent.BuildRegistry(cfg.AgentRegistry.GetAll(), transport, llm, mem)
	if err != nil {
		log.Fatalf("Failed to build agent registry: %v", err)
	}
	log.Printf("✓ Registered %d agents", registry.Len())

	actions := pendingaction.New(dbClient.Client)
	timeline := services.NewTimelineService(dbClient.Client)
	executor := orchestrator.NewActionExecutor(transport)

	engine := orchestrator.NewEngine(
		planner.New(llm, cfg.AgentRegistry),
		orchestrator.NewWithRetryPolicy(registry, cfg.Guardrails.RetryMaxAttempts, cfg.Guardrails.RetryDelay),
		orchestrator.NewSynthesizer(llm),
		actions,
		checkpoints,
		mem,
		executor,
		cfg.Guardrails,
		orchestrator.WithTimeline(timeline),
		orchestrator.WithMetrics(metrics),
	)
	log.Println("✓ Orchestration engine ready")

	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error {
			_, err := database.Health(ctx, dbClient.DB())
			return err
		},
	}
	if redisClient != nil {
		checks["checkpoint_store"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	server := api.NewServer(engine, actions, executor, mem, transport,
		api.WithHealthChecks(checks),
		api.WithMetrics(metrics),
	)

	go func() {
		log.Printf("HTTP server listening on :%s", httpPort)
		if err := server.Start(":" + httpPort); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := tracerShutdown(shutdownCtx); err != nil {
		log.Printf("Tracer shutdown error: %v", err)
	}
}
