package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailhq/console/access"
	"github.com/retailhq/console/cache"
	"github.com/retailhq/console/calllog"
	"github.com/retailhq/console/client"
	"github.com/retailhq/console/config"
	"github.com/retailhq/console/controller"
	"github.com/retailhq/console/db"
	logger "github.com/retailhq/console/logging"
	"github.com/retailhq/console/router"
	"github.com/retailhq/console/session"
	"github.com/retailhq/console/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize the response cache; Redis is opt-in for multi-process setups
	var responseCache cache.ResponseCache
	rateLimitRequests := 0
	if config.GetString("cache.backend") == "redis" {
		if err := db.InitRedis(); err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		defer db.CloseRedis()
		responseCache = db.NewRedisCache(db.RedisClient)
		rateLimitRequests = config.GetInt("ratelimit.requestsPerMinute")
	} else {
		responseCache = cache.NewMemoryCache()
	}

	// Initialize the call logger
	callLog := calllog.New(calllog.Config{
		Enabled:       config.GetBool("logger.enabled"),
		MinLevel:      calllog.Level(config.GetString("logger.minLevel")),
		EchoToConsole: config.GetBool("logger.echoToConsole"),
		MaxSizeMB:     config.GetInt("logger.maxSizeMB"),
	})

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mutations invalidate every cached read for the touched resource
	eventBus.Subscribe("*", func(ctx context.Context, event util.Event) error {
		if event.Resource == "" || event.Resource == "session" {
			return nil
		}
		return responseCache.ClearPrefix(ctx, client.InvalidationKeyPrefix(event.Resource))
	})

	// Initialize the API client and session
	tokens := client.StaticToken(os.Getenv("CONSOLE_API_TOKEN"))
	apiClient := client.New(
		config.GetString("api.baseURL"),
		config.GetString("api.storeID"),
		config.GetString("api.branchID"),
		tokens,
		responseCache,
		callLog,
		eventBus,
	)

	sessionProvider := session.NewProvider(apiClient, tokens, eventBus)
	if err := sessionProvider.Load(ctx); err != nil {
		logger.Warn("Initial session load failed, inspector starts unauthenticated", zap.Error(err))
	}

	gate := access.NewGate(sessionProvider)

	// Initialize controllers
	controllers := controller.InitializeControllers(callLog, responseCache, gate, sessionProvider)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(controllers, gate, callLog, rateLimitRequests, time.Minute)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting inspector server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
