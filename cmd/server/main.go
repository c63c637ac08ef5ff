package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/app"
	"github.com/nikola254/breaking-news-sub000/internal/config"
	"github.com/nikola254/breaking-news-sub000/internal/handler"
	"github.com/nikola254/breaking-news-sub000/internal/logging"
	"github.com/nikola254/breaking-news-sub000/internal/metrics"
	"github.com/nikola254/breaking-news-sub000/internal/repository"
	"github.com/nikola254/breaking-news-sub000/internal/service"
)

func main() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "configs/config.yml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting risk scoring service...")

	m := metrics.New()

	built, err := app.BuildClassifier(cfg, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize classifier", zap.Error(err))
	}

	// Initialize repository
	store, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize service
	analyzer := service.NewAnalyzer(built.Classifier, store, m, logger)

	checks := map[string]handler.HealthCheckFunc{"database": store.Ping}
	if built.MLService != nil {
		checks["ml_service"] = app.MLServiceCheck(built.MLService)
	}

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(analyzer, checks, m.Handler(), logger)

	// Setup Gin router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	remoteModel := "disabled"
	if built.Remote != nil {
		if name, ok := built.Remote.GetModelInfo()["model"].(string); ok {
			remoteModel = name
		}
	}

	logger.Info("Risk scoring service is running",
		zap.String("address", serverAddr),
		zap.String("database", cfg.Database.Driver),
		zap.String("remote_model", remoteModel),
		zap.String("local_model", cfg.LocalModel.Source))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// let running batch jobs finish writing before the store closes
	analyzer.Wait()

	logger.Info("Server exited")
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		origins[o] = true
	}

	return func(c *gin.Context) {
		switch origin := c.GetHeader("Origin"); {
		case len(origins) == 0:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origins[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
