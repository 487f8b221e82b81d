package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market_signal_bot/config"
	"market_signal_bot/routes"
	"market_signal_bot/scheduler"
	"market_signal_bot/services/evaluation"
	"market_signal_bot/services/marketdata"
	"market_signal_bot/services/notify"
	"market_signal_bot/services/scoring"
	"market_signal_bot/store"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("==============================================")
	log.Println("  Market Signal Bot - Starting...")
	log.Println("==============================================")

	// Load and validate configuration; an invalid configuration must
	// stop the process before any job is scheduled
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build the pipeline components
	fetcher := marketdata.NewFetcher(cfg.TickerAPIURL, cfg.EquityAPIURL, cfg.QuoteCurrency)
	history := marketdata.NewHistory()
	scorer := scoring.NewScorer(cfg)
	classifier := scoring.NewClassifier(cfg)
	signalStore := store.NewSignalStore(cfg.SignalsFile)
	scanCache := store.NewScanCache(cfg.LastScanFile)
	evaluator := evaluation.NewEvaluator(fetcher, signalStore, classifier.Horizon())

	sender, err := notify.NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("Messaging sink setup failed: %v", err)
	}
	notifier := notify.NewNotifier(sender)

	jobScheduler := scheduler.NewScheduler(
		cfg, fetcher, history, scorer, classifier,
		signalStore, scanCache, evaluator, notifier,
	)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger())

	// Liveness probe: must answer fast without touching upstreams
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupRoutes(router, scanCache, signalStore, fetcher, jobScheduler)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		log.Println("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Start background scheduler; the first scan runs immediately
	jobScheduler.Start()

	gracefulShutdown(server, jobScheduler)
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown handles graceful shutdown of the server
func gracefulShutdown(server *http.Server, jobScheduler *scheduler.Scheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	// Stop scheduler first so no tick starts mid-shutdown
	jobScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown completed")
}
