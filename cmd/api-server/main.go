package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/compliance/aml-engine/configs"
	"github.com/compliance/aml-engine/internal/customer"
	"github.com/compliance/aml-engine/internal/engine"
	"github.com/compliance/aml-engine/internal/ingestion"
	"github.com/compliance/aml-engine/internal/models"
	"github.com/compliance/aml-engine/internal/rules"
	"github.com/compliance/aml-engine/internal/scoring"
	"github.com/compliance/aml-engine/internal/store"
	"github.com/compliance/aml-engine/internal/watchlist"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Load configuration
	cfg := configs.Load()

	// Setup logging
	setupLogging(cfg.Server.Environment)

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("Starting AML Transaction Overview API")

	// Initialize the in-memory dataset and services
	dataStore := store.New()
	ingestionService := ingestion.NewService(dataStore)

	ruleCfg := rules.DefaultConfig()
	analysisEngine := engine.New(ruleCfg)
	scorer := scoring.NewScorer()
	matcher := watchlist.NewMatcher(ruleCfg.FuzzyMatchMedium)
	customerService := customer.NewService(dataStore, analysisEngine, scorer, matcher)

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Upload.MaxFileSizeMB) << 20
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	rateLimiter := NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	router.Use(rateLimitMiddleware(rateLimiter))

	// Setup routes
	setupRoutes(router, ingestionService, customerService)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func setupRoutes(
	router *gin.Engine,
	ingestionService *ingestion.Service,
	customerService *customer.Service,
) {
	// Service metadata
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "AML Transaction Overview Tool",
			"version": "1.0.0",
			"endpoints": gin.H{
				"upload":         "/api/v1/upload/{transactions|watchlist|high-risk-countries|work-instructions}",
				"upload_status":  "/api/v1/upload/status",
				"clear":          "/api/v1/upload/clear",
				"search":         "/api/v1/customer/search?q=",
				"overview":       "/api/v1/customer/{bcn}/overview",
				"alerts":         "/api/v1/analysis/{bcn}/alerts",
				"risk_breakdown": "/api/v1/analysis/{bcn}/risk-breakdown",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Upload routes
	uploadRoutes := v1.Group("/upload")
	{
		uploadRoutes.POST("/transactions", uploadHandler(ingestionService.UploadTransactions))
		uploadRoutes.POST("/watchlist", uploadHandler(ingestionService.UploadWatchlist))
		uploadRoutes.POST("/high-risk-countries", uploadHandler(ingestionService.UploadHighRiskCountries))
		uploadRoutes.POST("/work-instructions", uploadHandler(ingestionService.UploadWorkInstructions))
		uploadRoutes.GET("/status", uploadStatusHandler(ingestionService))
		uploadRoutes.DELETE("/clear", clearHandler(ingestionService))
	}

	// Customer routes
	customerRoutes := v1.Group("/customer")
	{
		customerRoutes.GET("/search", searchHandler(customerService))
		customerRoutes.GET("/:bcn/overview", overviewHandler(customerService))
	}

	// Analysis routes
	analysisRoutes := v1.Group("/analysis")
	{
		analysisRoutes.GET("/:bcn/alerts", alertsHandler(customerService))
		analysisRoutes.GET("/:bcn/risk-breakdown", riskBreakdownHandler(customerService))
	}
}

// Middleware

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("%d", time.Now().UnixNano())
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("request_id", c.GetString("request_id")).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimiter implements a simple in-memory rate limiter using token bucket algorithm
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Clean up old visitors periodically
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(v.lastSeen)
	refill := int(elapsed / (rl.window / time.Duration(rl.rate)))
	v.tokens += refill
	if v.tokens > rl.rate {
		v.tokens = rl.rate
	}
	v.lastSeen = now

	if v.tokens > 0 {
		v.tokens--
		return true
	}

	return false
}

func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Handlers

func uploadHandler(upload func(string, io.Reader) (*models.UploadResponse, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided."})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()

		resp, err := upload(fileHeader.Filename, f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func uploadStatusHandler(ingestionService *ingestion.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ingestionService.Status())
	}
}

func clearHandler(ingestionService *ingestion.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ingestionService.Clear()
		c.JSON(http.StatusOK, gin.H{
			"status":  "cleared",
			"message": "All data has been removed from memory.",
		})
	}
}

func searchHandler(customerService *customer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required."})
			return
		}

		c.JSON(http.StatusOK, customerService.Search(query))
	}
}

func overviewHandler(customerService *customer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bcn := c.Param("bcn")

		overview, err := customerService.Overview(bcn)
		if err != nil {
			respondAnalysisError(c, bcn, err)
			return
		}

		c.JSON(http.StatusOK, overview)
	}
}

func alertsHandler(customerService *customer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bcn := c.Param("bcn")

		alerts, err := customerService.Alerts(bcn)
		if err != nil {
			respondAnalysisError(c, bcn, err)
			return
		}

		c.JSON(http.StatusOK, alerts)
	}
}

func riskBreakdownHandler(customerService *customer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bcn := c.Param("bcn")

		breakdown, err := customerService.RiskBreakdown(bcn)
		if err != nil {
			respondAnalysisError(c, bcn, err)
			return
		}

		c.JSON(http.StatusOK, breakdown)
	}
}

func respondAnalysisError(c *gin.Context, bcn string, err error) {
	if errors.Is(err, customer.ErrNoTransactions) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("No transactions found for BCN '%s'.", bcn),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
