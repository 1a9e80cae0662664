package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/jmkvaal/declinewatch/internal/cache"
	"github.com/jmkvaal/declinewatch/internal/classify"
	"github.com/jmkvaal/declinewatch/internal/config"
	"github.com/jmkvaal/declinewatch/internal/decline"
	"github.com/jmkvaal/declinewatch/internal/fleet"
	"github.com/jmkvaal/declinewatch/internal/monitoring"
	"github.com/jmkvaal/declinewatch/internal/ratelimit"
	"github.com/jmkvaal/declinewatch/internal/types"
	"github.com/jmkvaal/declinewatch/internal/valerr"
)

// @title DeclineWatch API
// @version 1.0
// @description Decline-curve analysis and risk classification for producing wells.
// @BasePath /api/v1

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	thresholds, err := config.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		slog.Error("Failed to load thresholds", "error", err, "file", cfg.ThresholdsFile)
		os.Exit(1)
	}

	fitter := decline.NewFitter(thresholds.Decline)
	classifier := classify.NewClassifier(thresholds.Classify)
	evaluator := fleet.NewEvaluator(fitter, classifier, cfg.Workers)

	appMetrics := monitoring.NewMetrics()
	appCache := cache.New(cfg.CacheTTL)

	redisClient := ratelimit.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()
	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimitPerMin:   cfg.IPLimitPerMin,
		BurstMultiplier: 2,
	}, appMetrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(monitoring.Middleware(appMetrics, appLogger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(limiter.IPRateLimitMiddleware())

	api := r.Group("/api/v1")
	api.GET("/health", handleHealth(appMetrics))
	api.GET("/metrics", handleMetrics(appMetrics))
	api.POST("/wells/analyze", handleAnalyzeWell(evaluator, appCache, appMetrics, appLogger))
	api.POST("/fleet/analyze", handleAnalyzeFleet(evaluator, appMetrics, appLogger))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "workers", cfg.Workers)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// handleHealth godoc
// @Summary Service health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func handleHealth(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"metrics":   metrics.GetStats(),
		})
	}
}

// handleMetrics godoc
// @Summary Application metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics [get]
func handleMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetStats())
	}
}

// handleAnalyzeWell godoc
// @Summary Fit and classify a single well
// @Accept json
// @Produce json
// @Param request body types.WellAnalysisRequest true "well history and signals"
// @Success 200 {object} types.WellAnalysisResponse
// @Failure 400 {object} map[string]interface{}
// @Router /wells/analyze [post]
func handleAnalyzeWell(evaluator *fleet.Evaluator, appCache *cache.Cache, metrics *monitoring.Metrics, logger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		key := cache.Key(body)
		if cached, ok := appCache.Get(key); ok {
			metrics.IncrementCacheHit()
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		metrics.IncrementCacheMiss()

		var req types.WellAnalysisRequest
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
			return
		}

		resp, err := evaluator.EvaluateWell(req)
		if err != nil {
			c.Error(err)
			c.JSON(valerr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		resp.RequestID = monitoring.RequestID(c)

		metrics.RecordEvaluation(resp.Fit, resp.Classification)
		logger.EvaluationLogger(req.WellID, string(resp.Fit.CurveType), string(resp.Classification.Severity),
			resp.Fit.MonthsOfData, time.Since(start), false)

		payload, err := json.Marshal(resp)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode response"})
			return
		}
		appCache.Set(key, payload)
		c.Data(http.StatusOK, "application/json", payload)
	}
}

// handleAnalyzeFleet godoc
// @Summary Fit and classify a fleet of wells
// @Accept json
// @Produce json
// @Param request body types.FleetAnalysisRequest true "per-well histories and signals"
// @Success 200 {object} types.FleetAnalysisResponse
// @Failure 400 {object} map[string]interface{}
// @Router /fleet/analyze [post]
func handleAnalyzeFleet(evaluator *fleet.Evaluator, metrics *monitoring.Metrics, logger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req types.FleetAnalysisRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		results, summary := evaluator.EvaluateFleet(ctx, req.Wells)
		for i := range results {
			metrics.RecordEvaluation(results[i].Fit, results[i].Classification)
		}
		logger.FleetLogger(len(results), summary.CriticalFlagCount, time.Since(start))

		c.JSON(http.StatusOK, types.FleetAnalysisResponse{
			RequestID: monitoring.RequestID(c),
			Results:   results,
			Summary:   summary,
		})
	}
}
