package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/models"
	"github.com/nikola254/breaking-news-sub000/internal/repository"
	"github.com/nikola254/breaking-news-sub000/internal/service"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
	maxBatchTexts   = 500
	healthTimeout   = 2 * time.Second
)

// HealthCheckFunc reports whether one dependency is usable.
type HealthCheckFunc func(ctx context.Context) error

// Handler handles HTTP requests
type Handler struct {
	analyzer *service.Analyzer
	checks   map[string]HealthCheckFunc
	metrics  http.Handler
	logger   *zap.Logger
}

// NewHandler creates a new API handler. checks are run by /health;
// metrics may be nil to disable /metrics.
func NewHandler(analyzer *service.Analyzer, checks map[string]HealthCheckFunc, metrics http.Handler, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		checks:   checks,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Stateless scoring
		api.POST("/classify", h.Classify)
		api.POST("/classify/batch", h.ClassifyBatch)
		api.POST("/extremism-percentage", h.ExtremismPercentage)

		// Scoring with persistence
		api.POST("/analyze", h.Analyze)
		api.POST("/analyze/batch", h.AnalyzeBatch)
		api.GET("/analyze/jobs/:id", h.GetJobStatus)

		// Data retrieval
		api.GET("/analyses", h.ListAnalyses)
		api.GET("/analyses/stats", h.GetStats)

		// Export
		api.GET("/export/csv", h.ExportCSV)
	}

	r.GET("/health", h.HealthCheck)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}
}

type batchClassifyRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
}

// Classify scores a text without storing it
func (h *Handler) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.analyzer.Classify(c.Request.Context(), req.Text))
}

// ClassifyBatch scores many texts synchronously
func (h *Handler) ClassifyBatch(c *gin.Context) {
	var req batchClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Texts) > maxBatchTexts {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d texts per request", maxBatchTexts)})
		return
	}

	results := h.analyzer.BatchClassify(c.Request.Context(), req.Texts)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// ExtremismPercentage returns the 0-100 estimate for a text
func (h *Handler) ExtremismPercentage(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.analyzer.ExtremismPercentage(c.Request.Context(), req.Text))
}

// Analyze classifies and stores a single item
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, result, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to analyze", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis could not be stored"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     record.ID,
		"result": result,
	})
}

// AnalyzeBatch starts an async batch analysis
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req models.BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.analyzer.AnalyzeBatch(c.Request.Context(), req.Items)
	if err != nil {
		h.logger.Error("Failed to start batch job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start batch job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"status":  models.JobPending,
		"message": "Batch analysis started. Check /api/v1/analyze/jobs/" + jobID + " for status",
	})
}

// GetJobStatus returns batch job status
func (h *Handler) GetJobStatus(c *gin.Context) {
	job, err := h.analyzer.GetJobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("Failed to get job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListAnalyses returns stored analyses, optionally filtered by ?label=
func (h *Handler) ListAnalyses(c *gin.Context) {
	label, ok := parseLabel(c.Query("label"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid label (must be normal, suspicious or extremist)"})
		return
	}

	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit (must be 1-%d)", maxPageSize)})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	records, err := h.analyzer.ListAnalyses(c.Request.Context(), label, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": records,
		"label":    label,
		"total":    len(records),
	})
}

// GetStats returns per-label statistics
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.analyzer.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"labels": stats})
}

// ExportCSV exports stored analyses to CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	label, ok := parseLabel(c.Query("label"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid label"})
		return
	}

	records, err := h.analyzer.ListAnalyses(c.Request.Context(), label, 0, 0)
	if err != nil {
		h.logger.Error("Failed to export CSV", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=analyses.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"text", "label", "confidence", "risk_score", "risk_level", "keywords", "platform", "created_at"})

	for _, r := range records {
		writer.Write([]string{
			r.Content,
			string(r.Label),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			strconv.FormatFloat(r.RiskScore, 'f', 2, 64),
			string(r.RiskLevel),
			strings.Join(r.Keywords, ";"),
			r.Platform,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "risk-scoring-service",
		"checks":  results,
	})
}

func parseLabel(raw string) (models.Label, bool) {
	switch l := models.Label(strings.ToLower(strings.TrimSpace(raw))); l {
	case "", models.LabelNormal, models.LabelSuspicious, models.LabelExtremist:
		return l, true
	default:
		return "", false
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
