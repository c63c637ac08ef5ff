package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/classifier"
	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
	"github.com/nikola254/breaking-news-sub000/internal/metrics"
	"github.com/nikola254/breaking-news-sub000/internal/models"
	"github.com/nikola254/breaking-news-sub000/internal/repository"
	"github.com/nikola254/breaking-news-sub000/internal/service"
)

const threatText = "Я убью всех врагов, скоро будет взрыв"

type testServer struct {
	router   *gin.Engine
	analyzer *service.Analyzer
}

func newTestServer(t *testing.T, checks map[string]HealthCheckFunc) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.Open(repository.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())

	c, err := classifier.New(lexicon.MustCompile(lexicon.Default()), zap.NewNop())
	require.NoError(t, err)

	m := metrics.New()
	analyzer := service.NewAnalyzer(c, store, m, zap.NewNop())

	if checks == nil {
		checks = map[string]HealthCheckFunc{"database": store.Ping}
	}

	router := gin.New()
	NewHandler(analyzer, checks, m.Handler(), zap.NewNop()).RegisterRoutes(router)
	return &testServer{router: router, analyzer: analyzer}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/classify", gin.H{"text": threatText})
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.ClassificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, models.LabelExtremist, res.Label)
	assert.Equal(t, models.RiskCritical, res.RiskLevel)
	assert.Equal(t, 86, res.ExtremismPercentage)

	// nothing persisted
	list := s.do(t, http.MethodGet, "/api/v1/analyses", nil)
	assert.Contains(t, list.Body.String(), `"total":0`)
}

func TestClassify_BadJSON(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyBatch(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/classify/batch", gin.H{"texts": []string{threatText, "погода хорошая"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []models.BatchItem `json:"results"`
		Total   int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, models.LabelNormal, body.Results[1].Result.Label)

	rec = s.do(t, http.MethodPost, "/api/v1/classify/batch", gin.H{"texts": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtremismPercentage(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/extremism-percentage", gin.H{"text": threatText})
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.ExtremismAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 86, res.ExtremismPercentage)
	assert.Equal(t, models.MethodLocal, res.Method)
}

func TestAnalyzeAndList(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"platform": "telegram", "text": threatText})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)

	rec = s.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"platform": "vk", "text": "обычный пост"})
	require.Equal(t, http.StatusOK, rec.Code)

	// platform is required
	rec = s.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/analyses?label=extremist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Analyses []models.AnalysisRecord `json:"analyses"`
		Total    int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "telegram", list.Analyses[0].Platform)

	rec = s.do(t, http.MethodGet, "/api/v1/analyses?label=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/analyses?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/analyses/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Labels []models.LabelStat `json:"labels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Len(t, stats.Labels, 2)
}

func TestAnalyzeBatchJob(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/analyze/batch", gin.H{"items": []gin.H{
		{"platform": "vk", "text": threatText},
		{"platform": "vk", "text": "всё спокойно"},
	}})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var started struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.JobID)

	s.analyzer.Wait()

	rec = s.do(t, http.MethodGet, "/api/v1/analyze/jobs/"+started.JobID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, 2, job.ProcessedCount)

	rec = s.do(t, http.MethodGet, "/api/v1/analyze/jobs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/analyze/batch", gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/analyze", gin.H{"platform": "telegram", "text": threatText})

	rec := s.do(t, http.MethodGet, "/api/v1/export/csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "text", rows[0][0])
	assert.Equal(t, threatText, rows[1][0])
	assert.Equal(t, "extremist", rows[1][1])
	assert.Equal(t, "critical", rows[1][4])
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	failing := newTestServer(t, map[string]HealthCheckFunc{
		"ml_service": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = failing.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/classify", gin.H{"text": threatText})

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `riskscore_classifications_total{label="extremist",method="rule_based"} 1`)
}
