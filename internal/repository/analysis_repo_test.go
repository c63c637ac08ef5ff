package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "analysis.db")
	s, err := Open(DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate())
	// second run is a no-op
	require.NoError(t, s.Migrate())
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever", zap.NewNop())
	assert.Error(t, err)
}

func TestSaveAndListAnalyses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recs := []*models.AnalysisRecord{
		{Platform: "telegram", Content: "a", Label: models.LabelNormal, Confidence: 0.1, RiskLevel: models.RiskNone, Keywords: nil, AnalysisMethod: "rule_based", CreatedAt: base},
		{Platform: "vk", Content: "b", Label: models.LabelExtremist, Confidence: 0.9, RiskScore: 26, RiskLevel: models.RiskCritical, Keywords: models.StringList{"взрыв", "убью"}, AnalysisMethod: "rule_based", CreatedAt: base.Add(time.Minute)},
		{Platform: "vk", Content: "c", Label: models.LabelExtremist, Confidence: 0.7, RiskScore: 12, RiskLevel: models.RiskMedium, AnalysisMethod: "rule_based", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range recs {
		require.NoError(t, s.SaveAnalysis(ctx, r))
		assert.NotZero(t, r.ID)
	}

	all, err := s.ListAnalyses(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Content)
	assert.Equal(t, models.StringList{}, all[2].Keywords)

	extremist, err := s.ListAnalyses(ctx, models.LabelExtremist, 1, 1)
	require.NoError(t, err)
	require.Len(t, extremist, 1)
	assert.Equal(t, "b", extremist[0].Content)
	assert.Equal(t, models.StringList{"взрыв", "убью"}, extremist[0].Keywords)
	assert.Equal(t, models.RiskCritical, extremist[0].RiskLevel)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.LabelExtremist, stats[0].Label)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.InDelta(t, 0.8, stats[0].AvgConfidence, 1e-9)
	assert.Equal(t, models.LabelNormal, stats[1].Label)
}

func TestJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := &models.Job{
		ID:         "job-1",
		Status:     models.JobPending,
		TotalCount: 3,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.CreateJob(ctx, job))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	done := time.Now().UTC()
	job.Status = models.JobCompleted
	job.ProcessedCount = 2
	job.FailedCount = 1
	job.CompletedAt = &done
	require.NoError(t, s.UpdateJob(ctx, job))

	got, err = s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, got.Status)
	assert.Equal(t, 2, got.ProcessedCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.NotNil(t, got.CompletedAt)

	_, err = s.GetJob(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.UpdateJob(ctx, &models.Job{ID: "missing", Status: models.JobFailed})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
