package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/classifier"
	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
	"github.com/nikola254/breaking-news-sub000/internal/models"
)

type memStore struct {
	mu        sync.Mutex
	records   []models.AnalysisRecord
	jobs      map[string]models.Job
	failSave  bool
	updateLog []string
}

func newMemStore() *memStore {
	return &memStore{jobs: map[string]models.Job{}}
}

func (m *memStore) SaveAnalysis(_ context.Context, rec *models.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStore) ListAnalyses(_ context.Context, label models.Label, _, _ int) ([]models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AnalysisRecord{}
	for _, r := range m.records {
		if label == "" || r.Label == label {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Stats(context.Context) ([]models.LabelStat, error) {
	return []models.LabelStat{}, nil
}

func (m *memStore) CreateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memStore) UpdateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	m.updateLog = append(m.updateLog, job.Status)
	return nil
}

func (m *memStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &job, nil
}

type countingRecorder struct {
	mu              sync.Mutex
	classifications int
	jobs            []string
}

func (r *countingRecorder) ObserveClassification(string, string, bool, time.Duration) {
	r.mu.Lock()
	r.classifications++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveJob(status string) {
	r.mu.Lock()
	r.jobs = append(r.jobs, status)
	r.mu.Unlock()
}

func newTestAnalyzer(t *testing.T, store Store, rec Recorder) *Analyzer {
	t.Helper()
	c, err := classifier.New(lexicon.MustCompile(lexicon.Default()), zap.NewNop())
	require.NoError(t, err)
	return NewAnalyzer(c, store, rec, zap.NewNop())
}

func TestAnalyze_Persists(t *testing.T) {
	store := newMemStore()
	rec := &countingRecorder{}
	a := newTestAnalyzer(t, store, rec)

	saved, res, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		Platform: "telegram",
		Author:   "@someone",
		URL:      "https://t.me/c/1",
		Text:     "Я убью всех врагов, скоро будет взрыв",
		Metadata: []byte(`{"chat_id":1}`),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, models.LabelExtremist, saved.Label)
	assert.Equal(t, res.RiskScore, saved.RiskScore)
	assert.Equal(t, models.RiskCritical, saved.RiskLevel)
	assert.Equal(t, models.StringList(res.Keywords), saved.Keywords)
	assert.Equal(t, "https://t.me/c/1", saved.SourceURL)
	assert.Equal(t, `{"chat_id":1}`, saved.Metadata)
	assert.Equal(t, 1, rec.classifications)
}

func TestAnalyze_SaveError(t *testing.T) {
	store := newMemStore()
	store.failSave = true
	a := newTestAnalyzer(t, store, nil)

	_, res, err := a.Analyze(context.Background(), models.AnalyzeRequest{Platform: "vk", Text: "бомба"})
	assert.Error(t, err)
	// the classification itself is still returned
	assert.Equal(t, models.LabelSuspicious, res.Label)
}

func TestAnalyzeBatch(t *testing.T) {
	store := newMemStore()
	rec := &countingRecorder{}
	a := newTestAnalyzer(t, store, rec)

	ctx, cancel := context.WithCancel(context.Background())
	jobID, err := a.AnalyzeBatch(ctx, []models.AnalyzeRequest{
		{Platform: "vk", Text: "обычный текст про погоду"},
		{Platform: "vk", Text: "скоро будет взрыв"},
		{Platform: "vk", Text: ""},
	})
	require.NoError(t, err)
	// cancelling the request context must not abort the job
	cancel()
	a.Wait()

	job, err := a.GetJobStatus(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, 3, job.TotalCount)
	assert.Equal(t, 3, job.ProcessedCount)
	assert.Zero(t, job.FailedCount)
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, models.JobProcessing, store.updateLog[0])
	assert.Equal(t, []string{models.JobCompleted}, rec.jobs)

	all, err := a.ListAnalyses(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAnalyzeBatch_AllFail(t *testing.T) {
	store := newMemStore()
	store.failSave = true
	a := newTestAnalyzer(t, store, nil)

	jobID, err := a.AnalyzeBatch(context.Background(), []models.AnalyzeRequest{{Platform: "vk", Text: "x"}})
	require.NoError(t, err)
	a.Wait()

	job, err := a.GetJobStatus(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, 1, job.FailedCount)
	assert.NotEmpty(t, job.ErrorMessage)
}

func TestPassthroughs(t *testing.T) {
	a := newTestAnalyzer(t, newMemStore(), nil)
	ctx := context.Background()

	assessment := a.ExtremismPercentage(ctx, "Я убью всех врагов, скоро будет взрыв")
	assert.Equal(t, models.MethodLocal, assessment.Method)
	assert.Equal(t, 86, assessment.ExtremismPercentage)

	items := a.BatchClassify(ctx, []string{"a", "b"})
	assert.Len(t, items, 2)
}
