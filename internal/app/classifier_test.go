package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/config"
	"github.com/nikola254/breaking-news-sub000/internal/models"
)

func TestBuildClassifier_Defaults(t *testing.T) {
	b, err := BuildClassifier(config.Default(), zap.NewNop(), nil)
	require.NoError(t, err)

	assert.Nil(t, b.Remote)
	assert.Nil(t, b.MLService)
	assert.False(t, b.Classifier.HasRemote())
	assert.False(t, b.Classifier.HasLocalModel())

	res := b.Classifier.Classify(context.Background(), "Я убью всех врагов, скоро будет взрыв")
	assert.Equal(t, models.LabelExtremist, res.Label)
}

func TestBuildClassifier_LexiconFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: weapons
    keywords: [bomb]
`), 0o644))

	cfg := config.Default()
	cfg.Classifier.LexiconPath = path

	b, err := BuildClassifier(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bomb"}, b.Classifier.AnalyzeRuleBased("a bomb").FoundKeywords)

	cfg.Classifier.LexiconPath = filepath.Join(t.TempDir(), "missing.yml")
	_, err = BuildClassifier(cfg, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestBuildClassifier_Remote(t *testing.T) {
	cfg := config.Default()
	cfg.RemoteModel.Enabled = true
	cfg.RemoteModel.BaseURL = "http://127.0.0.1:1/v1"
	cfg.RemoteModel.APIKey = "k"

	b, err := BuildClassifier(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.NotNil(t, b.Remote)
	assert.True(t, b.Classifier.HasRemote())
}

func TestBuildClassifier_NaiveBayesMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.LocalModel.Source = config.LocalModelNaiveBayes
	cfg.LocalModel.ModelPath = filepath.Join(t.TempDir(), "model.json")

	b, err := BuildClassifier(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.False(t, b.Classifier.HasLocalModel())
}

func TestBuildClassifier_NaiveBayesSavedModel(t *testing.T) {
	cfg := config.Default()
	cfg.LocalModel.Source = config.LocalModelNaiveBayes
	cfg.LocalModel.ModelPath = filepath.Join(t.TempDir(), "model.json")

	trainer, err := BuildClassifier(config.Default(), zap.NewNop(), nil)
	require.NoError(t, err)
	_, err = trainer.Classifier.Train(
		[]string{"взорвать здание", "теракт завтра", "хорошая погода", "вкусный обед"},
		[]int{1, 1, 0, 0},
	)
	require.NoError(t, err)
	require.NoError(t, trainer.Classifier.SaveModel(cfg.LocalModel.ModelPath))

	b, err := BuildClassifier(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.True(t, b.Classifier.HasLocalModel())
}

func TestBuildClassifier_MLService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/health":
			w.Write([]byte(`{"status":"healthy","model_loaded":false}`))
		default:
			w.Write([]byte(`{"prediction":1,"probability":0.9}`))
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LocalModel.Source = config.LocalModelService
	cfg.LocalModel.ServiceURL = srv.URL

	b, err := BuildClassifier(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	require.NotNil(t, b.MLService)
	assert.True(t, b.Classifier.HasLocalModel())

	res := b.Classifier.Classify(context.Background(), "текст")
	assert.Equal(t, "rule_based+ml", res.AnalysisMethod)

	err = MLServiceCheck(b.MLService)(context.Background())
	assert.ErrorContains(t, err, "model not loaded")
}
