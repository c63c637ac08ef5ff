package ml_client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/classify/single", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req ClassifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "заложим бомбу", req.Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 1, "probability": 0.85}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	p, err := c.Predict(context.Background(), "заложим бомбу")
	require.NoError(t, err)

	assert.Equal(t, 1, p.Prediction)
	require.NotNil(t, p.Probability)
	assert.InDelta(t, 0.85, *p.Probability, 1e-9)
	assert.Equal(t, models.RiskHigh, p.RiskLevel)
}

func TestPredict_NullProbability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prediction": 1, "probability": null}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, time.Second).Predict(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, p.Probability)
	assert.Equal(t, models.RiskLow, p.RiskLevel)
}

func TestPredict_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		},
		"bad prediction": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"prediction": 7}`))
		},
		"bad probability": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"prediction": 1, "probability": 1.5}`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Predict(context.Background(), "x")
			assert.Error(t, err)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status": "healthy", "model_loaded": true}`))
	}))
	defer srv.Close()

	h, err := NewClient(srv.URL, time.Second).HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.ModelLoaded)
}
