package ml_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

// Client is a client for a self-hosted ML classification service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClassifyRequest represents a single text classification request
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse represents the service's binary judgement
type ClassifyResponse struct {
	Prediction       int      `json:"prediction"`
	Probability      *float64 `json:"probability"`
	ProcessingTimeMs float64  `json:"processing_time_ms,omitempty"`
}

// ModelInfo represents model information
type ModelInfo struct {
	ServiceName string                 `json:"service_name"`
	Version     string                 `json:"version"`
	Models      map[string]interface{} `json:"models"`
	Device      string                 `json:"device"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Message     string `json:"message"`
}

// NewClient creates a new ML service client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ClassifySingle classifies a single text
func (c *Client) ClassifySingle(ctx context.Context, text string) (*ClassifyResponse, error) {
	jsonData, err := json.Marshal(ClassifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/classify/single", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result ClassifyResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	if result.Prediction != 0 && result.Prediction != 1 {
		return nil, fmt.Errorf("ML service returned invalid prediction %d", result.Prediction)
	}
	if p := result.Probability; p != nil && (*p < 0 || *p > 1) {
		return nil, fmt.Errorf("ML service returned invalid probability %f", *p)
	}

	return &result, nil
}

// Predict implements the classifier's local model contract on top of ClassifySingle.
func (c *Client) Predict(ctx context.Context, text string) (models.MLPrediction, error) {
	resp, err := c.ClassifySingle(ctx, text)
	if err != nil {
		return models.MLPrediction{}, err
	}
	return models.MLPrediction{
		Prediction:  resp.Prediction,
		Probability: resp.Probability,
		RiskLevel:   models.MLRiskLevel(resp.Prediction, resp.Probability),
	}, nil
}

// HealthCheck checks if the ML service is healthy
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result HealthResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetModelInfo retrieves information about the loaded model
func (c *Client) GetModelInfo(ctx context.Context) (*ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/model/info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result ModelInfo
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ML service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
