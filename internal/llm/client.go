package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Outcomes reported to an Observer besides the failure reasons.
const (
	OutcomeOK       = "ok"
	OutcomeCacheHit = "cache_hit"
)

// Observer receives the outcome of every Judge call.
type Observer interface {
	ObserveRemote(outcome string)
}

// Config for the remote model client
type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
	MaxInputChars int

	RequestsPerMinute int
	MaxFailures       int
	Cooldown          time.Duration

	CacheSize int
	CacheTTL  time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// Client asks an OpenAI-compatible chat-completions endpoint for an extremism verdict.
// Every call is a single attempt bounded by Config.Timeout.
type Client struct {
	completions openai.ChatCompletionService
	cfg         Config
	guard       *Guard
	limiter     *rate.Limiter
	cache       *verdictCache
	observer    Observer
	logger      *zap.Logger
}

// NewClient creates a new remote model client
func NewClient(cfg Config, logger *zap.Logger, observer Observer) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	if cfg.Model == "" {
		cfg.Model = "Qwen/Qwen3-Coder-480B-A35B-Instruct"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxInputChars == 0 {
		cfg.MaxInputChars = 1000
	}

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := openai.NewClient(opts...)

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}

	logger.Info("Remote model client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute))

	return &Client{
		completions: client.Chat.Completions,
		cfg:         cfg,
		guard:       NewGuard(cfg.MaxFailures, cfg.Cooldown, logger),
		limiter:     limiter,
		cache:       newVerdictCache(cfg.CacheSize, cfg.CacheTTL),
		observer:    observer,
		logger:      logger,
	}, nil
}

// Judge sends text to the remote model and returns its verdict.
// Every failure is an *UnavailableError matching ErrRemoteUnavailable.
func (c *Client) Judge(ctx context.Context, text string) (*Verdict, error) {
	input := Truncate(text, c.cfg.MaxInputChars)

	if v, ok := c.cache.get(input); ok {
		c.observe(OutcomeCacheHit)
		return v, nil
	}

	if !c.guard.Allow() {
		return nil, c.fail(unavailable(ReasonCircuitOpen, nil), false)
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, c.fail(unavailable(ReasonRateLimited, nil), false)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(BuildPrompt(input)),
					},
				},
			},
		},
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
	})
	if err != nil {
		return nil, c.fail(classifyError(ctx, err), true)
	}

	if len(resp.Choices) == 0 {
		return nil, c.fail(unavailable(ReasonMalformed, errors.New("response has no choices")), true)
	}

	verdict, err := ParseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, c.fail(unavailable(ReasonMalformed, err), true)
	}

	c.guard.RecordSuccess()
	c.cache.put(input, verdict)
	c.observe(OutcomeOK)

	c.logger.Debug("Remote model verdict",
		zap.Float64("extremism_percentage", verdict.Percentage),
		zap.Bool("is_extremist", verdict.IsExtremist))

	return verdict, nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":      "openai-compatible",
		"model":         c.cfg.Model,
		"timeout":       c.cfg.Timeout.String(),
		"failure_count": c.guard.Failures(),
		"cached":        c.cache.len(),
	}
}

func (c *Client) fail(err *UnavailableError, countFailure bool) error {
	if countFailure {
		c.guard.RecordFailure()
	}
	c.observe(string(err.Reason))
	c.logger.Warn("Remote model unavailable",
		zap.String("reason", string(err.Reason)),
		zap.Error(err.Err))
	return err
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveRemote(outcome)
	}
}

func classifyError(ctx context.Context, err error) *UnavailableError {
	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr):
		return unavailable(ReasonBadStatus, fmt.Errorf("status %d: %w", apiErr.StatusCode, err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return unavailable(ReasonTimeout, err)
	default:
		return unavailable(ReasonTransport, err)
	}
}
