// Package classifier scores texts for extremist content.
//
// A Classifier tallies weighted keyword and pattern hits, then optionally
// blends in a remote language model verdict and a local statistical model.
// The rule-based score is always computed and is the fallback whenever the
// other sources are missing or fail.
package classifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
	"github.com/nikola254/breaking-news-sub000/internal/llm"
	"github.com/nikola254/breaking-news-sub000/internal/models"
)

// DefaultExtremistThreshold is the remote confidence above which an
// extremist verdict short-circuits rule-based blending.
const DefaultExtremistThreshold = 0.5

var ErrNilLexicon = errors.New("classifier requires a compiled lexicon")

// Judge is the remote model collaborator. Any error means the remote model is unavailable.
type Judge interface {
	Judge(ctx context.Context, text string) (*llm.Verdict, error)
}

// LocalModel is the optional local statistical model.
type LocalModel interface {
	Predict(ctx context.Context, text string) (models.MLPrediction, error)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRemote enables the remote model.
func WithRemote(j Judge) Option {
	return func(c *Classifier) { c.remote = j }
}

// WithLocalModel sets the local statistical model.
func WithLocalModel(m LocalModel) Option {
	return func(c *Classifier) { c.local = m }
}

// WithExtremistThreshold overrides DefaultExtremistThreshold.
func WithExtremistThreshold(t float64) Option {
	return func(c *Classifier) { c.threshold = t }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// Classifier is safe for concurrent use. Training and model loading take an
// exclusive lock, so they never overlap with classification.
type Classifier struct {
	lex       *lexicon.Compiled
	remote    Judge
	threshold float64
	now       func() time.Time
	logger    *zap.Logger

	mu    sync.RWMutex
	local LocalModel
}

// New creates a classifier over a compiled lexicon.
func New(lex *lexicon.Compiled, logger *zap.Logger, opts ...Option) (*Classifier, error) {
	if lex == nil {
		return nil, ErrNilLexicon
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Classifier{
		lex:       lex,
		threshold: DefaultExtremistThreshold,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ExtractFeatures computes the keyword tally feature vector of text.
func (c *Classifier) ExtractFeatures(text string) models.FeatureVector {
	return extractFeatures(c.lex, text)
}

// AnalyzeRuleBased scores text using the keyword and pattern rules only.
func (c *Classifier) AnalyzeRuleBased(text string) models.RuleBasedResult {
	return analyzeRuleBased(c.lex, text, c.now())
}

// HasRemote reports whether a remote model is configured.
func (c *Classifier) HasRemote() bool {
	return c.remote != nil
}

// HasLocalModel reports whether a local model is currently installed.
func (c *Classifier) HasLocalModel() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local != nil
}

func (c *Classifier) setLocal(m LocalModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = m
}
