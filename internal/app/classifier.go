// Package app assembles a classifier from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/classifier"
	"github.com/nikola254/breaking-news-sub000/internal/config"
	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
	"github.com/nikola254/breaking-news-sub000/internal/llm"
	"github.com/nikola254/breaking-news-sub000/internal/ml_client"
)

// Built is a configured classifier plus the collaborators it was wired with.
type Built struct {
	Classifier *classifier.Classifier
	Remote     *llm.Client       // nil when the remote model is disabled
	MLService  *ml_client.Client // nil unless local_model.source is "service"
}

// BuildClassifier compiles the lexicon and wires the configured remote and local models.
// A missing naive Bayes model file is not an error; the classifier runs without it.
func BuildClassifier(cfg *config.Config, logger *zap.Logger, observer llm.Observer) (*Built, error) {
	raw := lexicon.Default()
	if cfg.Classifier.LexiconPath != "" {
		loaded, err := lexicon.Load(cfg.Classifier.LexiconPath)
		if err != nil {
			return nil, err
		}
		raw = loaded
		logger.Info("Lexicon loaded", zap.String("path", cfg.Classifier.LexiconPath))
	}

	lex, err := lexicon.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compile lexicon: %w", err)
	}

	b := &Built{}
	opts := []classifier.Option{classifier.WithExtremistThreshold(cfg.Classifier.ExtremistThreshold)}

	if cfg.RemoteModel.Enabled {
		rm := cfg.RemoteModel
		b.Remote, err = llm.NewClient(llm.Config{
			BaseURL:           rm.BaseURL,
			APIKey:            rm.APIKey,
			Model:             rm.Model,
			MaxTokens:         rm.MaxTokens,
			Temperature:       rm.Temperature,
			Timeout:           rm.Timeout,
			MaxInputChars:     rm.MaxInputChars,
			RequestsPerMinute: rm.RequestsPerMinute,
			MaxFailures:       rm.MaxFailures,
			Cooldown:          rm.Cooldown,
			CacheSize:         rm.CacheSize,
			CacheTTL:          rm.CacheTTL,
		}, logger, observer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remote model client: %w", err)
		}
		opts = append(opts, classifier.WithRemote(b.Remote))
	}

	if cfg.LocalModel.Source == config.LocalModelService {
		b.MLService = ml_client.NewClient(cfg.LocalModel.ServiceURL, cfg.LocalModel.Timeout)
		opts = append(opts, classifier.WithLocalModel(b.MLService))
		logger.Info("Using ML service as local model", zap.String("url", cfg.LocalModel.ServiceURL))
	}

	b.Classifier, err = classifier.New(lex, logger, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.LocalModel.Source == config.LocalModelNaiveBayes {
		err := b.Classifier.LoadModel(cfg.LocalModel.ModelPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("Local model file not found, continuing without it",
				zap.String("path", cfg.LocalModel.ModelPath))
		case err != nil:
			return nil, fmt.Errorf("failed to load local model: %w", err)
		}
	}

	return b, nil
}

// MLServiceCheck adapts the ML service health endpoint to a plain error check.
func MLServiceCheck(c *ml_client.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		health, err := c.HealthCheck(ctx)
		if err != nil {
			return err
		}
		if !health.ModelLoaded {
			return fmt.Errorf("ml service %s: model not loaded", health.Status)
		}
		return nil
	}
}
