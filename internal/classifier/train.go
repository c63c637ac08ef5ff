package classifier

import (
	"errors"

	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/mlmodel"
)

var ErrNoTrainedModel = errors.New("no trained local model")

// Train fits a new local model and installs it. The model is built without
// holding the lock; only the swap excludes concurrent classification.
func (c *Classifier) Train(texts []string, labels []int) (mlmodel.Report, error) {
	m, report, err := mlmodel.Train(texts, labels)
	if err != nil {
		return report, err
	}

	c.setLocal(m)

	c.logger.Info("Local model trained",
		zap.Int("samples", report.Samples),
		zap.Int("test_size", report.TestSize),
		zap.Float64("accuracy", report.Accuracy),
		zap.Int("vocabulary", report.Vocabulary))

	return report, nil
}

// SaveModel writes the installed in-process model to path.
func (c *Classifier) SaveModel(path string) error {
	c.mu.RLock()
	m, ok := c.local.(*mlmodel.Model)
	c.mu.RUnlock()

	if !ok || !m.Trained() {
		return ErrNoTrainedModel
	}
	if err := m.Save(path); err != nil {
		return err
	}

	c.logger.Info("Local model saved", zap.String("path", path))
	return nil
}

// LoadModel reads a model written by SaveModel and installs it.
func (c *Classifier) LoadModel(path string) error {
	m, err := mlmodel.Load(path)
	if err != nil {
		return err
	}

	c.setLocal(m)

	c.logger.Info("Local model loaded", zap.String("path", path))
	return nil
}
