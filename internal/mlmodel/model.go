package mlmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

var ErrNotTrained = errors.New("model not trained")

const formatVersion = 1

// Model is a binary multinomial naive Bayes classifier over unigram and
// bigram tokens with Laplace smoothing. Class 1 is extremist content.
// A trained Model is read-only and safe for concurrent use.
type Model struct {
	Version     int               `json:"version"`
	DocCounts   [2]int            `json:"doc_counts"`
	TokenTotals [2]int            `json:"token_totals"`
	Counts      [2]map[string]int `json:"counts"`
	Vocabulary  int               `json:"vocabulary"`
}

func newModel() *Model {
	return &Model{
		Version: formatVersion,
		Counts:  [2]map[string]int{{}, {}},
	}
}

// Trained reports whether the model has seen both classes.
func (m *Model) Trained() bool {
	return m != nil && m.DocCounts[0] > 0 && m.DocCounts[1] > 0
}

// Predict returns the most likely class of text and the probability of class 1.
func (m *Model) Predict(_ context.Context, text string) (models.MLPrediction, error) {
	if !m.Trained() {
		return models.MLPrediction{}, ErrNotTrained
	}

	p := m.positiveProbability(Tokenize(text))
	prediction := 0
	if p >= 0.5 {
		prediction = 1
	}
	return models.MLPrediction{
		Prediction:  prediction,
		Probability: &p,
		RiskLevel:   models.MLRiskLevel(prediction, &p),
	}, nil
}

func (m *Model) positiveProbability(tokens []string) float64 {
	docs := float64(m.DocCounts[0] + m.DocCounts[1])
	vocab := float64(m.Vocabulary)

	var logp [2]float64
	for class := 0; class < 2; class++ {
		logp[class] = math.Log(float64(m.DocCounts[class]) / docs)
		denom := float64(m.TokenTotals[class]) + vocab
		for _, tok := range tokens {
			logp[class] += math.Log((float64(m.Counts[class][tok]) + 1) / denom)
		}
	}

	// softmax over two classes
	return 1 / (1 + math.Exp(logp[0]-logp[1]))
}

func (m *Model) add(text string, label int) {
	m.DocCounts[label]++
	for _, tok := range Tokenize(text) {
		m.Counts[label][tok]++
		m.TokenTotals[label]++
	}
}

func (m *Model) finalize() {
	vocab := make(map[string]struct{}, len(m.Counts[0])+len(m.Counts[1]))
	for class := 0; class < 2; class++ {
		for tok := range m.Counts[class] {
			vocab[tok] = struct{}{}
		}
	}
	m.Vocabulary = len(vocab)
}

// Save writes the model as JSON. The file is replaced atomically.
func (m *Model) Save(path string) error {
	if !m.Trained() {
		return ErrNotTrained
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	m := newModel()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}
	if m.Version != formatVersion {
		return nil, fmt.Errorf("unsupported model version %d", m.Version)
	}
	for class := 0; class < 2; class++ {
		if m.Counts[class] == nil {
			m.Counts[class] = map[string]int{}
		}
	}
	if !m.Trained() {
		return nil, ErrNotTrained
	}
	return m, nil
}
