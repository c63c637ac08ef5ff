package mlmodel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

const (
	splitSeed     = 42
	testFraction  = 0.2
	minForHoldout = 5
)

var ErrInvalidTrainingData = errors.New("invalid training data")

// Report summarises one training run.
type Report struct {
	Samples    int     `json:"samples"`
	TrainSize  int     `json:"train_size"`
	TestSize   int     `json:"test_size"`
	Accuracy   float64 `json:"accuracy"`
	Vocabulary int     `json:"vocabulary"`
}

// Train fits a model on texts labelled 0 (normal) or 1 (extremist).
// A fixed-seed 80/20 split holds out data for the accuracy figure; with fewer
// than five samples the model is scored on its own training set.
func Train(texts []string, labels []int) (*Model, Report, error) {
	if len(texts) != len(labels) {
		return nil, Report{}, fmt.Errorf("%w: %d texts but %d labels", ErrInvalidTrainingData, len(texts), len(labels))
	}
	var seen [2]bool
	for i, l := range labels {
		if l != 0 && l != 1 {
			return nil, Report{}, fmt.Errorf("%w: label %d at index %d", ErrInvalidTrainingData, l, i)
		}
		seen[l] = true
	}
	if !seen[0] || !seen[1] {
		return nil, Report{}, fmt.Errorf("%w: both classes are required", ErrInvalidTrainingData)
	}

	order := rand.New(rand.NewSource(splitSeed)).Perm(len(texts))

	testSize := 0
	if len(texts) >= minForHoldout {
		testSize = int(float64(len(texts)) * testFraction)
	}
	testIdx, trainIdx := order[:testSize], order[testSize:]

	m := newModel()
	for _, i := range trainIdx {
		m.add(texts[i], labels[i])
	}
	if !m.Trained() {
		// the split starved one class; fall back to the full set
		m = newModel()
		for i := range texts {
			m.add(texts[i], labels[i])
		}
		trainIdx, testIdx = order, nil
	}
	m.finalize()

	evalIdx := testIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	correct := 0
	for _, i := range evalIdx {
		p, err := m.Predict(context.Background(), texts[i])
		if err == nil && p.Prediction == labels[i] {
			correct++
		}
	}

	return m, Report{
		Samples:    len(texts),
		TrainSize:  len(trainIdx),
		TestSize:   len(testIdx),
		Accuracy:   float64(correct) / float64(len(evalIdx)),
		Vocabulary: m.Vocabulary,
	}, nil
}
