package classifier

import (
	"context"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

const previewLength = 200

// Preview shortens text to previewLength characters, marking the cut with "...".
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

// BatchAnalyze classifies every text in order. Each item carries a preview of its text.
func (c *Classifier) BatchAnalyze(ctx context.Context, texts []string) []models.BatchItem {
	items := make([]models.BatchItem, len(texts))
	for i, text := range texts {
		items[i] = models.BatchItem{
			Text:   Preview(text),
			Result: c.Classify(ctx, text),
		}
	}
	return items
}
