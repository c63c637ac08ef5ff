package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
	"github.com/nikola254/breaking-news-sub000/internal/models"
)

// extractFeatures computes the feature vector of text against lex.
// The original text is never modified; matching runs on a lower-cased copy.
func extractFeatures(lex *lexicon.Compiled, text string) models.FeatureVector {
	lowered := strings.ToLower(text)
	wordCount := len(strings.Fields(text))

	features := make(models.FeatureVector, 2*len(lex.Categories())+8)

	for _, category := range lex.Categories() {
		count := 0
		for _, kw := range lex.Keywords(category) {
			count += kw.Count(lowered)
		}
		features[category+models.CountSuffix] = float64(count)

		density := 0.0
		if wordCount > 0 {
			density = float64(count) / float64(wordCount)
		}
		features[category+models.DensitySuffix] = density
	}

	features[models.FeatureHateSpeechPatterns] = float64(distinctMatches(lex.HateSpeechPatterns(), lowered))
	features[models.FeatureThreatPatterns] = float64(distinctMatches(lex.ThreatPatterns(), lowered))

	length := utf8.RuneCountInString(text)
	features[models.FeatureTextLength] = float64(length)
	features[models.FeatureWordCount] = float64(wordCount)
	features[models.FeatureExclamationCount] = float64(strings.Count(text, "!"))
	features[models.FeatureQuestionCount] = float64(strings.Count(text, "?"))
	features[models.FeatureCapsRatio] = capsRatio(text, length)
	features[models.FeatureEmotionalWords] = float64(lex.EmotionalWordCount(lowered))

	return features
}

// distinctMatches counts patterns that match at least once.
func distinctMatches(patterns []lexicon.Pattern, text string) int {
	n := 0
	for _, p := range patterns {
		if p.Matches(text) {
			n++
		}
	}
	return n
}

func capsRatio(text string, length int) float64 {
	if length == 0 {
		return 0
	}
	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(length)
}
