package classifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikola254/breaking-news-sub000/internal/lexicon"
	"github.com/nikola254/breaking-news-sub000/internal/models"
)

// Per-category weights of the keyword tally. Categories not listed weigh defaultWeight.
// The threat_patterns entry only applies to a dictionary category of that name;
// matched threat patterns are charged separately by threatPatternWeight.
var categoryWeights = map[string]float64{
	"terrorism":       8,
	"threat_patterns": 10,
	"violence":        6,
	"weapons":         5,
	"extremism":       4,
	"hate_speech":     3,
	"calls_to_action": 3,
}

const (
	defaultWeight = 2

	hatePatternWeight   = 8
	threatPatternWeight = 12

	capsRatioThreshold   = 0.5
	exclamationThreshold = 5
	adjustmentBonus      = 1

	newsDiscount        = 3
	newsDiscountCeiling = 15
)

func categoryWeight(category string) float64 {
	if w, ok := categoryWeights[category]; ok {
		return w
	}
	return defaultWeight
}

// analyzeRuleBased scores text with the weighted keyword and pattern rules.
// Rule order is fixed: category tallies, hate patterns, threat patterns,
// caps and punctuation adjustments, then the news-context discount.
func analyzeRuleBased(lex *lexicon.Compiled, text string, now time.Time) models.RuleBasedResult {
	features := extractFeatures(lex, text)
	lowered := strings.ToLower(text)

	var (
		score    float64
		factors  = []string{}
		keywords = []string{}
	)

	for _, category := range lex.Categories() {
		count := features.Count(category)
		if count <= 0 {
			continue
		}
		score += count * categoryWeight(category)
		factors = append(factors, fmt.Sprintf("%s: %d", category, int(count)))

		for _, kw := range lex.Keywords(category) {
			if kw.In(lowered) {
				keywords = append(keywords, kw.Phrase)
			}
		}
	}

	if n := features.Get(models.FeatureHateSpeechPatterns); n > 0 {
		score += n * hatePatternWeight
		factors = append(factors, fmt.Sprintf("hate speech patterns: %d", int(n)))
	}

	if n := features.Get(models.FeatureThreatPatterns); n > 0 {
		score += n * threatPatternWeight
		factors = append(factors, fmt.Sprintf("threat patterns: %d", int(n)))
	}

	if features.Get(models.FeatureCapsRatio) > capsRatioThreshold {
		score += adjustmentBonus
		factors = append(factors, "high share of capital letters")
	}

	if features.Get(models.FeatureExclamationCount) > exclamationThreshold {
		score += adjustmentBonus
		factors = append(factors, "repeated exclamation marks")
	}

	if score < newsDiscountCeiling && lex.HasNewsContext(lowered) {
		score -= newsDiscount
		if score < 0 {
			score = 0
		}
		factors = append(factors, "news context (risk reduced)")
	}

	return models.RuleBasedResult{
		RiskScore:      score,
		RiskLevel:      models.RiskLevelForScore(score),
		RiskFactors:    factors,
		FoundKeywords:  keywords,
		Features:       features,
		AnalysisMethod: models.MethodRuleBased,
		AnalysisDate:   now,
	}
}
