package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nikola254/breaking-news-sub000/internal/llm"
	"github.com/nikola254/breaking-news-sub000/internal/models"
)

const (
	// remote agreement bonus, applied when the remote model is not confident enough to short-circuit
	remoteBonusPercentage = 50
	remoteBonusCap        = 10

	// remote disagreement damping
	remoteLowPercentage = 20
	remoteDampFloor     = 15
	remoteDampFactor    = 0.8

	localModelWeight      = 10
	localModelDefaultProb = 0.5

	// confidence above this maps a short-circuited verdict to high, otherwise critical
	shortCircuitHighConfidence = 0.7
)

// Classify produces the final classification of text. It never fails: remote
// and local model errors degrade to the rule-based result.
func (c *Classifier) Classify(ctx context.Context, text string) models.ClassificationResult {
	return c.classify(ctx, text, true)
}

func (c *Classifier) classify(ctx context.Context, text string, useRemote bool) models.ClassificationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	rb := analyzeRuleBased(c.lex, text, now)

	var (
		verdict  *llm.Verdict
		degraded bool
	)
	if useRemote && c.remote != nil && strings.TrimSpace(text) != "" {
		v, err := c.remote.Judge(ctx, text)
		switch {
		case err != nil:
			degraded = true
			c.logger.Warn("Remote model unavailable, using rule-based result", zap.Error(err))
		case v == nil:
			degraded = true
			c.logger.Warn("Remote model returned no verdict, using rule-based result")
		default:
			verdict = v
		}
	}

	if verdict != nil && verdict.IsExtremist && verdict.Confidence > c.threshold {
		return c.remoteResult(text, rb, verdict, now)
	}

	score := rb.RiskScore
	methods := []string{models.MethodRuleBased}
	factors := append([]string{}, rb.RiskFactors...)
	keywords := dedupe(rb.FoundKeywords)

	if verdict != nil {
		methods = append(methods, models.MethodRemoteModel)
		keywords = dedupe(append(keywords, verdict.Keywords...))

		switch {
		case verdict.IsExtremist && verdict.Percentage > remoteBonusPercentage && score > 0:
			bonus := math.Min(verdict.Percentage/10, remoteBonusCap)
			score += bonus
			factors = append(factors, fmt.Sprintf("remote model agrees: +%.1f", bonus))
		case !verdict.IsExtremist && verdict.Percentage < remoteLowPercentage && score > remoteDampFloor:
			score *= remoteDampFactor
			factors = append(factors, "remote model disagrees (risk reduced)")
		}
	}

	level := models.RiskLevelForScore(score)
	if c.local != nil {
		p, err := c.local.Predict(ctx, text)
		if err != nil {
			c.logger.Debug("Local model skipped", zap.Error(err))
		} else {
			methods = append(methods, models.MethodML)
			if p.Prediction == 1 {
				prob := localModelDefaultProb
				if p.Probability != nil {
					prob = *p.Probability
				}
				score += localModelWeight * prob
				factors = append(factors, fmt.Sprintf("local model: +%.2f", localModelWeight*prob))
			}

			mlLevel := p.RiskLevel
			if !mlLevel.Valid() {
				mlLevel = models.MLRiskLevel(p.Prediction, p.Probability)
			}
			level = models.MaxRiskLevel(models.RiskLevelForScore(score), mlLevel)
		}
	}

	score = round2(score)
	label, confidence := models.LabelForScore(score)

	return models.ClassificationResult{
		Label:               label,
		Confidence:          confidence,
		Keywords:            keywords,
		RiskScore:           score,
		RiskLevel:           level,
		ExtremismPercentage: percentageForScore(score),
		HighlightedText:     highlight(c.lex, text, keywords),
		ThreatColor:         models.ThreatColor(label, confidence),
		Explanation:         explain(label, factors, verdict),
		RiskFactors:         factors,
		AnalysisMethod:      strings.Join(methods, "+"),
		Degraded:            degraded,
		AnalyzedAt:          now,
	}
}

// remoteResult builds the terminal result of a confident extremist verdict.
func (c *Classifier) remoteResult(text string, rb models.RuleBasedResult, v *llm.Verdict, now time.Time) models.ClassificationResult {
	level := models.RiskCritical
	if v.Confidence > shortCircuitHighConfidence {
		level = models.RiskHigh
	}

	keywords := dedupe(append(append([]string{}, rb.FoundKeywords...), v.Keywords...))

	explanation := v.Explanation
	if explanation == "" {
		explanation = fmt.Sprintf("remote model: %.0f%% extremism", v.Percentage)
	}

	return models.ClassificationResult{
		Label:               models.LabelExtremist,
		Confidence:          v.Confidence,
		Keywords:            keywords,
		RiskScore:           round2(rb.RiskScore),
		RiskLevel:           level,
		ExtremismPercentage: int(math.Round(v.Percentage)),
		HighlightedText:     highlight(c.lex, text, keywords),
		ThreatColor:         models.ThreatColor(models.LabelExtremist, v.Confidence),
		Explanation:         explanation,
		RiskFactors:         append([]string{}, rb.RiskFactors...),
		AnalysisMethod:      models.MethodRemoteModel,
		AnalyzedAt:          now,
	}
}

func explain(label models.Label, factors []string, v *llm.Verdict) string {
	parts := make([]string, 0, 2)
	if len(factors) == 0 {
		parts = append(parts, "no risk indicators found")
	} else {
		parts = append(parts, strings.Join(factors, "; "))
	}
	if v != nil && v.Explanation != "" {
		parts = append(parts, "remote model: "+v.Explanation)
	}
	return fmt.Sprintf("%s: %s", label, strings.Join(parts, " | "))
}

// dedupe drops repeated strings, keeping first occurrences in order.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
