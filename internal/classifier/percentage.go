package classifier

import (
	"context"
	"math"
	"strings"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

const scoreToPercentage = 3.33

func percentageForScore(score float64) int {
	p := int(score * scoreToPercentage)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// ExtremismPercentage estimates how extremist text is on a 0-100 scale.
// The remote model answers when it is available; otherwise the local
// classification is rescaled.
func (c *Classifier) ExtremismPercentage(ctx context.Context, text string) models.ExtremismAssessment {
	if c.remote != nil && strings.TrimSpace(text) != "" {
		v, err := c.remote.Judge(ctx, text)
		if err == nil && v != nil {
			return models.ExtremismAssessment{
				ExtremismPercentage: int(math.Round(v.Percentage)),
				RiskLevel:           v.RiskLevel,
				DetectedKeywords:    append([]string{}, v.Keywords...),
				Explanation:         v.Explanation,
				Method:              models.MethodCloudAPI,
				Confidence:          math.Min(100, v.Percentage) / 100,
			}
		}
	}

	res := c.classify(ctx, text, false)
	return models.ExtremismAssessment{
		ExtremismPercentage: res.ExtremismPercentage,
		RiskLevel:           res.RiskLevel,
		DetectedKeywords:    res.Keywords,
		Explanation:         "local analysis: " + string(res.Label),
		Method:              models.MethodLocal,
		Confidence:          res.Confidence,
	}
}
