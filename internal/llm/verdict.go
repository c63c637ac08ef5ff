package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikola254/breaking-news-sub000/internal/models"
)

// extremistPercentage is the cut-off used when the model omits is_extremist.
const extremistPercentage = 50

// Verdict is a parsed and normalised remote judgement.
type Verdict struct {
	Percentage  float64          `json:"extremism_percentage"`
	RiskLevel   models.RiskLevel `json:"risk_level"`
	Keywords    []string         `json:"detected_keywords"`
	Explanation string           `json:"explanation"`
	IsExtremist bool             `json:"is_extremist"`
	// Confidence is Percentage scaled to [0,1].
	Confidence float64 `json:"confidence"`
}

func (v Verdict) clone() *Verdict {
	v.Keywords = append([]string(nil), v.Keywords...)
	return &v
}

type verdictPayload struct {
	ExtremismPercentage json.RawMessage `json:"extremism_percentage"`
	RiskLevel           string          `json:"risk_level"`
	DetectedKeywords    []string        `json:"detected_keywords"`
	Explanation         string          `json:"explanation"`
	IsExtremist         *bool           `json:"is_extremist"`
}

// ParseVerdict decodes the JSON object the model returned as message content.
// Markdown fences around the object are tolerated. The percentage is clamped to
// [0,100] and the risk level is re-derived from it; a percentage that is not a
// number counts as 0. A missing percentage is an error.
func ParseVerdict(content string) (*Verdict, error) {
	body := extractJSON(content)
	if body == "" {
		return nil, errors.New("empty content")
	}

	var p verdictPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %w", err)
	}

	raw := bytes.TrimSpace(p.ExtremismPercentage)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("verdict has no extremism_percentage")
	}

	pct := clampPercentage(parsePercentage(raw))

	v := &Verdict{
		Percentage:  pct,
		RiskLevel:   models.RiskLevelForPercentage(pct),
		Keywords:    cleanKeywords(p.DetectedKeywords),
		Explanation: strings.TrimSpace(p.Explanation),
		Confidence:  pct / 100,
	}
	if p.IsExtremist != nil {
		v.IsExtremist = *p.IsExtremist
	} else {
		v.IsExtremist = pct >= extremistPercentage
	}
	return v, nil
}

func parsePercentage(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

func clampPercentage(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// extractJSON strips markdown code fences and any chatter around the outermost object.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)

	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	s = strings.TrimSpace(s)

	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
