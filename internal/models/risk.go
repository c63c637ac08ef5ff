package models

import (
	"fmt"
	"strings"
)

// RiskLevel is the ordered severity band of a risk score.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskSeverity = map[RiskLevel]int{
	RiskNone:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Severity returns the position of the level in none < low < medium < high < critical.
// Unknown levels rank below none.
func (l RiskLevel) Severity() int {
	if s, ok := riskSeverity[l]; ok {
		return s
	}
	return -1
}

func (l RiskLevel) Valid() bool {
	_, ok := riskSeverity[l]
	return ok
}

// ParseRiskLevel converts a free-form level name into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return RiskNone, fmt.Errorf("unknown risk level %q", s)
	}
	return l, nil
}

// MaxRiskLevel returns the more severe of two levels.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// RiskLevelForScore maps a rule-based risk score onto its band.
// Thresholds are checked from the most severe down; the first match wins.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 25:
		return RiskCritical
	case score >= 15:
		return RiskHigh
	case score >= 8:
		return RiskMedium
	case score >= 3:
		return RiskLow
	default:
		return RiskNone
	}
}

// RiskLevelForPercentage maps a 0-100 extremism percentage onto its band.
func RiskLevelForPercentage(pct float64) RiskLevel {
	switch {
	case pct < 10:
		return RiskNone
	case pct < 25:
		return RiskLow
	case pct < 50:
		return RiskMedium
	case pct < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Label is the terminal three-way classification.
type Label string

const (
	LabelNormal     Label = "normal"
	LabelSuspicious Label = "suspicious"
	LabelExtremist  Label = "extremist"
)

func (l Label) Valid() bool {
	return l == LabelNormal || l == LabelSuspicious || l == LabelExtremist
}

// LabelForScore maps a final risk score to a label and confidence.
// Confidences below 0.5 go through a second pass: scores of 3 and above stay
// suspicious, everything else becomes normal.
func LabelForScore(score float64) (Label, float64) {
	var (
		label      Label
		confidence float64
	)
	switch {
	case score >= 20:
		label, confidence = LabelExtremist, 0.9
	case score >= 10:
		label, confidence = LabelExtremist, 0.75
	case score >= 5:
		label, confidence = LabelSuspicious, 0.6
	case score >= 1:
		label, confidence = LabelSuspicious, 0.3
	default:
		label, confidence = LabelNormal, 0.1
	}

	if confidence < 0.5 {
		if score >= 3 {
			label = LabelSuspicious
		} else {
			label = LabelNormal
		}
	}
	return label, confidence
}

// Threat colours used by the dashboard.
const (
	ColorCritical   = "#dc3545"
	ColorHigh       = "#fd7e14"
	ColorSuspicious = "#ffc107"
	ColorSafe       = "#28a745"
)

// ThreatColor derives the display colour from label and confidence.
func ThreatColor(label Label, confidence float64) string {
	switch label {
	case LabelExtremist:
		if confidence >= 0.8 {
			return ColorCritical
		}
		return ColorHigh
	case LabelSuspicious:
		return ColorSuspicious
	default:
		return ColorSafe
	}
}
