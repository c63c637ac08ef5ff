package models

import "time"

// Scalar feature names. Per-category features are "<category>_count" and "<category>_density".
const (
	FeatureHateSpeechPatterns = "hate_speech_patterns"
	FeatureThreatPatterns     = "threat_patterns"
	FeatureTextLength         = "text_length"
	FeatureWordCount          = "word_count"
	FeatureExclamationCount   = "exclamation_count"
	FeatureQuestionCount      = "question_count"
	FeatureCapsRatio          = "caps_ratio"
	FeatureEmotionalWords     = "emotional_words"

	CountSuffix   = "_count"
	DensitySuffix = "_density"
)

// Analysis methods reported on results.
const (
	MethodRuleBased   = "rule_based"
	MethodML          = "ml"
	MethodRemoteModel = "remote_model"
	MethodCloudAPI    = "cloud_api"
	MethodLocal       = "local_fallback"
)

// FeatureVector holds numeric features computed from one text.
type FeatureVector map[string]float64

func (f FeatureVector) Get(name string) float64 {
	return f[name]
}

func (f FeatureVector) Count(category string) float64 {
	return f[category+CountSuffix]
}

func (f FeatureVector) Density(category string) float64 {
	return f[category+DensitySuffix]
}

// RuleBasedResult is the output of the risk score aggregator.
type RuleBasedResult struct {
	RiskScore      float64       `json:"risk_score"`
	RiskLevel      RiskLevel     `json:"risk_level"`
	RiskFactors    []string      `json:"risk_factors"`
	FoundKeywords  []string      `json:"found_keywords"`
	Features       FeatureVector `json:"features"`
	AnalysisMethod string        `json:"analysis_method"`
	AnalysisDate   time.Time     `json:"analysis_date"`
}

// MLPrediction is the local statistical model's judgement on one text.
type MLPrediction struct {
	Prediction  int       `json:"prediction"`
	Probability *float64  `json:"probability,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// MLRiskLevel derives the local model's own level from its prediction.
func MLRiskLevel(prediction int, probability *float64) RiskLevel {
	if prediction != 1 {
		return RiskNone
	}
	switch {
	case probability != nil && *probability > 0.8:
		return RiskHigh
	case probability != nil && *probability > 0.6:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ClassificationResult is the final record returned to callers.
type ClassificationResult struct {
	Label               Label     `json:"label"`
	Confidence          float64   `json:"confidence"`
	Keywords            []string  `json:"keywords"`
	RiskScore           float64   `json:"risk_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	ExtremismPercentage int       `json:"extremism_percentage"`
	HighlightedText     string    `json:"highlighted_text"`
	ThreatColor         string    `json:"threat_color"`
	Explanation         string    `json:"explanation"`
	RiskFactors         []string  `json:"risk_factors"`
	AnalysisMethod      string    `json:"analysis_method"`
	// Degraded is set when a configured remote model could not be used.
	Degraded   bool      `json:"degraded"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ExtremismAssessment is a 0-100 extremism estimate for a text.
type ExtremismAssessment struct {
	ExtremismPercentage int       `json:"extremism_percentage"`
	RiskLevel           RiskLevel `json:"risk_level"`
	DetectedKeywords    []string  `json:"detected_keywords"`
	Explanation         string    `json:"explanation"`
	Method              string    `json:"method"`
	Confidence          float64   `json:"confidence"`
}

// BatchItem is one entry of a batch analysis.
type BatchItem struct {
	Text   string               `json:"text"`
	Result ClassificationResult `json:"result"`
}
