package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a []string stored as a JSON array column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*s = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode keyword list: %w", err)
	}
	*s = out
	return nil
}

// AnalysisRecord represents a row in the 'content_analysis' table.
type AnalysisRecord struct {
	ID             int64      `json:"id" db:"id"`
	Platform       string     `json:"platform" db:"platform"`
	SourceURL      string     `json:"source_url" db:"source_url"`
	Author         string     `json:"author" db:"author"`
	Content        string     `json:"content" db:"content"`
	Label          Label      `json:"label" db:"label"`
	Confidence     float64    `json:"confidence" db:"confidence"`
	RiskScore      float64    `json:"risk_score" db:"risk_score"`
	RiskLevel      RiskLevel  `json:"risk_level" db:"risk_level"`
	Keywords       StringList `json:"keywords" db:"keywords"`
	AnalysisMethod string     `json:"analysis_method" db:"analysis_method"`
	Metadata       string     `json:"metadata" db:"metadata"` // free-form JSON blob supplied by the caller
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Job statuses.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Job represents an async batch analysis job.
type Job struct {
	ID             string     `json:"id" db:"id"`
	Status         string     `json:"status" db:"status"`
	TotalCount     int        `json:"total_count" db:"total_count"`
	ProcessedCount int        `json:"processed_count" db:"processed_count"`
	FailedCount    int        `json:"failed_count" db:"failed_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage   string     `json:"error_message,omitempty" db:"error_message"`
}

// ClassifyRequest for classification without persistence.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// AnalyzeRequest carries one piece of content plus its source metadata.
type AnalyzeRequest struct {
	Platform string          `json:"platform" binding:"required"`
	Author   string          `json:"author"`
	URL      string          `json:"url"`
	Text     string          `json:"text"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// BatchAnalyzeRequest for multiple items.
type BatchAnalyzeRequest struct {
	Items []AnalyzeRequest `json:"items" binding:"required,min=1,dive"`
}

// LabelStat is a per-label aggregate.
type LabelStat struct {
	Label         Label   `json:"label" db:"label"`
	Count         int64   `json:"count" db:"count"`
	AvgConfidence float64 `json:"avg_confidence" db:"avg_confidence"`
}
