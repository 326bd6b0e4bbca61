// Package types provides type definitions for the data exchanged with the analysis service.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AnalysisResult is the match report returned by POST /api/analyze.
type AnalysisResult struct {
	AnalysisID             string   `json:"analysis_id" validate:"required"`
	MatchScore             int      `json:"match_score" validate:"min=0,max=100"`
	MissingKeywords        []string `json:"missing_keywords"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	Strengths              []string `json:"strengths"`
	ShortSummary           string   `json:"short_summary"`

	// Raw is the model output echoed by some service versions. Passed through untouched.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Normalize replaces nil list fields with empty slices so that an empty list
// in the response stays an empty list rather than disappearing.
func (r *AnalysisResult) Normalize() {
	if r.MissingKeywords == nil {
		r.MissingKeywords = []string{}
	}
	if r.ImprovementSuggestions == nil {
		r.ImprovementSuggestions = []string{}
	}
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
}

// Validate validates the AnalysisResult using the validator.
func (r *AnalysisResult) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// AnalysisRecord is a stored analysis as returned by GET /api/analyses/{id}.
type AnalysisRecord struct {
	ID             uuid.UUID       `json:"id"`
	CreatedAt      Timestamp       `json:"created_at"`
	ResumeFilename string          `json:"resume_filename"`
	ResumeText     string          `json:"resume_text,omitempty"`
	JobDescription string          `json:"job_description"`
	MatchScore     *int            `json:"match_score"`
	Result         json.RawMessage `json:"result,omitempty"`
}

// localTimestampLayout is how the service writes times read back from a
// database column without a zone (SQLite).
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time that decodes from RFC 3339 or from an RFC 3339-like
// value without an offset, which is taken as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(localTimestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	t.Time = parsed
	return nil
}

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	OK bool `json:"ok"`
}
