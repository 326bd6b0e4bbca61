package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Source says where a job description came from.
type Source string

const (
	// SourceText is inline text from a flag or config
	SourceText Source = "text"
	// SourceFile is a local text file
	SourceFile Source = "file"
	// SourceURL is a fetched job-posting page
	SourceURL Source = "url"
)

// Metadata describes an ingested job description.
type Metadata struct {
	Source    Source `json:"source"`
	URL       string `json:"url,omitempty"`
	Path      string `json:"path,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Title     string `json:"title,omitempty"`
	Rendered  bool   `json:"rendered,omitempty"` // true when a headless browser produced the HTML
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA256 hex digest of the text
	Chars     int    `json:"chars"`
}

// NewMetadata creates Metadata for text from source, stamped with the current time.
func NewMetadata(source Source, text string) *Metadata {
	sum := sha256.Sum256([]byte(text))
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      hex.EncodeToString(sum[:]),
		Chars:     utf8.RuneCountInString(text),
	}
}

// ToJSON marshals Metadata to indented JSON.
func (m *Metadata) ToJSON() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return b, nil
}
