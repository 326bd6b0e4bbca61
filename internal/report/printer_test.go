package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/jobjeeves/internal/submission"
	"github.com/jonathan/jobjeeves/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		AnalysisID:             "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		MatchScore:             72,
		MissingKeywords:        []string{"Kubernetes", "Terraform"},
		ImprovementSuggestions: []string{"Quantify the impact of the payments migration."},
		Strengths:              []string{},
		ShortSummary:           "Solid backend match.",
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintResult(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "MATCH REPORT")
	assert.Contains(t, output, "Match score (0–100): 72")
	assert.Contains(t, output, "Analysis ID: 7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.Contains(t, output, "Solid backend match.")
	assert.Contains(t, output, "• Kubernetes")
	assert.Contains(t, output, "No strengths returned.")
	assert.Less(t, strings.Index(output, "Kubernetes"), strings.Index(output, "Terraform"))
}

func TestPrintResult_EmptyLists(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	r.MissingKeywords = []string{}
	r.ImprovementSuggestions = []string{}
	r.ShortSummary = ""

	NewPrinter(&buf, false).PrintResult(r)
	output := buf.String()

	assert.Contains(t, output, "None detected.")
	assert.Contains(t, output, "No suggestions returned.")
	assert.NotContains(t, output, "Summary:")
}

func TestPrintResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).PrintResult(sampleResult())

	var decoded types.AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *sampleResult(), decoded)
	assert.Contains(t, buf.String(), `"strengths": []`)
}

func TestPrintBox_LinesFitWidth(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	r.ShortSummary = strings.Repeat("experienced engineer ", 20)
	r.ImprovementSuggestions = []string{strings.Repeat("x", 150)}

	NewPrinter(&buf, false).PrintResult(r)

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
	assert.Contains(t, buf.String(), "    "+strings.Repeat("x", innerWidth-4)+" │")
}

func TestPrintState(t *testing.T) {
	tests := []struct {
		name   string
		state  submission.State
		want   string
		asJSON bool
	}{
		{"idle prints nothing", submission.State{Phase: submission.Idle}, "", false},
		{"in flight", submission.State{Phase: submission.InFlight, Submission: 1}, "Analyzing...\n", false},
		{"in flight json", submission.State{Phase: submission.InFlight, Submission: 1}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf, tt.asJSON).PrintState(tt.state)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintState_Failed(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintState(submission.State{Phase: submission.Failed, Message: "internal error"})
	assert.Contains(t, buf.String(), "ANALYSIS FAILED")
	assert.Contains(t, buf.String(), "internal error")

	buf.Reset()
	NewPrinter(&buf, true).PrintState(submission.State{Phase: submission.Failed, Message: "internal error"})
	assert.JSONEq(t, `{"error":"internal error"}`, buf.String())
}

func TestPrintState_Succeeded(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintState(submission.State{Phase: submission.Succeeded, Result: sampleResult()})
	assert.Contains(t, buf.String(), "MATCH REPORT")
}

func TestPrintRecord(t *testing.T) {
	score := 64
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	rec := &types.AnalysisRecord{
		ID:             id,
		CreatedAt:      types.Timestamp{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		ResumeFilename: "jane.pdf",
		JobDescription: "We are hiring a backend engineer.",
		MatchScore:     &score,
		Result:         json.RawMessage(`{"match_score":64,"missing_keywords":["Go"]}`),
	}

	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintRecord(rec)
	output := buf.String()

	assert.Contains(t, output, "STORED ANALYSIS")
	assert.Contains(t, output, "jane.pdf")
	assert.Contains(t, output, "2025-03-01 12:00:00 UTC")
	assert.Contains(t, output, "MATCH REPORT")
	assert.Contains(t, output, "Analysis ID: "+id.String())
	assert.Contains(t, output, "• Go")
}

func TestPrintRecord_NoScore(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintRecord(&types.AnalysisRecord{ID: uuid.New(), ResumeFilename: "a.pdf"})

	assert.Contains(t, buf.String(), "Score:    n/a")
	assert.NotContains(t, buf.String(), "MATCH REPORT")
}

func TestPrintHealth(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintHealth("http://localhost:8000", &types.HealthStatus{OK: true})
	assert.Equal(t, "✅ http://localhost:8000 is healthy\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, false).PrintHealth("http://localhost:8000", &types.HealthStatus{})
	assert.Contains(t, buf.String(), "not ok")

	buf.Reset()
	NewPrinter(&buf, true).PrintHealth("http://localhost:8000", &types.HealthStatus{OK: true})
	assert.JSONEq(t, `{"ok":true}`, buf.String())
}

func TestPrintBatch(t *testing.T) {
	rows := []BatchRow{
		{Resume: "alice.pdf", Result: sampleResult()},
		{Resume: "bob.pdf", Error: "Request failed (502)"},
	}

	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintBatch(rows)
	output := buf.String()

	assert.Contains(t, output, "BATCH RESULTS")
	assert.Contains(t, output, "alice.pdf")
	assert.Contains(t, output, "72")
	assert.Contains(t, output, "Request failed (502)")
	assert.Contains(t, output, "1 analyzed, 1 failed")

	buf.Reset()
	NewPrinter(&buf, true).PrintBatch(rows)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "Request failed (502)", decoded[1]["error"])
}

func TestScoreBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat("░", barWidth)+"]", scoreBar(0))
	assert.Equal(t, "["+strings.Repeat("█", barWidth)+"]", scoreBar(100))
	assert.Equal(t, "["+strings.Repeat("█", 10)+strings.Repeat("░", 10)+"]", scoreBar(50))
	assert.Equal(t, scoreBar(100), scoreBar(140))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 9))
	assert.Equal(t, []string{"  • alpha", "    beta"}, wrap("  • alpha beta", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))
}
