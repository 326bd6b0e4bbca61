// Package report renders analysis results and submission states for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jobjeeves/internal/submission"
	"github.com/jonathan/jobjeeves/internal/types"
)

const (
	// boxWidth is the outer width of rendered boxes
	boxWidth = 64
	// innerWidth is the usable text width inside a box
	innerWidth = boxWidth - 4
	// barWidth is the number of cells in the score bar
	barWidth = 20
)

// Printer renders reports to a writer, either as boxed text or as JSON.
type Printer struct {
	out  io.Writer
	json bool
}

// NewPrinter creates a Printer. When asJSON is set, results are written as indented JSON.
func NewPrinter(out io.Writer, asJSON bool) *Printer {
	return &Printer{out: out, json: asJSON}
}

// printBox prints a titled box, wrapping content lines to the box width.
//
//nolint:errcheck // terminal output; write errors are not recoverable
func (p *Printer) printBox(title, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", innerWidth, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, raw := range strings.Split(content, "\n") {
		for _, line := range wrap(raw, innerWidth) {
			fmt.Fprintf(p.out, "│ %-*s │\n", innerWidth, line)
		}
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintState renders one controller state. InFlight prints a progress line,
// terminal states print the result or the failure message.
//
//nolint:errcheck // terminal output; write errors are not recoverable
func (p *Printer) PrintState(s submission.State) {
	switch s.Phase {
	case submission.InFlight:
		if !p.json {
			fmt.Fprintln(p.out, "Analyzing...")
		}
	case submission.Succeeded:
		p.PrintResult(s.Result)
	case submission.Failed:
		if p.json {
			p.writeJSON(map[string]string{"error": s.Message})
			return
		}
		p.printBox("ANALYSIS FAILED", s.Message)
	}
}

// PrintResult renders a match report.
func (p *Printer) PrintResult(r *types.AnalysisResult) {
	if r == nil {
		return
	}
	if p.json {
		p.writeJSON(r)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Match score (0–100): %d  %s\n", r.MatchScore, scoreBar(r.MatchScore))
	fmt.Fprintf(&sb, "Analysis ID: %s\n", r.AnalysisID)
	if r.ShortSummary != "" {
		sb.WriteString("\nSummary:\n")
		sb.WriteString(r.ShortSummary)
		sb.WriteString("\n")
	}
	writeList(&sb, "Missing keywords", r.MissingKeywords, "None detected.")
	writeList(&sb, "Strengths", r.Strengths, "No strengths returned.")
	writeList(&sb, "Improvement suggestions", r.ImprovementSuggestions, "No suggestions returned.")

	p.printBox("MATCH REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecord renders a stored analysis fetched by id.
func (p *Printer) PrintRecord(rec *types.AnalysisRecord) {
	if rec == nil {
		return
	}
	if p.json {
		p.writeJSON(rec)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:       %s\n", rec.ID)
	fmt.Fprintf(&sb, "Created:  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Resume:   %s\n", rec.ResumeFilename)
	if rec.MatchScore != nil {
		fmt.Fprintf(&sb, "Score:    %d  %s\n", *rec.MatchScore, scoreBar(*rec.MatchScore))
	} else {
		sb.WriteString("Score:    n/a\n")
	}
	sb.WriteString("\nJob description:\n")
	sb.WriteString(excerpt(rec.JobDescription, 400))

	p.printBox("STORED ANALYSIS", sb.String())

	var result types.AnalysisResult
	if len(rec.Result) > 0 && json.Unmarshal(rec.Result, &result) == nil {
		result.Normalize()
		if result.AnalysisID == "" {
			result.AnalysisID = rec.ID.String()
		}
		p.PrintResult(&result)
	}
}

// PrintHealth renders a health check outcome.
//
//nolint:errcheck // terminal output; write errors are not recoverable
func (p *Printer) PrintHealth(baseURL string, status *types.HealthStatus) {
	if p.json {
		p.writeJSON(status)
		return
	}
	if status != nil && status.OK {
		fmt.Fprintf(p.out, "✅ %s is healthy\n", baseURL)
		return
	}
	fmt.Fprintf(p.out, "⚠ %s reported not ok\n", baseURL)
}

// BatchRow is one line of a batch summary.
type BatchRow struct {
	Resume string                `json:"resume"`
	Result *types.AnalysisResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// PrintBatch renders the outcome of analyzing several resumes against one job description.
func (p *Printer) PrintBatch(rows []BatchRow) {
	if p.json {
		p.writeJSON(rows)
		return
	}

	var sb strings.Builder
	failed := 0
	for _, row := range rows {
		name := truncate(row.Resume, 28)
		if row.Result != nil {
			fmt.Fprintf(&sb, "%-28s %3d  %s\n", name, row.Result.MatchScore, scoreBar(row.Result.MatchScore))
			continue
		}
		failed++
		fmt.Fprintf(&sb, "%-28s  ✗   %s\n", name, row.Error)
	}
	fmt.Fprintf(&sb, "\n%d analyzed, %d failed", len(rows)-failed, failed)

	p.printBox("BATCH RESULTS", sb.String())
}

//nolint:errcheck // terminal output; write errors are not recoverable
func (p *Printer) writeJSON(v any) {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeList(sb *strings.Builder, heading string, items []string, empty string) {
	fmt.Fprintf(sb, "\n%s:\n", heading)
	if len(items) == 0 {
		fmt.Fprintf(sb, "  %s\n", empty)
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
}

func scoreBar(score int) string {
	score = max(0, min(score, 100))
	filled := score * barWidth / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return truncate(s, n)
}

// wrap breaks line into pieces of at most width runes, preferring word
// boundaries. Bullet lines get a hanging indent.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	body := strings.TrimLeft(line, " ")
	lead := line[:len(line)-len(body)]
	hang := lead
	if strings.HasPrefix(body, "• ") {
		hang += "  "
	}

	var out []string
	current, n := lead, 0
	for _, word := range strings.Fields(body) {
		for _, piece := range chunk(word, width-len(hang)) {
			if n > 0 && utf8.RuneCountInString(current)+1+utf8.RuneCountInString(piece) > width {
				out = append(out, current)
				current, n = hang, 0
			}
			if n > 0 {
				current += " "
			}
			current += piece
			n++
		}
	}
	if n > 0 {
		out = append(out, current)
	}
	return out
}

func chunk(word string, size int) []string {
	size = max(size, 1)
	r := []rune(word)
	if len(r) <= size {
		return []string{word}
	}
	var pieces []string
	for len(r) > size {
		pieces = append(pieces, string(r[:size]))
		r = r[size:]
	}
	return append(pieces, string(r))
}
