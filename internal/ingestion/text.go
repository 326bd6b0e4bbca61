// Package ingestion produces job-description text from inline text, files or posting URLs.
package ingestion

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// MaxFileSize is the largest job-description file accepted.
const MaxFileSize int64 = 1 << 20

var (
	// ErrEmptyJobDescription is returned when no text could be produced
	ErrEmptyJobDescription = errors.New("job description is empty")
	// ErrJobTextTooShort is returned when the text is below the submission minimum
	ErrJobTextTooShort = errors.New("job description is too short")
)

var (
	inlineSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// JobPosting is the job-description text handed to the submission controller.
type JobPosting struct {
	Text     string
	Metadata *Metadata
}

// FromText wraps inline text. The text is kept verbatim.
func FromText(text string) (*JobPosting, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyJobDescription
	}
	return &JobPosting{Text: text, Metadata: NewMetadata(SourceText, text)}, nil
}

// FromFile reads a job description from a text file. The content is kept verbatim.
func FromFile(path string) (*JobPosting, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyJobDescription)
	}

	meta := NewMetadata(SourceFile, text)
	meta.Path = path
	return &JobPosting{Text: text, Metadata: meta}, nil
}

// CleanText normalizes scraped text: unified line endings, collapsed inline
// whitespace, at most one blank line between blocks. Bullet indentation is kept.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	out := strings.Join(lines, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func cleanLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	body = strings.TrimSpace(inlineSpace.ReplaceAllString(body, " "))

	if isBullet(body) {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + normalizeBullet(body)
	}
	return body
}

func isBullet(s string) bool {
	for _, p := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func normalizeBullet(s string) string {
	for _, p := range []string{"• ", "· ", "* "} {
		if strings.HasPrefix(s, p) {
			return "- " + strings.TrimPrefix(s, p)
		}
	}
	return s
}
