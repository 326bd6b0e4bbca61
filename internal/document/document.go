// Package document loads resume documents from disk or S3 and gates them as PDFs.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/jobjeeves/internal/types"
	"github.com/ledongthuc/pdf"
)

// PDFContentType is the content type sent for accepted documents.
const PDFContentType = "application/pdf"

// DefaultMaxSize is the largest document accepted, in bytes.
const DefaultMaxSize int64 = 10 << 20

var (
	// ErrEmptyDocument is returned for zero-byte files
	ErrEmptyDocument = errors.New("document is empty")
	// ErrNotPDF is returned when the content is not a PDF
	ErrNotPDF = errors.New("document is not a PDF")
	// ErrTooLarge is returned when the document exceeds the size limit
	ErrTooLarge = errors.New("document is too large")
)

// Options configures a Loader.
type Options struct {
	MaxSize int64
	S3      *S3Options
	Verbose bool
}

// Loader reads resume documents from local paths or s3:// URIs.
// A Loader is safe for concurrent use.
type Loader struct {
	maxSize int64
	s3Opts  *S3Options
	verbose bool

	mu sync.Mutex // guards s3
	s3 ObjectGetter
}

// NewLoader creates a Loader. A nil opts uses defaults.
func NewLoader(opts *Options) *Loader {
	if opts == nil {
		opts = &Options{}
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Loader{
		maxSize: maxSize,
		s3Opts:  opts.S3,
		verbose: opts.Verbose,
	}
}

// WithS3Client sets the client used for s3:// sources instead of building one from the AWS config chain.
func (l *Loader) WithS3Client(client ObjectGetter) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s3 = client
	return l
}

// Load reads the document at source, which is either a file path or an s3://bucket/key URI.
func (l *Loader) Load(ctx context.Context, source string) (*types.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("no document selected")
	}

	var (
		name string
		data []byte
		err  error
	)
	if IsS3URI(source) {
		var bucket, key string
		bucket, key, err = ParseS3URI(source)
		if err != nil {
			return nil, err
		}
		data, err = l.download(ctx, bucket, key)
		name = path.Base(key)
	} else {
		data, err = l.readFile(source)
		name = filepath.Base(source)
	}
	if err != nil {
		return nil, err
	}

	doc, err := FromBytes(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	doc.Source = source

	if l.verbose {
		log.Printf("[VERBOSE] Loaded %s: %d bytes, %d pages", source, doc.Size(), doc.Pages)
	}

	return doc, nil
}

func (l *Loader) readFile(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}
	if info.Size() > l.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), l.maxSize)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// FromBytes wraps raw content as a Document after checking it is a PDF.
func FromBytes(name string, data []byte) (*types.Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	detected := mimetype.Detect(data)
	if !detected.Is(PDFContentType) {
		return nil, fmt.Errorf("%w (detected %s)", ErrNotPDF, detected.String())
	}

	return &types.Document{
		Name:        name,
		ContentType: PDFContentType,
		Data:        data,
		Pages:       CountPages(data),
	}, nil
}

// CountPages returns the page count from the PDF's page tree, or 0 when it cannot be read.
func CountPages(data []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}

// readLimited reads r up to max bytes, failing with ErrTooLarge beyond that.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, max)
	}
	return data, nil
}
