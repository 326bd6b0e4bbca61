// Package analysis provides the HTTP client for the resume analysis service.
// The client is stateless: each call builds, sends and decodes one request.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/jobjeeves/internal/schemas"
	"github.com/jonathan/jobjeeves/internal/types"
)

const (
	// AnalyzePath is the analysis endpoint.
	AnalyzePath = "/api/analyze"
	// HealthPath is the liveness endpoint.
	HealthPath = "/api/health"
	// AnalysesPath is the prefix for stored analyses.
	AnalysesPath = "/api/analyses/"

	// FileField is the multipart field carrying the resume.
	FileField = "file"
	// JobDescriptionField is the multipart field carrying the job description.
	JobDescriptionField = "job_description"

	// DefaultBaseURL is where the analysis service listens in local development.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultUserAgent is the user agent string for requests.
	DefaultUserAgent = "jobjeeves-cli/1.0"

	defaultFilename    = "resume.pdf"
	defaultContentType = "application/octet-stream"
)

// Options configures the client.
type Options struct {
	BaseURL   string
	UserAgent string
	Headers   map[string]string

	// HTTPClient is used for all requests. The default client has no timeout;
	// callers bound each call through the context.
	HTTPClient *http.Client

	// SkipSchemaCheck disables JSON Schema validation of success bodies.
	SkipSchemaCheck bool
	Verbose         bool
}

// DefaultOptions returns sensible defaults for the client.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the analysis service.
type Client struct {
	baseURL         string
	userAgent       string
	headers         map[string]string
	httpClient      *http.Client
	skipSchemaCheck bool
	verbose         bool
}

// NewClient creates a client for the service at opts.BaseURL.
func NewClient(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid analysis service URL %q", opts.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid analysis service URL %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:         baseURL,
		userAgent:       userAgent,
		headers:         opts.Headers,
		httpClient:      httpClient,
		skipSchemaCheck: opts.SkipSchemaCheck,
		verbose:         opts.Verbose,
	}, nil
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze uploads the document and job description and decodes the match report.
// Every failure is returned as a *RequestError.
func (c *Client) Analyze(ctx context.Context, doc *types.Document, jobDescription string) (*types.AnalysisResult, error) {
	endpoint := c.baseURL + AnalyzePath

	if doc == nil {
		return nil, &RequestError{Kind: KindInvalid, Endpoint: endpoint, Message: "no document selected"}
	}

	body, contentType, err := encodeAnalyzeForm(doc, jobDescription)
	if err != nil {
		return nil, &RequestError{
			Kind:     KindInvalid,
			Endpoint: endpoint,
			Message:  "failed to encode request",
			Cause:    err,
		}
	}

	if c.verbose {
		log.Printf("[VERBOSE] POST %s (%d bytes, document %q, job description %d chars)",
			endpoint, body.Len(), doc.Name, utf8.RuneCountInString(jobDescription))
	}

	status, respBody, err := c.do(ctx, http.MethodPost, endpoint, body, contentType)
	if err != nil {
		return nil, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &RequestError{
			Kind:       KindDecode,
			Endpoint:   endpoint,
			StatusCode: status,
			Message:    err.Error(),
			Cause:      err,
		}
	}

	if !c.skipSchemaCheck {
		if err := schemas.ValidateAnalyzeResponse(respBody); err != nil {
			return nil, &RequestError{
				Kind:       KindSchema,
				Endpoint:   endpoint,
				StatusCode: status,
				Message:    err.Error(),
				Cause:      err,
			}
		}
	}

	if err := result.Validate(); err != nil {
		return nil, &RequestError{
			Kind:       KindSchema,
			Endpoint:   endpoint,
			StatusCode: status,
			Message:    fmt.Sprintf("invalid analysis result: %v", err),
			Cause:      err,
		}
	}

	result.Normalize()

	if c.verbose {
		log.Printf("[VERBOSE] analysis %s: score %d, %d missing keywords",
			result.AnalysisID, result.MatchScore, len(result.MissingKeywords))
	}

	return &result, nil
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	endpoint := c.baseURL + HealthPath

	status, respBody, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var health types.HealthStatus
	if err := json.Unmarshal(respBody, &health); err != nil {
		return nil, &RequestError{Kind: KindDecode, Endpoint: endpoint, StatusCode: status, Message: err.Error(), Cause: err}
	}
	if !c.skipSchemaCheck {
		if err := schemas.ValidateHealth(respBody); err != nil {
			return nil, &RequestError{Kind: KindSchema, Endpoint: endpoint, StatusCode: status, Message: err.Error(), Cause: err}
		}
	}

	return &health, nil
}

// GetAnalysis fetches a stored analysis. The id must be a UUID; anything else
// is rejected without contacting the service.
func (c *Client) GetAnalysis(ctx context.Context, id string) (*types.AnalysisRecord, error) {
	analysisID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, &RequestError{
			Kind:     KindInvalid,
			Endpoint: c.baseURL + AnalysesPath,
			Message:  "Invalid analysis_id",
			Cause:    err,
		}
	}

	endpoint := c.baseURL + AnalysesPath + analysisID.String()
	status, respBody, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var record types.AnalysisRecord
	if err := json.Unmarshal(respBody, &record); err != nil {
		return nil, &RequestError{Kind: KindDecode, Endpoint: endpoint, StatusCode: status, Message: err.Error(), Cause: err}
	}

	return &record, nil
}

// do sends one request and returns the status and body of a 2xx response.
// Non-2xx responses become KindStatus errors carrying the body text verbatim.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, &RequestError{
			Kind:     KindInvalid,
			Endpoint: endpoint,
			Message:  "failed to create request",
			Cause:    err,
		}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{
			Kind:     KindTransport,
			Endpoint: endpoint,
			Message:  fmt.Sprintf("HTTP request failed: %v", transportCause(err)),
			Cause:    err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &RequestError{
			Kind:       KindTransport,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Cause:      err,
		}
	}

	if c.verbose {
		log.Printf("[VERBOSE] %s %s -> %d (%d bytes, request id %s)",
			method, endpoint, resp.StatusCode, len(respBody), req.Header.Get("X-Request-ID"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := string(respBody)
		if message == "" {
			message = fmt.Sprintf("Request failed (%d)", resp.StatusCode)
		}
		return resp.StatusCode, respBody, &RequestError{
			Kind:       KindStatus,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	return resp.StatusCode, respBody, nil
}

// transportCause strips the "Post \"url\": " wrapper net/http adds.
func transportCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeAnalyzeForm builds the multipart body: the document as a file part and
// the job description as a plain text field.
func encodeAnalyzeForm(doc *types.Document, jobDescription string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := doc.Name
	if filename == "" {
		filename = defaultFilename
	}
	partType := doc.ContentType
	if partType == "" {
		partType = defaultContentType
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", partType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}

	if err := writer.WriteField(JobDescriptionField, jobDescription); err != nil {
		return nil, "", fmt.Errorf("failed to write %s field: %w", JobDescriptionField, err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
