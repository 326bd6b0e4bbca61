// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobjeeves/internal/analysis"
	"github.com/jonathan/jobjeeves/internal/submission"
)

// Environment variables read by FromEnv.
const (
	EnvAPIURL      = "JOBJEEVES_API_URL"
	EnvTimeout     = "JOBJEEVES_TIMEOUT"
	EnvS3Endpoint  = "JOBJEEVES_S3_ENDPOINT"
	EnvS3AccessKey = "JOBJEEVES_S3_ACCESS_KEY"
	EnvS3SecretKey = "JOBJEEVES_S3_SECRET_KEY"
	EnvS3Region    = "AWS_REGION"
)

// DefaultConcurrency is the number of parallel analyses in batch mode.
const DefaultConcurrency = 4

// MaxConcurrency caps batch parallelism.
const MaxConcurrency = 16

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment, defaults or CLI flags.
type Config struct {
	// Service
	APIURL          string            `json:"api_url,omitempty" validate:"omitempty,http_url"`
	Timeout         string            `json:"timeout,omitempty"` // Go duration, e.g. "90s"; "0" disables the bound
	Headers         map[string]string `json:"headers,omitempty"` // Extra request headers
	SkipSchemaCheck bool              `json:"skip_schema_check,omitempty"`

	// Inputs
	Resume  string `json:"resume,omitempty"`   // Path or s3://bucket/key of the resume PDF
	JobText string `json:"job_text,omitempty"` // Inline job description
	Job     string `json:"job,omitempty"`      // Path to job description text file
	JobURL  string `json:"job_url,omitempty" validate:"omitempty,http_url"`

	// S3-compatible storage for s3:// resumes
	S3Region   string `json:"s3_region,omitempty"`
	S3Endpoint string `json:"s3_endpoint,omitempty" validate:"omitempty,url"`

	// Static keys for R2/MinIO; when unset the AWS credential chain is used
	S3AccessKey string `json:"s3_access_key,omitempty" validate:"required_with=S3SecretKey"`
	S3SecretKey string `json:"s3_secret_key,omitempty" validate:"required_with=S3AccessKey"`

	// Behavior
	UseBrowser  bool `json:"use_browser,omitempty"` // Use headless browser for SPA job pages
	Verbose     bool `json:"verbose,omitempty"`
	JSON        bool `json:"json,omitempty"`                                  // Print results as JSON
	Concurrency int  `json:"concurrency,omitempty" validate:"min=0,max=16"` // Batch parallelism
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns the settings taken from environment variables.
func FromEnv() Config {
	return Config{
		APIURL:     strings.TrimSpace(os.Getenv(EnvAPIURL)),
		Timeout:    strings.TrimSpace(os.Getenv(EnvTimeout)),
		S3Endpoint: strings.TrimSpace(os.Getenv(EnvS3Endpoint)),
		S3Region:   strings.TrimSpace(os.Getenv(EnvS3Region)),

		S3AccessKey: strings.TrimSpace(os.Getenv(EnvS3AccessKey)),
		S3SecretKey: strings.TrimSpace(os.Getenv(EnvS3SecretKey)),
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:      analysis.DefaultBaseURL,
		Timeout:     submission.DefaultTimeout.String(),
		Concurrency: DefaultConcurrency,
	}
}

// Validate checks that the configuration has valid values.
// Required inputs are checked by the commands after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", jsonName(fe.StructField()), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Timeout != "" {
		if _, err := ParseTimeout(c.Timeout); err != nil {
			return fmt.Errorf("config error: 'timeout' %w", err)
		}
	}

	if c.JobSources() > 1 {
		return fmt.Errorf("config error: 'job_text', 'job' and 'job_url' are mutually exclusive")
	}

	return nil
}

// JobSources counts how many job-description sources are set.
func (c *Config) JobSources() int {
	n := 0
	for _, s := range []string{c.JobText, c.Job, c.JobURL} {
		if s != "" {
			n++
		}
	}
	return n
}

// TimeoutDuration parses Timeout. An empty value yields the default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return submission.DefaultTimeout, nil
	}
	return ParseTimeout(c.Timeout)
}

// ParseTimeout accepts a Go duration or a plain number of seconds.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(secs) * time.Second
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative: %q", s)
	}
	return d, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bool fields cannot distinguish unset from false, so only true values are carried over.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	// job sources are one setting; only fill when none is set
	if result.JobSources() == 0 {
		result.JobText = defaults.JobText
		result.Job = defaults.Job
		result.JobURL = defaults.JobURL
	}
	if result.S3Region == "" {
		result.S3Region = defaults.S3Region
	}
	if result.S3Endpoint == "" {
		result.S3Endpoint = defaults.S3Endpoint
	}
	// the key pair is one setting
	if result.S3AccessKey == "" && result.S3SecretKey == "" {
		result.S3AccessKey = defaults.S3AccessKey
		result.S3SecretKey = defaults.S3SecretKey
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if len(defaults.Headers) > 0 {
		merged := make(map[string]string, len(defaults.Headers)+len(result.Headers))
		for k, v := range defaults.Headers {
			merged[k] = v
		}
		for k, v := range result.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose
	result.JSON = result.JSON || defaults.JSON
	result.SkipSchemaCheck = result.SkipSchemaCheck || defaults.SkipSchemaCheck

	return result
}

func jsonName(field string) string {
	switch field {
	case "APIURL":
		return "api_url"
	case "JobURL":
		return "job_url"
	case "S3Endpoint":
		return "s3_endpoint"
	case "S3AccessKey":
		return "s3_access_key"
	case "S3SecretKey":
		return "s3_secret_key"
	case "Concurrency":
		return "concurrency"
	default:
		return strings.ToLower(field)
	}
}
