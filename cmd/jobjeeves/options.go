package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/jobjeeves/internal/analysis"
	"github.com/jonathan/jobjeeves/internal/config"
	"github.com/jonathan/jobjeeves/internal/document"
	"github.com/jonathan/jobjeeves/internal/fetch"
	"github.com/jonathan/jobjeeves/internal/ingestion"
	"github.com/jonathan/jobjeeves/internal/report"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath      string
	apiURL          string
	timeout         string
	json            bool
	verbose         bool
	skipSchemaCheck bool
}

func (g *globalOptions) register(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	f.StringVar(&g.apiURL, "api-url", "", "Analysis service base URL (default "+analysis.DefaultBaseURL+")")
	f.StringVar(&g.timeout, "timeout", "", "Per-analysis timeout, e.g. 90s; 0 disables (default 2m)")
	f.BoolVar(&g.json, "json", false, "Print results as JSON")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "Print detailed debug information")
	f.BoolVar(&g.skipSchemaCheck, "skip-schema-check", false, "Do not check responses against the JSON Schema")
}

// jobFlags are the job-description source flags of analyze and batch.
type jobFlags struct {
	text       string
	file       string
	url        string
	useBrowser bool
}

func (j *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&j.text, "job", "j", "", "Job description text")
	cmd.Flags().StringVar(&j.file, "job-file", "", "Path to a text file containing the job description")
	cmd.Flags().StringVar(&j.url, "job-url", "", "URL of a job posting to fetch")
	cmd.Flags().BoolVar(&j.useBrowser, "use-browser", false, "Render the job posting in headless Chrome when the page is client-side rendered")
}

// apply copies explicitly set job flags onto cfg. Setting any job source on the
// command line replaces the sources from the config file.
func (j *jobFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("job") || flags.Changed("job-file") || flags.Changed("job-url") {
		cfg.JobText, cfg.Job, cfg.JobURL = "", "", ""
	}
	if flags.Changed("job") {
		cfg.JobText = j.text
	}
	if flags.Changed("job-file") {
		cfg.Job = j.file
	}
	if flags.Changed("job-url") {
		cfg.JobURL = j.url
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = j.useBrowser
	}
}

// resolveConfig builds the effective configuration: flags over the config file
// over environment variables over defaults. extra applies command-specific flags.
func (g *globalOptions) resolveConfig(cmd *cobra.Command, extra func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if g.configPath != "" {
		loaded, err := config.LoadConfig(g.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, fmt.Errorf("invalid config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = g.apiURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = g.timeout
	}
	if flags.Changed("json") {
		cfg.JSON = g.json
	}
	if flags.Changed("verbose") {
		cfg.Verbose = g.verbose
	}
	if flags.Changed("skip-schema-check") {
		cfg.SkipSchemaCheck = g.skipSchemaCheck
	}
	if extra != nil {
		extra(&cfg)
	}

	env := config.FromEnv()
	cfg = cfg.MergeWithDefaults(env.MergeWithDefaults(config.Defaults()))
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	if cfg.Verbose {
		log.Printf("[VERBOSE] Analysis service: %s (timeout %s)", cfg.APIURL, cfg.Timeout)
	}
	return cfg, nil
}

func newClient(cfg config.Config) (*analysis.Client, error) {
	return analysis.NewClient(&analysis.Options{
		BaseURL:         cfg.APIURL,
		Headers:         cfg.Headers,
		SkipSchemaCheck: cfg.SkipSchemaCheck,
		Verbose:         cfg.Verbose,
	})
}

func newLoader(cfg config.Config) *document.Loader {
	return document.NewLoader(&document.Options{
		S3: &document.S3Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		Verbose: cfg.Verbose,
	})
}

func newPrinter(cmd *cobra.Command, cfg config.Config) *report.Printer {
	return report.NewPrinter(cmd.OutOrStdout(), cfg.JSON)
}

// loadJobPosting reads the job description from whichever source cfg names.
func loadJobPosting(ctx context.Context, cfg config.Config) (*ingestion.JobPosting, error) {
	switch {
	case cfg.JobText != "":
		return ingestion.FromText(cfg.JobText)
	case cfg.Job != "":
		posting, err := ingestion.FromFile(cfg.Job)
		if err != nil {
			return nil, fmt.Errorf("failed to read job description: %w", err)
		}
		return posting, nil
	case cfg.JobURL != "":
		posting, err := ingestion.FromURL(ctx, cfg.JobURL, &ingestion.URLOptions{
			Fetch:      &fetch.Options{Timeout: fetch.DefaultTimeout},
			UseBrowser: cfg.UseBrowser,
			Verbose:    cfg.Verbose,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to ingest job posting: %w", err)
		}
		return posting, nil
	default:
		return nil, fmt.Errorf("a job description is required: use --job, --job-file or --job-url (via flag or config)")
	}
}

// withTimeout bounds ctx by the configured timeout, if any.
func withTimeout(ctx context.Context, cfg config.Config) (context.Context, context.CancelFunc, error) {
	d, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	if d <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, cancel, nil
}
