package main

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jobjeeves/internal/config"
	"github.com/jonathan/jobjeeves/internal/ingestion"
	"github.com/jonathan/jobjeeves/internal/submission"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	resume string
	job    jobFlags
}

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze how well a resume matches a job description",
		Long: `Analyze uploads a resume PDF together with a job description to the analysis
service and prints the match report.

The resume may be a local path or an s3://bucket/key URI. The job description
comes from exactly one of --job, --job-file or --job-url, and must be at least
20 characters once surrounding whitespace is removed.`,
		Example: `  jobjeeves analyze --resume cv.pdf --job-file posting.txt
  jobjeeves analyze -r s3://resumes/jane.pdf --job-url https://jobs.lever.co/acme/123 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, g, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "Resume PDF path or s3://bucket/key")
	opts.job.register(cmd)
	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalOptions, opts *analyzeOptions) error {
	cfg, err := g.resolveConfig(cmd, func(c *config.Config) {
		if cmd.Flags().Changed("resume") {
			c.Resume = opts.resume
		}
		opts.job.apply(cmd, c)
	})
	if err != nil {
		return err
	}
	if cfg.Resume == "" {
		return fmt.Errorf("--resume is required (via flag or config)")
	}

	ctx := cmd.Context()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	doc, err := newLoader(cfg).Load(ctx, cfg.Resume)
	if err != nil {
		return fmt.Errorf("failed to load resume: %w", err)
	}
	posting, err := loadJobPosting(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		log.Printf("[VERBOSE] Job description: %d chars from %s", posting.Metadata.Chars, posting.Metadata.Source)
	}

	ctrl := submission.New(client, &submission.Options{Timeout: timeout, Verbose: cfg.Verbose})
	defer ctrl.Close()

	ctrl.SetDocument(doc)
	ctrl.SetJobDescription(posting.Text)
	if !ctrl.CanSubmit() {
		return gateError(posting.Text)
	}

	printer := newPrinter(cmd, cfg)
	ctrl.OnChange(printer.PrintState)

	done, ok := ctrl.Submit(ctx)
	if !ok {
		return fmt.Errorf("analysis could not be started")
	}
	final := <-done
	if final.Phase == submission.Failed {
		return fmt.Errorf("analysis failed: %s", final.Message)
	}
	return nil
}

// gateError explains why a loaded draft cannot be submitted.
func gateError(jobDescription string) error {
	if !submission.JobDescriptionReady(jobDescription) {
		return fmt.Errorf("%w: need at least %d characters, got %d",
			ingestion.ErrJobTextTooShort,
			submission.MinJobDescriptionLength,
			utf8.RuneCountInString(strings.TrimSpace(jobDescription)))
	}
	return fmt.Errorf("a resume PDF is required")
}
