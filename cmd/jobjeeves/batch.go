package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/jonathan/jobjeeves/internal/config"
	"github.com/jonathan/jobjeeves/internal/report"
	"github.com/jonathan/jobjeeves/internal/submission"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type batchOptions struct {
	resumes     []string
	concurrency int
	job         jobFlags
}

func newBatchCmd(g *globalOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze several resumes against one job description",
		Long: `Batch runs one analysis per resume against the same job description, with at
most --concurrency analyses in flight. Each resume gets its own submission;
a failure for one resume does not stop the others.`,
		Example: `  jobjeeves batch --resumes alice.pdf,bob.pdf --job-file posting.txt --concurrency 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, g, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.resumes, "resumes", nil, "Comma-separated resume PDF paths or s3:// URIs (required)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, fmt.Sprintf("Maximum analyses in flight (default %d, max %d)", config.DefaultConcurrency, config.MaxConcurrency))
	opts.job.register(cmd)
	_ = cmd.MarkFlagRequired("resumes")
	return cmd
}

func runBatch(cmd *cobra.Command, g *globalOptions, opts *batchOptions) error {
	cfg, err := g.resolveConfig(cmd, func(c *config.Config) {
		if cmd.Flags().Changed("concurrency") {
			c.Concurrency = opts.concurrency
		}
		opts.job.apply(cmd, c)
	})
	if err != nil {
		return err
	}

	var resumes []string
	for _, r := range opts.resumes {
		if r = strings.TrimSpace(r); r != "" {
			resumes = append(resumes, r)
		}
	}
	if len(resumes) == 0 {
		return fmt.Errorf("--resumes must name at least one resume")
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
	posting, err := loadJobPosting(ctx, cfg)
	if err != nil {
		return err
	}
	if !submission.JobDescriptionReady(posting.Text) {
		return gateError(posting.Text)
	}

	loader := newLoader(cfg)
	rows := make([]report.BatchRow, len(resumes))

	var group errgroup.Group
	group.SetLimit(cfg.Concurrency)
	for i, source := range resumes {
		rows[i].Resume = filepath.Base(source)
		group.Go(func() error {
			doc, err := loader.Load(ctx, source)
			if err != nil {
				rows[i].Error = err.Error()
				return nil
			}

			ctrl := submission.New(client, &submission.Options{Timeout: timeout, Verbose: cfg.Verbose})
			defer ctrl.Close()
			ctrl.SetDocument(doc)
			ctrl.SetJobDescription(posting.Text)

			done, ok := ctrl.Submit(ctx)
			if !ok {
				rows[i].Error = "analysis could not be started"
				return nil
			}
			final := <-done
			if final.Phase == submission.Succeeded {
				rows[i].Result = final.Result
			} else {
				rows[i].Error = final.Message
			}
			if cfg.Verbose {
				log.Printf("[VERBOSE] %s: %s", source, final.Phase)
			}
			return nil
		})
	}
	_ = group.Wait()

	newPrinter(cmd, cfg).PrintBatch(rows)

	failed := 0
	for _, row := range rows {
		if row.Result == nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(rows))
	}
	return nil
}
