// Package main provides the jobjeeves CLI, which submits a resume and a job
// description to the analysis service and prints the match report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "jobjeeves",
		Short: "Resume vs. job description match analysis",
		Long: `jobjeeves sends a resume (PDF) and a job description to the analysis service
and prints the match score, missing keywords, strengths and improvement suggestions.

Settings come from flags, then the --config JSON file, then JOBJEEVES_* environment
variables (a .env file is loaded if present), then built-in defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.register(root)

	root.AddCommand(
		newAnalyzeCmd(opts),
		newBatchCmd(opts),
		newGetCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
