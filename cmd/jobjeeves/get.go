package main

import (
	"github.com/spf13/cobra"
)

func newGetCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "get <analysis-id>",
		Short:   "Show a stored analysis by id",
		Example: `  jobjeeves get 7c9e6679-7425-40de-944b-e07fc1f90ae7`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			ctx, cancel, err := withTimeout(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cancel()

			record, err := client.GetAnalysis(ctx, args[0])
			if err != nil {
				return err
			}
			newPrinter(cmd, cfg).PrintRecord(record)
			return nil
		},
	}
}
