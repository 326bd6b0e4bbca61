package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			status, err := client.Health(ctx)
			if err != nil {
				return err
			}
			newPrinter(cmd, cfg).PrintHealth(client.BaseURL(), status)
			if !status.OK {
				return fmt.Errorf("analysis service at %s is not healthy", client.BaseURL())
			}
			return nil
		},
	}
}
