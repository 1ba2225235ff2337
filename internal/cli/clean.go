package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// cleanCommand creates the clean command. It empties the configured store,
// which only matters for the redis backend.
func (c *CLI) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all models and transformations from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClean(cmd.Context())
		},
	}
}

func (c *CLI) runClean(ctx context.Context) error {
	return c.withStack(ctx, func(s *stack) error {
		snap, err := s.graph.Snapshot(ctx)
		if err != nil {
			return err
		}
		if err := s.graph.Clean(ctx); err != nil {
			return err
		}
		newPrinter(c.out).success("removed %d model(s) and %d transformation(s)", len(snap.Nodes), len(snap.Edges))
		return nil
	})
}
