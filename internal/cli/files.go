package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// filesCommand creates the files command, which lists the transformations
// loaded from a file.
func (c *CLI) filesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files FILE",
		Short: "List the transformations loaded from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFiles(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runFiles(ctx context.Context, name string) error {
	return c.withStack(ctx, func(s *stack) error {
		descs, err := s.graph.TransformationsPerFileName(ctx, name)
		if err != nil {
			return err
		}
		p := newPrinter(c.out)
		if len(descs) == 0 {
			p.warning("no transformations loaded from %s", name)
			return nil
		}
		p.title(name)
		for _, d := range descs {
			p.file(d.String())
			p.detail("%d step(s)", len(d.Steps))
		}
		return nil
	})
}
