package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// loadCommand creates the load command. It loads transformation files into
// the configured store, which only outlives the command with the redis
// backend.
func (c *CLI) loadCommand() *cobra.Command {
	var unload bool

	cmd := &cobra.Command{
		Use:   "load PATH...",
		Short: "Load transformation files and directories",
		Long: `Load transformation files (.xml, .transformation, .toml, .json) and directories.

Loading a file again replaces the transformations it contributed before. With
--unload the transformations of the given files are removed instead. Both are
only useful with a persistent store (store.backend = "redis").`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unload {
				return c.runUnload(cmd.Context(), args)
			}
			return c.runLoad(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVar(&unload, "unload", false, "remove the transformations of the given files")
	return cmd
}

func (c *CLI) runLoad(ctx context.Context, paths []string) error {
	return c.withStack(ctx, func(s *stack) error {
		prog := newProgress(c.Logger)
		n, err := s.engine.LoadFiles(ctx, paths...)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Loaded %d transformations", n))

		snap, err := s.graph.Snapshot(ctx)
		if err != nil {
			return err
		}
		p := newPrinter(c.out)
		p.success("%d transformation(s) loaded", n)
		p.keyValue("models", fmt.Sprint(len(snap.Nodes)))
		p.keyValue("active", fmt.Sprint(len(snap.ActiveModels())))
		p.keyValue("files", fmt.Sprint(len(snap.FileNames())))
		return nil
	})
}

func (c *CLI) runUnload(ctx context.Context, paths []string) error {
	return c.withStack(ctx, func(s *stack) error {
		p := newPrinter(c.out)
		for _, path := range paths {
			n, err := s.engine.UnloadFile(ctx, path)
			if err != nil {
				return err
			}
			if n == 0 {
				p.info("nothing loaded from %s", path)
				continue
			}
			p.success("%d transformation(s) removed from %s", n, path)
		}
		return nil
	})
}
