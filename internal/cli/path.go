package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/model"
)

// pathOpts holds the flags shared by the path and check commands.
type pathOpts struct {
	required []string // transformation ids the path must use
}

// pathCommand creates the path command, which prints the transformations
// leading from one model to another.
func (c *CLI) pathCommand() *cobra.Command {
	var opts pathOpts

	cmd := &cobra.Command{
		Use:   "path FROM TO",
		Short: "Find a transformation path between two models",
		Long: `Find a chain of transformations converting model FROM into model TO.

Models are written as name:version. With --require the path must use the
transformations with the given ids.`,
		Example: `  modelgraph path -l transformations/ -m Contact:1.0.0 -m Person:1.0.0 Contact:1.0.0 Person:1.0.0
  modelgraph path --require contact-person Contact:1.0.0 Employee:2.0.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPath(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.required, "require", "r", nil, "transformation id the path must use (repeatable)")
	return cmd
}

func (c *CLI) runPath(ctx context.Context, from, to string, opts pathOpts) error {
	source, target, err := parseEndpoints(from, to)
	if err != nil {
		return err
	}

	return c.withStack(ctx, func(s *stack) error {
		path, err := s.engine.TransformationPath(ctx, source, target, opts.required)
		p := newPrinter(c.out)
		if err != nil {
			p.failure("%v", err)
			return err
		}
		p.success("%d transformation(s) from %s to %s", len(path), source, target)
		for _, d := range path {
			p.file(d.String())
			if d.FileName != "" {
				p.detail("from %s", d.FileName)
			}
		}
		return nil
	})
}

// checkCommand creates the check command, which reports whether a path
// exists without printing it.
func (c *CLI) checkCommand() *cobra.Command {
	var opts pathOpts

	cmd := &cobra.Command{
		Use:   "check FROM TO",
		Short: "Check whether a model can be transformed into another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.required, "require", "r", nil, "transformation id the path must use (repeatable)")
	return cmd
}

func (c *CLI) runCheck(ctx context.Context, from, to string, opts pathOpts) error {
	source, target, err := parseEndpoints(from, to)
	if err != nil {
		return err
	}

	return c.withStack(ctx, func(s *stack) error {
		p := newPrinter(c.out)
		if s.engine.IsTransformationPossible(ctx, source, target, opts.required) {
			p.success("%s can be transformed into %s", source, target)
		} else {
			p.warning("%s cannot be transformed into %s", source, target)
		}
		return nil
	})
}

func parseEndpoints(from, to string) (model.ModelDescription, model.ModelDescription, error) {
	source, err := model.ParseModel(from)
	if err != nil {
		return model.ModelDescription{}, model.ModelDescription{}, err
	}
	target, err := model.ParseModel(to)
	if err != nil {
		return model.ModelDescription{}, model.ModelDescription{}, err
	}
	return source, target, nil
}
