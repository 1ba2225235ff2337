package cli

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
)

// showCommand creates the show command, which prints one transformation
// with its steps.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a transformation and its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runShow(ctx context.Context, id string) error {
	return c.withStack(ctx, func(s *stack) error {
		p := newPrinter(c.out)
		d, ok := s.graph.Transformation(id)
		if !ok {
			err := errors.New(errors.ErrCodeNotFound, "transformation %q not found", id)
			p.failure("%s", errors.UserMessage(err))
			return err
		}

		p.title(d.String())
		if d.FileName != "" {
			p.keyValue("file", d.FileName)
		}
		p.keyValue("steps", strconv.Itoa(len(d.Steps)))
		for _, step := range d.Steps {
			p.detail("%s", formatStep(step))
		}
		return nil
	})
}

// formatStep renders a step as "operation a,b -> target (k=v ...)".
func formatStep(s model.TransformationStep) string {
	var b strings.Builder
	b.WriteString(string(s.Operation))
	if len(s.SourceFields) > 0 {
		b.WriteString(" " + strings.Join(s.SourceFields, ","))
	}
	b.WriteString(" -> " + s.TargetField)
	if len(s.Params) > 0 {
		params := make([]string, 0, len(s.Params))
		for _, k := range slices.Sorted(maps.Keys(s.Params)) {
			params = append(params, k+"="+s.Params[k])
		}
		b.WriteString(" (" + strings.Join(params, " ") + ")")
	}
	return b.String()
}
