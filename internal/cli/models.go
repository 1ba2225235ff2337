package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/model"
)

// modelsCommand creates the models command, which prints a table of the
// models in the graph.
func (c *CLI) modelsCommand() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models in the graph and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runModels(cmd.Context(), activeOnly)
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only list active models")
	return cmd
}

func (c *CLI) runModels(ctx context.Context, activeOnly bool) error {
	return c.withStack(ctx, func(s *stack) error {
		snap, err := s.graph.Snapshot(ctx)
		if err != nil {
			return err
		}
		rows := modelRows(snap, activeOnly)
		p := newPrinter(c.out)
		if len(rows) == 0 {
			p.warning("no models")
			return nil
		}
		fmt.Fprintln(c.out, modelTable(rows, p.color).Render())
		return nil
	})
}

// modelRows returns one row per node: name, version, state and the number
// of outgoing and incoming transformations.
func modelRows(snap graph.Snapshot, activeOnly bool) [][]string {
	out := make(map[string]int)
	in := make(map[string]int)
	for _, e := range snap.Edges {
		out[e.From]++
		in[e.To]++
	}

	var rows [][]string
	for _, n := range snap.Nodes {
		if activeOnly && !n.Active {
			continue
		}
		m, err := model.ParseModel(n.Key)
		if err != nil {
			m = model.ModelDescription{Name: n.Key}
		}
		state := "inactive"
		if n.Active {
			state = "active"
		}
		rows = append(rows, []string{m.Name, m.Version, state, strconv.Itoa(out[n.Key]), strconv.Itoa(in[n.Key])})
	}
	return rows
}

func modelTable(rows [][]string, color bool) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Model", "Version", "State", "Out", "In").
		Rows(rows...)
	if !color {
		return t
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return t.
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				if rows[row][2] == "active" {
					return cell.Inherit(styleActive)
				}
				return cell.Inherit(styleInactive)
			}
			return cell
		})
}
