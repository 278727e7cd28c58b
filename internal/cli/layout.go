package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// layoutOutput is the JSON form of a computed layout.
type layoutOutput struct {
	Segments []trajectory.Segment        `json:"segments"`
	Labels   []trajectory.LabelPlacement `json:"labels"`
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags    sourceFlags
		asJSON   bool
		fontSize float64
	)

	cmd := &cobra.Command{
		Use:   "layout [text...]",
		Short: "Print the vectors and merged labels of a token stream",
		Long: `Compute the layout of a token stream: one vector per token from the
previous anchor to its destination, and one label per non-zero vector or per
run of same-category tokens that share a point.`,
		Example: `  tokenviz layout "Hello, world!"
  tokenviz layout --file fox.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadStream(cmd.Context(), &flags, joinArgs(args))
			if err != nil {
				return err
			}
			return runLayout(cmd.Context(), os.Stdout, s, asJSON, fontSize)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the layout as JSON")
	cmd.Flags().Float64Var(&fontSize, "font-size", trajectory.DefaultFontSize, "label font size in world units")

	return cmd
}

func runLayout(ctx context.Context, w io.Writer, s *stream, asJSON bool, fontSize float64) error {
	out := layoutOutput{
		Segments: trajectory.ComputeSegments(s.Tokens),
		Labels:   trajectory.ComputeLabels(s.Tokens, trajectory.WithFontSize(fontSize)),
	}
	loggerFromContext(ctx).Debug("computed layout", "segments", len(out.Segments), "labels", len(out.Labels))

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(w, StyleTitle.Render("Vectors"))
	fmt.Fprintln(w, segmentTable(s.Tokens, out.Segments).Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Labels"))
	fmt.Fprintln(w, labelTable(out.Labels).Render())
	fmt.Fprintln(w, StyleDim.Render("  "+statsLine(len(s.Tokens), s.outputCount())))
	return nil
}

func segmentTable(tokens []trajectory.TokenVector, segs []trajectory.Segment) *table.Table {
	rows := make([][]string, len(segs))
	for i, seg := range segs {
		length := "·"
		if l := seg.Length(); l > 0 {
			length = strconv.FormatFloat(l, 'f', 3, 64)
		}
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Quote(tokens[i].Token),
			seg.Category.String(),
			seg.Start.String(),
			seg.End.String(),
			length,
		}
	}
	return newTable(rows, func(row int) trajectory.Category { return segs[row].Category },
		"#", "Token", "Kind", "Start", "End", "Length")
}

func labelTable(labels []trajectory.LabelPlacement) *table.Table {
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rows[i] = []string{strconv.Itoa(i), l.Text, l.Category.String(), l.Position.String()}
	}
	return newTable(rows, func(row int) trajectory.Category { return labels[row].Category },
		"#", "Text", "Kind", "Position")
}

// newTable builds a bordered table whose rows are colored by category.
func newTable(rows [][]string, category func(row int) trajectory.Category, headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 || row < 0 || row >= len(rows) {
				return StyleDim
			}
			return categoryStyle(category(row))
		})
}
