package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/confgrid/confgrid/pkg/schedule"
)

// showCommand creates the show command that prints a layout as a table.
func (c *CLI) showCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "show [schedule|layout]",
		Short: "Print the frames of a schedule as a table",
		Long: `Print the frames of a schedule as a table, one row per frame and one
table column per layout column.

The argument is either a schedule (laid out on the fly) or a layout file
written by 'layout' (*.layout.json, *.layout.yaml).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, loc, err := c.loadLayout(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLayoutTable(l, loc))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// loadLayout reads a layout file, or computes the layout of a schedule.
// The returned location is the display zone.
func (c *CLI) loadLayout(cmd *cobra.Command, path string, flags *pipelineFlags) (schedule.Layout, *time.Location, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return schedule.Layout{}, nil, err
	}
	opts, err := flags.options(cmd, cfg)
	if err != nil {
		return schedule.Layout{}, nil, err
	}
	loc, err := opts.Location()
	if err != nil {
		return schedule.Layout{}, nil, err
	}

	if schedule.IsLayoutPath(path) {
		l, err := schedule.ReadLayoutFile(path)
		return l, loc, err
	}

	data, err := readSource(path)
	if err != nil {
		return schedule.Layout{}, nil, err
	}
	opts.Source = path
	opts.Data = data

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return schedule.Layout{}, nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s, err := runner.Load(ctx, opts)
	if err != nil {
		return schedule.Layout{}, nil, err
	}
	l, err := runner.Layout(ctx, s, opts)
	if err != nil {
		return schedule.Layout{}, nil, err
	}
	return l, loc, nil
}

// renderLayoutTable renders every frame of l as a table row. Times are shown
// in loc.
func renderLayoutTable(l schedule.Layout, loc *time.Location) string {
	headers := []string{"Time"}
	for col := 0; col < l.MaxColumns; col++ {
		headers = append(headers, strconv.Itoa(col))
	}

	rows := make([][]string, 0, len(l.Frames))
	for _, f := range l.Frames {
		row := make([]string, 1+l.MaxColumns)
		row[0] = formatSpan(f.Start, f.End, loc)
		for _, it := range f.Items {
			row[1+it.Column] = sessionCell(l, it, loc)
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		BorderRow(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return cellStyle.Foreground(colorCyan)
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	if l.Name != "" {
		b.WriteString(StyleTitle.Render(l.Name))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(summary(l)))
	return b.String()
}

// sessionCell lists a session's track and events, one per line.
func sessionCell(l schedule.Layout, it schedule.LayoutItem, loc *time.Location) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(l.TrackName(it.Track))}
	for _, e := range it.Events {
		title := e.Title
		if title == "" {
			title = e.ID
		}
		lines = append(lines, e.Start.In(loc).Format("15:04")+" "+title)
	}
	return strings.Join(lines, "\n")
}

// formatSpan formats [start, end) compactly, omitting the end date when it
// matches the start date.
func formatSpan(start, end time.Time, loc *time.Location) string {
	start, end = start.In(loc), end.In(loc)
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return start.Format("Mon Jan 2 15:04") + "–" + end.Format("15:04")
	}
	return start.Format("Mon Jan 2 15:04") + "–" + end.Format("Mon Jan 2 15:04")
}

func summary(l schedule.Layout) string {
	parts := []string{plural(len(l.Frames), "frame"), plural(l.MaxColumns, "column")}
	if n := len(l.Warnings); n > 0 {
		parts = append(parts, plural(n, "event")+" left out")
	}
	return strings.Join(parts, " · ")
}
