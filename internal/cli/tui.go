package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/confgrid/confgrid/pkg/schedule"
	"github.com/confgrid/confgrid/pkg/timeline"
)

// browseCommand creates the interactive layout browser.
func (c *CLI) browseCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "browse [schedule|layout]",
		Short: "Step through a layout frame by frame",
		Long: `Step through a layout frame by frame in the terminal.

Keys: j/k or arrows move between frames, g/G jump to the first or last
frame, t jumps to the frame in progress now, ? toggles help, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, loc, err := c.loadLayout(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if len(l.Frames) == 0 {
				printInfo("Nothing to browse: the layout has no frames")
				return nil
			}

			p := tea.NewProgram(NewBrowseModel(l, loc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// Key Bindings
// =============================================================================

type browseKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Now    key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
		Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Now:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "now")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Now, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Now, k.Help, k.Quit},
	}
}

// =============================================================================
// BrowseModel - Interactive frame browser
// =============================================================================

var browseFrameStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1)

var (
	browseTrackStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseFreeStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

const (
	browseMinColumnWidth = 18
	browseDefaultWidth   = 100
)

// BrowseModel is the bubbletea model for browsing a layout.
type BrowseModel struct {
	layout schedule.Layout
	result timeline.Result
	loc    *time.Location
	now    func() time.Time

	keys   browseKeyMap
	help   help.Model
	cursor int
	width  int
	status string
}

// NewBrowseModel creates a browser positioned on the first frame.
func NewBrowseModel(l schedule.Layout, loc *time.Location) BrowseModel {
	if loc == nil {
		loc = time.UTC
	}
	return BrowseModel{
		layout: l,
		result: l.Result(),
		loc:    loc,
		now:    time.Now,
		keys:   defaultBrowseKeys(),
		help:   help.New(),
		width:  browseDefaultWidth,
	}
}

// Cursor returns the index of the frame on screen.
func (m BrowseModel) Cursor() int { return m.cursor }

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		m.status = ""
		last := len(m.layout.Frames) - 1
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < last {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
		case key.Matches(msg, m.keys.Bottom):
			m.cursor = max(last, 0)
		case key.Matches(msg, m.keys.Now):
			m.jumpToNow()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// jumpToNow moves to the frame in progress, or the next one to start.
func (m *BrowseModel) jumpToNow() {
	if len(m.layout.Frames) == 0 {
		return
	}
	i, inProgress := m.result.FrameAt(m.now())
	switch {
	case inProgress:
		m.status = "in progress"
	case i >= len(m.layout.Frames):
		i = len(m.layout.Frames) - 1
		m.status = "schedule is over"
	default:
		m.status = "next up"
	}
	m.cursor = i
}

func (m BrowseModel) View() string {
	var b strings.Builder

	title := m.layout.Name
	if title == "" {
		title = "Layout"
	}
	b.WriteString(StyleTitle.Render(title))
	if len(m.layout.Frames) == 0 {
		b.WriteString("\n\n" + StyleDim.Render("No frames") + "\n")
		return b.String()
	}

	f := m.layout.Frames[m.cursor]
	b.WriteString(StyleDim.Render(fmt.Sprintf("  frame %d/%d", m.cursor+1, len(m.layout.Frames))))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render(formatSpan(f.Start, f.End, m.loc)))
	if m.status != "" {
		b.WriteString("  " + StyleWarning.Render(m.status))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderColumns(f))
	b.WriteString("\n")

	if n := len(m.layout.Warnings); n > 0 {
		b.WriteString(StyleWarning.Render(plural(n, "event") + " left out"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderColumns draws one box per layout column. Columns without a session
// in this frame are drawn as free.
func (m BrowseModel) renderColumns(f schedule.LayoutFrame) string {
	cols := max(m.layout.MaxColumns, 1)
	width := max(m.width/cols-2, browseMinColumnWidth)

	byColumn := make(map[int]schedule.LayoutItem, len(f.Items))
	for _, it := range f.Items {
		byColumn[it.Column] = it
	}

	boxes := make([]string, cols)
	for col := 0; col < cols; col++ {
		var body string
		if it, ok := byColumn[col]; ok {
			lines := []string{browseTrackStyle.Render(m.layout.TrackName(it.Track))}
			for _, e := range it.Events {
				title := e.Title
				if title == "" {
					title = e.ID
				}
				lines = append(lines, e.Start.In(m.loc).Format("15:04")+"–"+e.End.In(m.loc).Format("15:04")+" "+title)
			}
			body = strings.Join(lines, "\n")
		} else {
			body = browseFreeStyle.Render("free")
		}
		boxes[col] = browseFrameStyle.Width(width).Render(body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}
