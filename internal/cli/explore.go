package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/astlens/pkg/interact"
	"github.com/matzehuels/astlens/pkg/pipeline"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/render/raster"
	"github.com/matzehuels/astlens/pkg/tree"
	"github.com/matzehuels/astlens/pkg/viewer"
	"github.com/matzehuels/astlens/pkg/viewport"
)

const (
	// statusLines is the number of terminal rows below the diagram.
	statusLines = 2

	// panStep is how far one arrow key moves the view, in cells.
	panStep = 4

	// snapshotPixelRatio is the resolution of PNG snapshots.
	snapshotPixelRatio = 2.0
)

var (
	statusBarStyle = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236"))
	statusKeyStyle = lipgloss.NewStyle().Foreground(colorCyan).Background(lipgloss.Color("236")).Bold(true)
	statusMsgStyle = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "explore [analysis.json]",
		Short: "Explore an analysis document in the terminal",
		Long: `Explore an analysis document in the terminal.

The merged tree is drawn with line characters and can be moved around:

  drag       pan
  wheel      zoom at the pointer
  + / -      zoom around the center
  f          fit the tree to the window
  arrows     pan
  s          save the current view as a PNG snapshot
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), args[0], opts)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts pipeline.Options) error {
	a, err := tree.ReadAnalysisFile(input)
	if err != nil {
		return fmt.Errorf("load analysis %s: %w", input, err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	m, err := newExploreModel(input, pipeline.Build(a), opts)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("starting explorer", "nodes", m.v.Layout().Len())

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("explorer: %w", err)
	}
	if fm, ok := final.(*exploreModel); ok && fm.snapshots > 0 {
		printSuccess("Saved %s", pluralSnapshots(fm.snapshots))
	}
	return nil
}

// =============================================================================
// exploreModel - bubbletea model around a Viewer
// =============================================================================

// exploreModel forwards terminal input to a viewer whose surface is a grid
// of terminal cells. Mouse positions are converted from cells to the
// viewer's screen pixels at the cell centers.
type exploreModel struct {
	v        *viewer.Viewer
	renderer render.Renderer
	title    string
	base     string

	width, height int
	sized         bool
	message       string
	snapshots     int
}

func newExploreModel(input string, root *tree.Node, opts pipeline.Options) (*exploreModel, error) {
	renderer := opts.Renderer()
	v, err := viewer.New(
		func(w, h int) (render.Surface, error) { return newTermSurface(w, h), nil },
		viewer.WithSize(80*cellWidth, 22*cellHeight, 1),
		viewer.WithLayout(opts.Layout),
		viewer.WithRenderer(renderer),
		viewer.WithFitMargin(opts.FitMargin),
		viewer.WithViewport(viewport.WithScaleRange(opts.MinScale, opts.MaxScale)),
	)
	if err != nil {
		return nil, err
	}
	v.SetTree(root)
	return &exploreModel{
		v:        v,
		renderer: renderer,
		title:    input,
		base:     basePath("", input),
		width:    80,
		height:   22 + statusLines,
	}, nil
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			m.v.ZoomIn()
		case "-", "_":
			m.v.ZoomOut()
		case "f", "0":
			m.v.Fit()
		case "left", "h":
			m.v.Pan(panStep*cellWidth, 0)
		case "right", "l":
			m.v.Pan(-panStep*cellWidth, 0)
		case "up", "k":
			m.v.Pan(0, panStep*cellHeight)
		case "down", "j":
			m.v.Pan(0, -panStep*cellHeight)
		case "s":
			path, err := m.snapshot()
			if err != nil {
				m.message = "snapshot failed: " + err.Error()
			} else {
				m.message = "saved " + path
			}
		}
	}
	return m, nil
}

// resize fits the tree on the first size message and keeps pan and zoom
// on later ones.
func (m *exploreModel) resize(w, h int) {
	rows := max(1, h-statusLines)
	cols := max(1, w)
	m.width, m.height = cols, rows+statusLines
	cw, ch := float64(cols)*cellWidth, float64(rows)*cellHeight
	var err error
	if m.sized {
		err = m.v.Resize(cw, ch, 1)
	} else {
		err = m.v.ResizeAndFit(cw, ch, 1)
		m.sized = err == nil
	}
	if err != nil {
		m.message = err.Error()
	}
}

func (m *exploreModel) mouse(msg tea.MouseMsg) {
	x := (float64(msg.X) + 0.5) * cellWidth
	y := (float64(msg.Y) + 0.5) * cellHeight
	var e interact.Event
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		e = interact.Event{Kind: interact.Wheel, X: x, Y: y, DeltaY: -1}
	case msg.Button == tea.MouseButtonWheelDown:
		e = interact.Event{Kind: interact.Wheel, X: x, Y: y, DeltaY: 1}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		e = interact.Event{Kind: interact.PointerDown, X: x, Y: y}
	case msg.Action == tea.MouseActionMotion:
		e = interact.Event{Kind: interact.PointerMove, X: x, Y: y}
	case msg.Action == tea.MouseActionRelease:
		e = interact.Event{Kind: interact.PointerUp, X: x, Y: y}
	default:
		return
	}
	m.v.Handle(e)
}

// snapshot writes the current view as a PNG next to the input file.
func (m *exploreModel) snapshot() (string, error) {
	size, _ := m.v.Size()
	r := m.renderer
	r.PixelRatio = snapshotPixelRatio
	w := int(math.Ceil(size.W * snapshotPixelRatio))
	h := int(math.Ceil(size.H * snapshotPixelRatio))
	data, err := raster.Frame(m.v.Layout(), m.v.Viewport(), r, w, h)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s.snapshot-%d.png", m.base, m.snapshots+1)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	m.snapshots++
	return path, nil
}

func (m *exploreModel) View() string {
	var b strings.Builder
	if s, ok := m.v.Surface().(*termSurface); ok {
		b.WriteString(s.String())
	}
	b.WriteByte('\n')
	b.WriteString(m.statusBar())
	b.WriteByte('\n')
	if m.message != "" {
		b.WriteString(statusMsgStyle.Render(truncateRunes(m.message, m.width)))
	} else {
		b.WriteString(helpStyle.Render(truncateRunes("drag pan · wheel zoom · +/- zoom · f fit · arrows pan · s snapshot · q quit", m.width)))
	}
	return b.String()
}

// statusBar shows the scale, pan and the types of the visible nodes.
func (m *exploreModel) statusBar() string {
	vp := m.v.Viewport()
	px, py := vp.Pan()
	head := fmt.Sprintf(" %s  %3.0f%%  pan %.0f,%.0f ", m.title, vp.Scale()*100, px, py)

	visible := m.v.VisibleNodes()
	labels := make([]string, 0, len(visible))
	if res := m.v.Layout(); !res.Empty() {
		for _, i := range visible {
			n := res.Node(i)
			if render.HasSecondary(n.Type, n.Label) {
				labels = append(labels, n.Type+" "+n.Label)
			} else {
				labels = append(labels, n.Type)
			}
		}
	}
	tail := fmt.Sprintf(" %d visible: %s", len(visible), strings.Join(labels, ", "))
	room := max(0, m.width-lipgloss.Width(head))
	line := statusKeyStyle.Render(head) + statusBarStyle.Render(padRight(truncateRunes(tail, room), room))
	return line
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

func pluralSnapshots(n int) string {
	if n == 1 {
		return "1 snapshot"
	}
	return fmt.Sprintf("%d snapshots", n)
}
