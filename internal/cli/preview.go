package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
	"github.com/matzehuels/panelpush/pkg/layout/manager"
	"github.com/matzehuels/panelpush/pkg/notify"
	"github.com/matzehuels/panelpush/pkg/scene"
)

const (
	// defaultResizeStep is the viewport change per key press.
	defaultResizeStep = 40

	// Canvas size in terminal cells.
	canvasCols = 64
	canvasRows = 18

	// Approximate pixel size of one terminal cell, used in fit mode.
	cellWidth  = 8
	cellHeight = 16
)

// Preview styles
var (
	canvasBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	canvasEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	canvasPanelStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	canvasMovedStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		gap           float64
		width, height float64
		step          float64
	)

	cmd := &cobra.Command{
		Use:   "preview [scene]",
		Short: "Interactively preview a scene layout in the terminal",
		Long: `Preview draws the resolved scene on a terminal canvas and keeps it resolved
while the viewport changes.

Keys:
  ←/→ h/l   shrink or grow the viewport width
  ↑/↓ k/j   shrink or grow the viewport height
  f         fit the viewport to the terminal and follow its size
  tab       select the next panel (shift+tab: previous)
  space     hide or show the selected panel
  m         pin or unpin the selected panel
  +/-       raise or lower the selected panel's priority
  s         re-run the layout as a scroll would
  r         reload the scene file
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("gap") {
				sc.Doc.Gap = &gap
			}
			if width > 0 {
				sc.Doc.Viewport.Width = width
			}
			if height > 0 {
				sc.Doc.Viewport.Height = height
			}
			return c.runPreview(cmd.Context(), sc, step)
		},
	}

	cmd.Flags().Float64Var(&gap, "gap", 0, "clearance between panels (overrides the scene)")
	cmd.Flags().Float64Var(&width, "width", 0, "initial viewport width (overrides the scene)")
	cmd.Flags().Float64Var(&height, "height", 0, "initial viewport height (overrides the scene)")
	cmd.Flags().Float64Var(&step, "step", defaultResizeStep, "viewport change per key press")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, sc *scene.Scene, step float64) error {
	m := newPreviewModel(sc, step, manager.WithLogger(loggerFromContext(ctx)))
	defer m.resizer.Cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.link.set(p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// =============================================================================
// Preview Model
// =============================================================================

// viewportMsg carries a debounced terminal-driven viewport.
type viewportMsg geom.Viewport

// programLink lets debounced callbacks reach the running program.
type programLink struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (l *programLink) set(send func(tea.Msg)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.send = send
}

func (l *programLink) deliver(msg tea.Msg) {
	l.mu.Lock()
	send := l.send
	l.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// sceneRects serves the current scene's rectangles to the manager. Reloads
// swap the map in place so the manager keeps its provider.
type sceneRects struct {
	mu    sync.RWMutex
	rects layout.Rects[string]
}

func (s *sceneRects) Rect(id string) (geom.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rects.Rect(id)
}

func (s *sceneRects) replace(r layout.Rects[string]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rects = r
}

// previewModel is the bubbletea model for the interactive preview.
type previewModel struct {
	sc      *scene.Scene
	rects   *sceneRects
	mgr     *manager.Manager[string]
	resizer *notify.ViewportDebouncer
	link    *programLink

	step     float64
	fit      bool
	selected int
	width    int
	height   int
	err      error
}

func newPreviewModel(sc *scene.Scene, step float64, opts ...manager.Option) previewModel {
	if step <= 0 {
		step = defaultResizeStep
	}
	rects := &sceneRects{rects: sc.Rects()}
	opts = append([]manager.Option{
		manager.WithGap(sc.Gap()),
		manager.WithTransition(sc.Transition()),
	}, opts...)

	mgr := manager.New[string](rects, sc.Viewport(), opts...)
	mgr.SetElements(sc.Elements())

	return previewModel{
		sc:      sc,
		rects:   rects,
		mgr:     mgr,
		resizer: notify.NewViewportDebouncer(notify.DefaultDebounce),
		link:    &programLink{},
		step:    step,
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		vp := m.mgr.Viewport()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.resize(geom.Viewport{Width: vp.Width - m.step, Height: vp.Height})
		case "right", "l":
			m.resize(geom.Viewport{Width: vp.Width + m.step, Height: vp.Height})
		case "up", "k":
			m.resize(geom.Viewport{Width: vp.Width, Height: vp.Height - m.step})
		case "down", "j":
			m.resize(geom.Viewport{Width: vp.Width, Height: vp.Height + m.step})
		case "f":
			m.fit = !m.fit
			if m.fit && m.width > 0 {
				m.resize(terminalViewport(m.width, m.height))
			}
		case "tab":
			m.selectNext(1)
		case "shift+tab":
			m.selectNext(-1)
		case " ":
			m.editSelected(func(el *scene.Element) {
				visible := el.Visible != nil && !*el.Visible
				el.Visible = &visible
			})
		case "m":
			m.editSelected(func(el *scene.Element) {
				movable := el.Movable != nil && !*el.Movable
				el.Movable = &movable
			})
		case "+", "=":
			m.editSelected(func(el *scene.Element) { el.Priority = max(el.Priority, layout.DefaultPriority) + 1 })
		case "-":
			m.editSelected(func(el *scene.Element) { el.Priority = max(el.Priority-1, layout.DefaultPriority) })
		case "s":
			m.mgr.Scroll()
		case "r":
			m.reload()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.fit {
			link := m.link
			m.resizer.Resize(terminalViewport(msg.Width, msg.Height), func(vp geom.Viewport) {
				link.deliver(viewportMsg(vp))
			})
		}
	case viewportMsg:
		m.resize(geom.Viewport(msg))
	}
	return m, nil
}

// resize applies vp unless it would leave no room for a single step.
func (m *previewModel) resize(vp geom.Viewport) {
	if vp.Width < m.step || vp.Height < m.step {
		return
	}
	m.mgr.Resize(vp)
}

func (m *previewModel) selectNext(delta int) {
	n := len(m.sc.Doc.Elements)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

// editSelected changes the selected element's descriptor and hands the new
// descriptors to the manager, which re-runs the layout.
func (m *previewModel) editSelected(edit func(*scene.Element)) {
	if m.selected >= len(m.sc.Doc.Elements) {
		return
	}
	edit(&m.sc.Doc.Elements[m.selected])
	m.mgr.SetElements(m.sc.Elements())
}

// selectedLabel describes the selected element for the header.
func (m previewModel) selectedLabel() string {
	if m.selected >= len(m.sc.Doc.Elements) {
		return ""
	}
	el := m.sc.Doc.Elements[m.selected]
	flags := []string{fmt.Sprintf("p%d", max(el.Priority, layout.DefaultPriority))}
	if el.Visible != nil && !*el.Visible {
		flags = append(flags, "hidden")
	}
	if el.Movable != nil && !*el.Movable {
		flags = append(flags, "pinned")
	}
	return el.ID + " (" + strings.Join(flags, ", ") + ")"
}

// reload re-reads the scene file. The layout re-runs even when descriptors
// are unchanged since rectangles may have moved.
func (m *previewModel) reload() {
	if m.sc.Path == "" {
		return
	}
	sc, err := scene.Load(m.sc.Path)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.sc = sc
	m.selected = min(m.selected, max(len(sc.Doc.Elements)-1, 0))
	m.rects.replace(sc.Rects())
	if !m.mgr.SetElements(sc.Elements()) {
		m.mgr.Refresh()
	}
}

func (m previewModel) View() string {
	var b strings.Builder

	res := m.mgr.Result()
	vp := m.mgr.Viewport()

	b.WriteString(StyleTitle.Render(m.sc.Name()))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%gx%g · pass %d", vp.Width, vp.Height, m.mgr.Passes())))
	if m.fit {
		b.WriteString(StyleDim.Render(" · fit"))
	}
	if label := m.selectedLabel(); label != "" {
		b.WriteString(StyleDim.Render(" · selected ") + StyleHighlight.Render(label))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ width  ↑/↓ height  f fit  tab select  space hide  m pin  +/- priority  s scroll  r reload  q quit"))
	b.WriteString("\n\n")

	b.WriteString(canvasBorderStyle.Render(renderCanvas(res, m.rects, vp, canvasCols, canvasRows)))
	b.WriteString("\n")
	b.WriteString(canvasLegend(res))
	b.WriteString("\n")
	b.WriteString(placementsTable(scene.NewReport(m.sc, res, m.mgr.Viewport(), m.sc.Gap())))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	}
	return b.String()
}

// =============================================================================
// Canvas
// =============================================================================

// terminalViewport converts a terminal size to an approximate pixel viewport.
func terminalViewport(cols, rows int) geom.Viewport {
	return geom.Viewport{Width: float64(cols * cellWidth), Height: float64(rows * cellHeight)}
}

// canvasLabel returns the glyph drawn for the i-th placed element.
func canvasLabel(i int) rune {
	const labels = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	if i < len(labels) {
		return rune(labels[i])
	}
	return '#'
}

// renderCanvas draws the displayed rectangles scaled into a cols x rows grid.
// Elements are painted lowest priority first so higher ones end up on top.
func renderCanvas(res layout.Result[string], rects layout.RectProvider[string], vp geom.Viewport, cols, rows int) string {
	if cols <= 0 || rows <= 0 || vp.Width <= 0 || vp.Height <= 0 {
		return ""
	}
	grid := make([][]rune, rows)
	moved := make([][]bool, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat("·", cols))
		moved[y] = make([]bool, cols)
	}

	sx := float64(cols) / vp.Width
	sy := float64(rows) / vp.Height
	for i := len(res.Order) - 1; i >= 0; i-- {
		id := res.Order[i]
		natural, ok := rects.Rect(id)
		if !ok {
			continue
		}
		p, _ := res.Get(id)
		r := p.Apply(natural)

		x0, x1 := cellSpan(r.Left*sx, r.Right*sx, cols)
		y0, y1 := cellSpan(r.Top*sy, r.Bottom*sy, rows)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = canvasLabel(i)
				moved[y][x] = !p.Offset.IsZero()
			}
		}
	}

	lines := make([]string, rows)
	for y := range grid {
		var line strings.Builder
		for x, ch := range grid[y] {
			switch {
			case ch == '·':
				line.WriteString(canvasEmptyStyle.Render(string(ch)))
			case moved[y][x]:
				line.WriteString(canvasMovedStyle.Render(string(ch)))
			default:
				line.WriteString(canvasPanelStyle.Render(string(ch)))
			}
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// cellSpan converts a scaled interval to clipped cell indices. Every visible
// element covers at least one cell.
func cellSpan(lo, hi float64, n int) (int, int) {
	a := int(math.Floor(lo))
	b := int(math.Ceil(hi))
	if b <= a {
		b = a + 1
	}
	return max(a, 0), min(b, n)
}

// canvasLegend maps canvas glyphs to element ids.
func canvasLegend(res layout.Result[string]) string {
	parts := make([]string, len(res.Order))
	for i, id := range res.Order {
		parts[i] = canvasPanelStyle.Render(string(canvasLabel(i))) + " " + StyleDim.Render(id)
	}
	return strings.Join(parts, "  ")
}
