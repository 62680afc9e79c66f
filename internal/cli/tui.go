package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/pipeline"
	"github.com/matzehuels/wardley/pkg/position"
)

// Editor grid defaults and the rows taken by everything but the map.
const (
	defaultEditorCols = 50
	defaultEditorRows = 20
	minEditorCols     = 20
	minEditorRows     = 8
	editorChromeRows  = 5

	// The map's first cell sits below the title line and inside the border.
	mapTop  = 2
	mapLeft = 1
)

// Glyphs
const (
	glyphComponent = "●"
	glyphAnchor    = "◆"
	glyphEvolved   = "○"
	glyphLink      = "·"
)

// Editor styles
var (
	editorBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	editorNodeStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	editorEvolvedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editorSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editorDragStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	editorLinkStyle     = lipgloss.NewStyle().Foreground(colorDim)
	editorErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Interaction state
// =============================================================================

type dragState int

const (
	stateIdle dragState = iota
	stateDragging
)

func (s dragState) String() string {
	if s == stateDragging {
		return "dragging"
	}
	return "idle"
}

// drag is the Dragging(id, origin) state. origin is the overlay offset of id
// when the drag began and offset the offset it would get if dropped now.
type drag struct {
	id     string
	origin position.Point
	offset position.Point

	// Mouse drags follow the pointer from grab; keyboard drags step.
	mouse bool
	grab  position.Point
}

// =============================================================================
// Key bindings
// =============================================================================

type editorKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Grab   key.Binding
	Cancel key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Save   key.Binding
	Quit   key.Binding
}

var defaultEditorKeys = editorKeys{
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
	Grab:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "grab/drop")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Save:   key.NewBinding(key.WithKeys("w", "ctrl+s"), key.WithHelp("w", "save")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Grab, k.Cancel, k.Save, k.Quit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Grab, k.Cancel},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Save, k.Quit},
	}
}

// =============================================================================
// editorModel - Interactive overlay editing
// =============================================================================

// editorModel draws a laid out map on a character grid and turns drags into
// overlay moves. Every drop goes through Runner.Move; a failed move keeps
// the last good overlay.
type editorModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options
	save   func(overlay string) (string, error)

	layout   layout.Layout
	selected int
	state    dragState
	drag     drag

	cols, rows int
	keys       editorKeys
	help       help.Model

	dirty  bool
	status string
	err    error
}

func newEditorModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, save func(string) (string, error)) (editorModel, error) {
	m := editorModel{
		ctx:    ctx,
		runner: runner,
		opts:   opts,
		save:   save,
		cols:   defaultEditorCols,
		rows:   defaultEditorRows,
		keys:   defaultEditorKeys,
		help:   help.New(),
	}
	if err := m.relayout(); err != nil {
		return editorModel{}, err
	}
	return m, nil
}

func (m *editorModel) relayout() error {
	res, err := m.runner.Execute(m.ctx, m.opts)
	if err != nil {
		return err
	}
	m.layout = res.Layout
	if m.selected >= len(m.layout.Nodes) {
		m.selected = 0
	}
	return nil
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width-2, minEditorCols)
		m.rows = max(msg.Height-editorChromeRows, minEditorRows)
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	return m, nil
}

func (m editorModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	n := len(m.layout.Nodes)

	switch m.state {
	case stateIdle:
		switch {
		case n == 0:
		case key.Matches(msg, m.keys.Next):
			m.selected = (m.selected + 1) % n
		case key.Matches(msg, m.keys.Prev):
			m.selected = (m.selected - 1 + n) % n
		case key.Matches(msg, m.keys.Grab):
			m.startDrag(m.layout.Nodes[m.selected])
		}
		if key.Matches(msg, m.keys.Save) {
			m.saveOverlay()
		}

	case stateDragging:
		stepX, stepY := m.cellSize()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.drag.offset.Y -= stepY
		case key.Matches(msg, m.keys.Down):
			m.drag.offset.Y += stepY
		case key.Matches(msg, m.keys.Left):
			m.drag.offset.X -= stepX
		case key.Matches(msg, m.keys.Right):
			m.drag.offset.X += stepX
		case key.Matches(msg, m.keys.Grab):
			m.endDrag()
		case key.Matches(msg, m.keys.Cancel):
			m.cancelDrag()
		}
	}
	return m, nil
}

func (m *editorModel) updateMouse(msg tea.MouseMsg) {
	p := m.cellToPixel(msg.X-mapLeft, msg.Y-mapTop)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.state == stateIdle:
		w, h := m.cellSize()
		n, ok := m.layout.NodeAt(p, math.Max(w, h))
		if !ok {
			return
		}
		for i := range m.layout.Nodes {
			if m.layout.Nodes[i].ID == n.ID {
				m.selected = i
			}
		}
		m.startDrag(n)
		m.drag.mouse, m.drag.grab = true, p
	case msg.Action == tea.MouseActionMotion && m.state == stateDragging && m.drag.mouse:
		m.drag.offset = m.drag.origin.Add(p.Sub(m.drag.grab))
	case msg.Action == tea.MouseActionRelease && m.state == stateDragging && m.drag.mouse:
		m.drag.offset = m.drag.origin.Add(p.Sub(m.drag.grab))
		m.endDrag()
	}
}

// startDrag enters Dragging(n.ID, n.Offset).
func (m *editorModel) startDrag(n layout.Node) {
	m.state = stateDragging
	m.drag = drag{id: n.ID, origin: n.Offset, offset: n.Offset}
	m.status = ""
}

// endDrag drops the dragged node and returns to Idle. A drop where the drag
// started records nothing.
func (m *editorModel) endDrag() {
	d := m.drag
	m.state, m.drag = stateIdle, drag{}
	if d.offset == d.origin {
		return
	}

	overlay, err := m.runner.Move(m.ctx, m.opts, d.id, d.offset)
	if err != nil {
		m.err = err
		return
	}
	last := m.opts.Overlay
	m.opts.Overlay = overlay
	if err := m.relayout(); err != nil {
		m.opts.Overlay = last
		m.err = err
		return
	}
	m.dirty, m.err = true, nil
	m.status = fmt.Sprintf("moved %s to (%g, %g)", d.id, d.offset.X, d.offset.Y)
}

func (m *editorModel) cancelDrag() {
	m.state, m.drag = stateIdle, drag{}
	m.status = "drag cancelled"
}

func (m *editorModel) saveOverlay() {
	path, err := m.save(m.opts.Overlay)
	if err != nil {
		m.err = err
		return
	}
	m.dirty, m.err = false, nil
	m.status = "saved " + path
}

// =============================================================================
// Geometry
// =============================================================================

func (m editorModel) cellSize() (w, h float64) {
	return m.layout.Width / float64(m.cols), m.layout.Height / float64(m.rows)
}

// cellToPixel returns the canvas point at the center of a grid cell.
func (m editorModel) cellToPixel(col, row int) position.Point {
	w, h := m.cellSize()
	return position.Point{X: (float64(col) + 0.5) * w, Y: (float64(row) + 0.5) * h}
}

// pixelToCell returns the grid cell containing p and whether it is on the
// grid.
func (m editorModel) pixelToCell(p position.Point) (col, row int, ok bool) {
	w, h := m.cellSize()
	col, row = int(math.Floor(p.X/w)), int(math.Floor(p.Y/h))
	return col, row, col >= 0 && col < m.cols && row >= 0 && row < m.rows
}

// final returns where n is drawn, following an active drag.
func (m editorModel) final(n layout.Node) position.Point {
	if m.state == stateDragging && n.ID == m.drag.id {
		return n.Position.Add(m.drag.offset)
	}
	return n.Final
}

// =============================================================================
// View
// =============================================================================

func (m editorModel) View() string {
	grid := make([][]string, m.rows)
	for r := range grid {
		grid[r] = make([]string, m.cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	for _, l := range m.layout.Links {
		start, _ := m.layout.Node(l.Current.StartID)
		end, _ := m.layout.Node(l.Current.EndID)
		m.drawLine(grid, m.final(start), m.final(end))
	}

	// Names first so that no name hides another node's glyph.
	for pass := 0; pass < 2; pass++ {
		for i, n := range m.layout.Nodes {
			col, row, ok := m.pixelToCell(m.final(n))
			if !ok {
				continue
			}
			glyph, style := m.nodeGlyph(i, n)
			if pass == 1 {
				grid[row][col] = style.Render(glyph)
				continue
			}
			for j, r := range []rune(n.Name) {
				c := col + 2 + j
				if c >= m.cols {
					break
				}
				grid[row][c] = style.Render(string(r))
			}
		}
	}

	lines := make([]string, m.rows)
	for r, cells := range grid {
		lines[r] = strings.Join(cells, "")
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.layout.Title))
	b.WriteString("\n")
	b.WriteString(editorBorderStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m editorModel) nodeGlyph(i int, n layout.Node) (string, lipgloss.Style) {
	glyph, style := glyphComponent, editorNodeStyle
	switch {
	case n.Kind == model.KindAnchor:
		glyph = glyphAnchor
	case n.Evolved:
		glyph, style = glyphEvolved, editorEvolvedStyle
	}
	if i == m.selected {
		style = editorSelectedStyle
		if m.state == stateDragging {
			style = editorDragStyle
		}
	}
	return glyph, style
}

// drawLine plots a dotted line between two canvas points, leaving cells
// already drawn alone. Only the part of the segment on the canvas is
// plotted, so off-canvas endpoints cost no more than on-canvas ones.
func (m editorModel) drawLine(grid [][]string, a, b position.Point) {
	a, b, ok := clipSegment(a, b, m.layout.Width, m.layout.Height)
	if !ok {
		return
	}
	w, h := m.cellSize()
	steps := int(math.Max(math.Abs(b.X-a.X)/w, math.Abs(b.Y-a.Y)/h))
	steps = min(steps, m.cols+m.rows)
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		p := position.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
		if col, row, ok := m.pixelToCell(p); ok && grid[row][col] == " " {
			grid[row][col] = editorLinkStyle.Render(glyphLink)
		}
	}
}

// clipSegment clips the segment a-b to the rectangle [0, width] x
// [0, height] (Liang-Barsky). It reports false when nothing is left or an
// endpoint is not finite.
func clipSegment(a, b position.Point, width, height float64) (position.Point, position.Point, bool) {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X},
		{dx, width - a.X},
		{-dy, a.Y},
		{dy, height - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return position.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		position.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func (m editorModel) statusLine() string {
	var parts []string
	if len(m.layout.Nodes) > 0 {
		n := m.layout.Nodes[m.selected]
		parts = append(parts, StyleHighlight.Render(n.Name))
	}
	if m.state == stateDragging {
		parts = append(parts, fmt.Sprintf("%s (%g, %g)", m.state, m.drag.offset.X, m.drag.offset.Y))
	} else {
		parts = append(parts, m.state.String())
	}
	if m.dirty {
		parts = append(parts, StyleWarning.Render("modified"))
	}
	if n := len(m.layout.Orphans); n > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d orphans", n)))
	}
	if m.status != "" {
		parts = append(parts, StyleDim.Render(m.status))
	}
	if m.err != nil {
		parts = append(parts, editorErrorStyle.Render(m.err.Error()))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
