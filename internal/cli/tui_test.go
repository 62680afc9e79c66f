package cli

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/meta"
	"github.com/matzehuels/wardley/pkg/pipeline"
	"github.com/matzehuels/wardley/pkg/position"
)

type savedOverlays struct {
	overlays []string
}

func (s *savedOverlays) save(overlay string) (string, error) {
	s.overlays = append(s.overlays, overlay)
	return "tea.meta.json", nil
}

func newTestEditor(t *testing.T, overlay string) (editorModel, *savedOverlays) {
	t.Helper()
	saved := &savedOverlays{}
	opts := pipeline.Options{Text: teaShop, Overlay: overlay}
	m, err := newEditorModel(context.Background(), pipeline.NewRunner(nil, nil, nil), opts, saved.save)
	if err != nil {
		t.Fatalf("newEditorModel: %v", err)
	}
	return m, saved
}

func press(m editorModel, msgs ...tea.Msg) editorModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(editorModel)
	}
	return m
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySave  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w")}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
)

func selectNode(t *testing.T, m editorModel, id string) editorModel {
	t.Helper()
	for range m.layout.Nodes {
		if m.layout.Nodes[m.selected].ID == id {
			return m
		}
		m = press(m, keyTab)
	}
	t.Fatalf("node %q not found", id)
	return m
}

func TestEditorKeyboardDrag(t *testing.T) {
	m, _ := newTestEditor(t, "")
	m = selectNode(t, m, "kettle")

	m = press(m, keyEnter)
	if m.state != stateDragging || m.drag.id != "kettle" || m.drag.origin != (position.Point{}) {
		t.Fatalf("after grab: state=%s drag=%+v", m.state, m.drag)
	}

	m = press(m, keyRight, keyRight, keyDown)
	w, h := m.cellSize()
	want := position.Point{X: 2 * w, Y: h}
	if m.drag.offset != want {
		t.Errorf("tentative offset = %+v, want %+v", m.drag.offset, want)
	}
	if m.opts.Overlay != "" {
		t.Error("overlay must not change before the drop")
	}

	m = press(m, keyEnter)
	if m.state != stateIdle {
		t.Errorf("state after drop = %s", m.state)
	}
	p, err := meta.Resolve("kettle", m.opts.Overlay, position.Point{})
	if err != nil || p != want {
		t.Errorf("recorded offset = %+v, %v", p, err)
	}
	kettle, _ := m.layout.Node("kettle")
	if !kettle.Moved || kettle.Final != kettle.Position.Add(want) {
		t.Errorf("layout not refreshed: %+v", kettle)
	}
	if !m.dirty {
		t.Error("editor should be dirty after a move")
	}
}

func TestEditorCancelDrag(t *testing.T) {
	overlay := `[{"name":"kettle","x":5,"y":5}]`
	m, _ := newTestEditor(t, overlay)
	m = selectNode(t, m, "kettle")

	m = press(m, keyEnter, keyRight, keyEsc)
	if m.state != stateIdle {
		t.Errorf("state = %s", m.state)
	}
	if m.opts.Overlay != overlay || m.dirty {
		t.Errorf("cancelled drag changed the overlay: %s", m.opts.Overlay)
	}
}

func TestEditorDropInPlaceRecordsNothing(t *testing.T) {
	m, _ := newTestEditor(t, "")
	m = press(m, keyEnter, keyEnter)
	if m.opts.Overlay != "" || m.dirty {
		t.Errorf("overlay = %q, dirty = %v", m.opts.Overlay, m.dirty)
	}
}

func TestEditorMouseDrag(t *testing.T) {
	m, _ := newTestEditor(t, "")
	kettle, _ := m.layout.Node("kettle")
	col, row, ok := m.pixelToCell(kettle.Final)
	if !ok {
		t.Fatal("kettle is off the grid")
	}

	m = press(m, tea.MouseMsg{X: col + mapLeft, Y: row + mapTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.state != stateDragging || m.drag.id != "kettle" || !m.drag.mouse {
		t.Fatalf("press did not grab kettle: state=%s drag=%+v", m.state, m.drag)
	}
	if m.layout.Nodes[m.selected].ID != "kettle" {
		t.Error("press should select the grabbed node")
	}

	m = press(m,
		tea.MouseMsg{X: col + mapLeft + 1, Y: row + mapTop, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: col + mapLeft + 3, Y: row + mapTop + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
	)
	w, h := m.cellSize()
	want := position.Point{X: 3 * w, Y: h}
	p, err := meta.Resolve("kettle", m.opts.Overlay, position.Point{})
	if err != nil || p != want {
		t.Errorf("recorded offset = %+v, want %+v (%v)", p, want, err)
	}
	if m.state != stateIdle {
		t.Errorf("state after release = %s", m.state)
	}
}

func TestEditorPressOnEmptyCell(t *testing.T) {
	m, _ := newTestEditor(t, "")
	m = press(m, tea.MouseMsg{X: mapLeft, Y: mapTop + m.rows - 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.state != stateIdle {
		t.Errorf("press on empty cell started a drag of %q", m.drag.id)
	}
}

func TestEditorFailedMoveKeepsOverlay(t *testing.T) {
	m, _ := newTestEditor(t, "")
	m.opts.Overlay = "not json"
	before := m.layout

	m = press(m, keyEnter, keyRight, keyEnter)
	if !errors.Is(m.err, errors.ErrCodeOverlayFormat) {
		t.Errorf("err = %v", m.err)
	}
	if m.opts.Overlay != "not json" || m.dirty {
		t.Errorf("overlay = %q, dirty = %v", m.opts.Overlay, m.dirty)
	}
	if len(m.layout.Nodes) != len(before.Nodes) {
		t.Error("layout should be kept")
	}
	if !strings.Contains(m.View(), "OVERLAY_FORMAT_ERROR") {
		t.Error("view should show the error")
	}
}

func TestEditorSaveAndQuit(t *testing.T) {
	m, saved := newTestEditor(t, "")
	m = press(m, keyEnter, keyDown, keyEnter, keySave)
	if len(saved.overlays) != 1 || saved.overlays[0] != m.opts.Overlay {
		t.Errorf("saved = %v", saved.overlays)
	}
	if m.dirty {
		t.Error("save should clear the dirty flag")
	}

	_, cmd := m.Update(keyQuit)
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should return tea.Quit")
	}
}

func TestEditorWindowSize(t *testing.T) {
	m, _ := newTestEditor(t, "")
	m = press(m, tea.WindowSizeMsg{Width: 102, Height: 45})
	if m.cols != 100 || m.rows != 40 {
		t.Errorf("grid = %dx%d", m.cols, m.rows)
	}
	m = press(m, tea.WindowSizeMsg{Width: 5, Height: 5})
	if m.cols != minEditorCols || m.rows != minEditorRows {
		t.Errorf("grid = %dx%d, want minimum", m.cols, m.rows)
	}
}

func TestEditorView(t *testing.T) {
	m, _ := newTestEditor(t, `[{"name":"ghost","x":0,"y":0}]`)
	m = press(m, tea.WindowSizeMsg{Width: 202, Height: 45})
	view := m.View()
	for _, want := range []string{"Tea Shop", "Kettle", "Business", glyphAnchor, glyphEvolved, "1 orphans", "idle"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, keyEnter)
	if !strings.Contains(m.View(), "dragging") {
		t.Error("view should show the drag state")
	}
}

func TestEditorViewOffCanvasLink(t *testing.T) {
	opts := pipeline.Options{Text: "component A [0.5, 0.5]\ncomponent B [0.5, 1e13]\nA->B"}
	m, err := newEditorModel(context.Background(), pipeline.NewRunner(nil, nil, nil), opts, (&savedOverlays{}).save)
	if err != nil {
		t.Fatalf("newEditorModel: %v", err)
	}

	done := make(chan string, 1)
	go func() { done <- m.View() }()
	select {
	case view := <-done:
		if !strings.Contains(view, glyphLink) {
			t.Error("the on-canvas part of the link should still be drawn")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("View did not return for a link to an off-canvas element")
	}
}

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name   string
		a, b   position.Point
		ok     bool
		wa, wb position.Point
	}{
		{"inside", position.Point{X: 10, Y: 10}, position.Point{X: 90, Y: 50}, true, position.Point{X: 10, Y: 10}, position.Point{X: 90, Y: 50}},
		{"exits right", position.Point{X: 50, Y: 50}, position.Point{X: 150, Y: 50}, true, position.Point{X: 50, Y: 50}, position.Point{X: 100, Y: 50}},
		{"outside", position.Point{X: -10, Y: -10}, position.Point{X: -5, Y: 200}, false, position.Point{}, position.Point{}},
		{"infinite", position.Point{X: 50, Y: 50}, position.Point{X: math.Inf(1), Y: 50}, false, position.Point{}, position.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.a, tt.b, 100, 100)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (a != tt.wa || b != tt.wb) {
				t.Errorf("clipped = %+v %+v, want %+v %+v", a, b, tt.wa, tt.wb)
			}
		})
	}
}

func TestEditorFinalFollowsDrag(t *testing.T) {
	m, _ := newTestEditor(t, "")
	n := m.layout.Nodes[m.selected]
	m = press(m, keyEnter, keyRight)
	w, _ := m.cellSize()
	if got := m.final(n); got != n.Position.Add(position.Point{X: w}) {
		t.Errorf("final = %+v", got)
	}
	other := layout.Node{ID: "other", Final: position.Point{X: 1, Y: 2}}
	if m.final(other) != other.Final {
		t.Error("nodes that are not dragged stay at Final")
	}
}
