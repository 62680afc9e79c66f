// Package layout combines a compiled map, a canvas and the meta overlay into
// the pixel coordinates a renderer draws.
//
// Every node is placed from its semantic coordinates and then shifted by
// its overlay offset. Links are laid out twice when an endpoint evolves:
// once between the current nodes and once between their evolved
// counterparts. Overlay records that match nothing in the map are reported
// as orphans and otherwise ignored.
package layout

import (
	"math"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/meta"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/position"
)

// DefaultFlowLabelOffset is the value label position on a flow link when the
// overlay has no record for it.
var DefaultFlowLabelOffset = position.Point{X: 0, Y: -30}

// Layout is the computed drawing of a map.
type Layout struct {
	Title         string                  `json:"title"`
	Width         float64                 `json:"width"`
	Height        float64                 `json:"height"`
	Nodes         []Node                  `json:"nodes"`
	Links         []Link                  `json:"links"`
	Annotations   []Annotation            `json:"annotations"`
	AnnotationBox position.Point          `json:"annotation_box"`
	Presentation  model.Presentation      `json:"presentation"`
	Evolution     [4]model.EvolutionStage `json:"evolution"`
	Orphans       []string                `json:"orphans,omitempty"`
}

// Node is a placed component or anchor.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Type     string `json:"type,omitempty"`
	Method   string `json:"method,omitempty"`
	Evolved  bool   `json:"evolved,omitempty"`
	Evolving bool   `json:"evolving,omitempty"`

	// Position is where the semantic coordinates put the node, Offset the
	// manual drag offset and Final their sum.
	Position position.Point `json:"position"`
	Offset   position.Point `json:"offset"`
	Final    position.Point `json:"final"`
	Moved    bool           `json:"moved,omitempty"`

	// Label is the text label position relative to Final.
	Label      position.Point `json:"label"`
	LabelMoved bool           `json:"label_moved,omitempty"`
}

// Link is a laid out link. Evolved is set when either endpoint has an
// evolved counterpart.
type Link struct {
	Line      int      `json:"line"`
	Context   string   `json:"context,omitempty"`
	FlowValue string   `json:"flow_value,omitempty"`
	Current   Segment  `json:"current"`
	Evolved   *Segment `json:"evolved,omitempty"`
}

// Segment is one drawn line between two placed nodes.
type Segment struct {
	StartID string         `json:"start_id"`
	EndID   string         `json:"end_id"`
	Start   position.Point `json:"start"`
	End     position.Point `json:"end"`
	Flow    bool           `json:"flow,omitempty"`

	// FlowLabel is the value label position, set for flows with a value.
	FlowLabel *position.Point `json:"flow_label,omitempty"`
}

// Annotation is a placed annotation.
type Annotation struct {
	Number int              `json:"number"`
	Text   string           `json:"text"`
	Points []position.Point `json:"points"`
}

// Compute lays out m on canvas, applying the offsets recorded in
// overlayText. A malformed overlay fails with OVERLAY_FORMAT_ERROR.
func Compute(m *model.Map, canvas position.Canvas, overlayText string) (Layout, error) {
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		return Layout{}, err
	}
	overlay, err := meta.Parse(overlayText)
	if err != nil {
		return Layout{}, err
	}

	known := make(map[string]bool)
	l := Layout{
		Title:         m.Title,
		Width:         canvas.Width,
		Height:        canvas.Height,
		Nodes:         make([]Node, 0, len(m.Elements)+len(m.Anchors)),
		Links:         make([]Link, 0, len(m.Links)),
		Annotations:   make([]Annotation, 0, len(m.Annotations)),
		AnnotationBox: canvas.Place(m.Presentation.Annotations.Maturity, m.Presentation.Annotations.Visibility),
		Presentation:  m.Presentation,
		Evolution:     m.Evolution,
	}

	methods := make(map[string]string, len(m.Methods))
	for _, mt := range m.Methods {
		methods[mt.ElementID] = mt.Kind
	}

	byID := make(map[string]*Node)
	place := func(n model.Node, typ string, label position.Point) {
		node := Node{
			ID:       n.ID,
			Name:     n.Name,
			Kind:     n.Kind,
			Type:     typ,
			Method:   methods[n.ID],
			Evolved:  n.Evolved,
			Evolving: n.Evolving,
			Position: canvas.Place(n.Maturity, n.Visibility),
			Label:    label,
		}
		if off, ok := overlay.Lookup(n.ID); ok {
			node.Offset, node.Moved = off, true
		}
		node.Final = node.Position.Add(node.Offset)
		if p, ok := overlay.Lookup(meta.LabelKey(n.ID)); ok {
			node.Label, node.LabelMoved = p, true
		}
		known[n.ID] = true
		known[meta.LabelKey(n.ID)] = true
		l.Nodes = append(l.Nodes, node)
	}
	for _, c := range m.Elements {
		place(c.Node(), c.Type, c.Label)
	}
	for _, a := range m.Anchors {
		place(a.Node(), "", position.Point{})
	}
	for i := range l.Nodes {
		byID[l.Nodes[i].ID] = &l.Nodes[i]
	}

	segment := func(ml model.Link, start, end model.Node) Segment {
		s := Segment{
			StartID: start.ID,
			EndID:   end.ID,
			Start:   byID[start.ID].Final,
			End:     byID[end.ID].Final,
			Flow:    model.IsFlow(ml, start, end),
		}
		if s.Flow && ml.FlowValue != "" {
			key := meta.FlowLabelKey(start.ID, end.ID)
			known[key] = true
			p := DefaultFlowLabelOffset
			if off, ok := overlay.Lookup(key); ok {
				p = off
			}
			s.FlowLabel = &p
		}
		return s
	}

	for _, ml := range m.Links {
		start, end, ok := m.Endpoints(ml)
		if !ok {
			return Layout{}, errors.AtLine(errors.ErrCodeReference, ml.Line, "link %s->%s is not resolved", ml.Start, ml.End)
		}
		link := Link{
			Line:      ml.Line,
			Context:   ml.Context,
			FlowValue: ml.FlowValue,
			Current:   segment(ml, start, end),
		}
		evStart, startEvolves := evolvedNode(m, start)
		evEnd, endEvolves := evolvedNode(m, end)
		if startEvolves || endEvolves {
			s := segment(ml, evStart, evEnd)
			link.Evolved = &s
		}
		l.Links = append(l.Links, link)
	}

	for _, a := range m.Annotations {
		pa := Annotation{Number: a.Number, Text: a.Text, Points: make([]position.Point, len(a.Occurrences))}
		for i, o := range a.Occurrences {
			pa.Points[i] = canvas.Place(o.Maturity, o.Visibility)
		}
		l.Annotations = append(l.Annotations, pa)
	}

	for _, id := range overlay.IDs() {
		if !known[id] {
			l.Orphans = append(l.Orphans, id)
		}
	}
	return l, nil
}

// evolvedNode returns the evolved counterpart of n, or n itself.
func evolvedNode(m *model.Map, n model.Node) (model.Node, bool) {
	if n.Kind != model.KindComponent || n.Evolved {
		return n, false
	}
	if ev, ok := m.EvolvedOf(n.ID); ok {
		return ev.Node(), true
	}
	return n, false
}

// Node returns the placed node with the given ID.
func (l Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeAt returns the node whose final position is closest to p and no
// further away than radius.
func (l Layout) NodeAt(p position.Point, radius float64) (Node, bool) {
	best, bestDist := -1, radius
	for i, n := range l.Nodes {
		if d := math.Hypot(n.Final.X-p.X, n.Final.Y-p.Y); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Node{}, false
	}
	return l.Nodes[best], true
}
