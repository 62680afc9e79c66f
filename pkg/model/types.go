package model

import (
	"strings"
	"unicode"

	"github.com/matzehuels/wardley/pkg/position"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultTitle is used when the notation has no title statement.
const DefaultTitle = "Untitled Map"

// EvolvedSuffix is appended to a component ID to form the ID of its evolved
// counterpart.
const EvolvedSuffix = "_evolved"

// Component types.
const (
	TypeComponent = "component"
	TypeMarket    = "market"
)

// Method kinds.
const (
	MethodBuild     = "build"
	MethodBuy       = "buy"
	MethodOutsource = "outsource"
)

// DefaultLabelOffset is the label position relative to a component when the
// notation gives none.
var DefaultLabelOffset = position.Point{X: 5, Y: -10}

// =============================================================================
// Style
// =============================================================================

// Style is the presentation style of a map.
type Style string

// Supported styles.
const (
	StylePlain       Style = "plain"
	StyleColour      Style = "colour"
	StyleWardley     Style = "wardley"
	StyleHandwritten Style = "handwritten"
)

// ParseStyle maps a style name to a Style. "color" is accepted as an alias
// of "colour".
func ParseStyle(s string) (Style, bool) {
	switch s {
	case "plain":
		return StylePlain, true
	case "colour", "color":
		return StyleColour, true
	case "wardley":
		return StyleWardley, true
	case "handwritten":
		return StyleHandwritten, true
	}
	return "", false
}

// =============================================================================
// Map
// =============================================================================

// Map is the structured result of compiling notation text.
type Map struct {
	Title        string            `json:"title"`
	Elements     []Component       `json:"elements"`
	Anchors      []Anchor          `json:"anchors"`
	Links        []Link            `json:"links"`
	Methods      []Method          `json:"methods"`
	Annotations  []Annotation      `json:"annotations"`
	Evolution    [4]EvolutionStage `json:"evolution"`
	Presentation Presentation      `json:"presentation"`
}

// New returns an empty map carrying every default.
func New() *Map {
	return &Map{
		Title:        DefaultTitle,
		Elements:     []Component{},
		Anchors:      []Anchor{},
		Links:        []Link{},
		Methods:      []Method{},
		Annotations:  []Annotation{},
		Evolution:    DefaultEvolution(),
		Presentation: DefaultPresentation(),
	}
}

// Component is a node of the value chain.
type Component struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Maturity   float64        `json:"maturity"`
	Visibility float64        `json:"visibility"`
	Evolved    bool           `json:"evolved,omitempty"`
	Evolving   bool           `json:"evolving,omitempty"`
	Type       string         `json:"type"`
	Label      position.Point `json:"label"`
	Line       int            `json:"line"`
}

// Anchor is a user or need at the top of the value chain.
type Anchor struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Maturity   float64 `json:"maturity"`
	Visibility float64 `json:"visibility"`
	Line       int     `json:"line"`
}

// Link connects two nodes. Start and End hold the names as written; StartID
// and EndID the resolved identifiers. Context is the free text after a
// trailing semicolon.
type Link struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	StartID   string `json:"start_id"`
	EndID     string `json:"end_id"`
	Flow      bool   `json:"flow,omitempty"`
	Past      bool   `json:"past,omitempty"`
	Future    bool   `json:"future,omitempty"`
	FlowValue string `json:"flow_value,omitempty"`
	Context   string `json:"context,omitempty"`
	Line      int    `json:"line"`
}

// Method records how a component is sourced.
type Method struct {
	ElementID string `json:"element_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Line      int    `json:"line"`
}

// Annotation is a numbered note placed at one or more points.
type Annotation struct {
	Number      int          `json:"number"`
	Text        string       `json:"text"`
	Occurrences []Occurrence `json:"occurrences"`
	Line        int          `json:"line"`
}

// Occurrence is one placement of an annotation. ElementID is set when the
// occurrence was anchored to a named element; its coordinates are then
// copied from that element.
type Occurrence struct {
	Maturity   float64 `json:"maturity"`
	Visibility float64 `json:"visibility"`
	ElementID  string  `json:"element_id,omitempty"`
}

// EvolutionStage holds the two header lines of one evolution column.
type EvolutionStage struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// DefaultEvolution returns the standard Genesis to Commodity labels.
func DefaultEvolution() [4]EvolutionStage {
	return [4]EvolutionStage{
		{Line1: "Genesis"},
		{Line1: "Custom Built"},
		{Line1: "Product", Line2: "(+rental)"},
		{Line1: "Commodity", Line2: "(+utility)"},
	}
}

// YAxis holds the labels of the value chain axis.
type YAxis struct {
	Label string `json:"label"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}

// Presentation holds the settings that only affect how the map is drawn.
type Presentation struct {
	Style Style `json:"style"`
	YAxis YAxis `json:"y_axis"`
	// Annotations is the (visibility, maturity) placement of the annotation
	// legend box.
	Annotations Occurrence `json:"annotations"`
}

// DefaultPresentation returns the plain style with the standard axis labels.
func DefaultPresentation() Presentation {
	return Presentation{
		Style: StylePlain,
		YAxis: YAxis{Label: "Value Chain", Min: "Invisible", Max: "Visible"},
	}
}

// =============================================================================
// Node - read-only view of a component or anchor
// =============================================================================

// Node kinds.
const (
	KindComponent = "component"
	KindAnchor    = "anchor"
)

// Node is the common view of components and anchors used for link
// endpoints and positioning. Anchors never evolve.
type Node struct {
	ID         string
	Name       string
	Kind       string
	Maturity   float64
	Visibility float64
	Evolved    bool
	Evolving   bool
}

// Node returns the read-only view of c.
func (c Component) Node() Node {
	return Node{
		ID:         c.ID,
		Name:       c.Name,
		Kind:       KindComponent,
		Maturity:   c.Maturity,
		Visibility: c.Visibility,
		Evolved:    c.Evolved,
		Evolving:   c.Evolving,
	}
}

// Node returns the read-only view of a.
func (a Anchor) Node() Node {
	return Node{
		ID:         a.ID,
		Name:       a.Name,
		Kind:       KindAnchor,
		Maturity:   a.Maturity,
		Visibility: a.Visibility,
	}
}

// Lookup returns the component or anchor with the given ID.
func (m *Map) Lookup(id string) (Node, bool) {
	for _, c := range m.Elements {
		if c.ID == id {
			return c.Node(), true
		}
	}
	for _, a := range m.Anchors {
		if a.ID == id {
			return a.Node(), true
		}
	}
	return Node{}, false
}

// ByName returns the declared component or anchor with the given display
// name. Evolved counterparts share their source's name and are never
// returned.
func (m *Map) ByName(name string) (Node, bool) {
	return m.Lookup(IDFor(name))
}

// Nodes returns every component followed by every anchor.
func (m *Map) Nodes() []Node {
	out := make([]Node, 0, len(m.Elements)+len(m.Anchors))
	for _, c := range m.Elements {
		out = append(out, c.Node())
	}
	for _, a := range m.Anchors {
		out = append(out, a.Node())
	}
	return out
}

// EvolvedOf returns the evolved counterpart of the component with the given
// ID, if there is one.
func (m *Map) EvolvedOf(id string) (Component, bool) {
	want := id + EvolvedSuffix
	for _, c := range m.Elements {
		if c.Evolved && c.ID == want {
			return c, true
		}
	}
	return Component{}, false
}

// Endpoints returns the resolved start and end nodes of l.
func (m *Map) Endpoints(l Link) (start, end Node, ok bool) {
	start, ok1 := m.Lookup(l.StartID)
	end, ok2 := m.Lookup(l.EndID)
	return start, end, ok1 && ok2
}

// IDs returns the set of all component and anchor IDs.
func (m *Map) IDs() map[string]bool {
	ids := make(map[string]bool, len(m.Elements)+len(m.Anchors))
	for _, c := range m.Elements {
		ids[c.ID] = true
	}
	for _, a := range m.Anchors {
		ids[a.ID] = true
	}
	return ids
}

// =============================================================================
// Identifiers
// =============================================================================

// IDFor derives the identifier of a named element.
func IDFor(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
