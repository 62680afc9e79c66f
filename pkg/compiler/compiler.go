package compiler

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/position"
)

// Statement keywords.
const (
	kwTitle       = "title"
	kwComponent   = "component"
	kwMarket      = "market"
	kwAnchor      = "anchor"
	kwEvolve      = "evolve"
	kwBuild       = "build"
	kwBuy         = "buy"
	kwOutsource   = "outsource"
	kwAnnotation  = "annotation"
	kwAnnotations = "annotations"
	kwStyle       = "style"
	kwEvolution   = "evolution"
	kwYAxis       = "y-axis"
)

// freeTextKeywords are statements whose text may legitimately contain a
// link arrow.
var freeTextKeywords = map[string]bool{
	kwTitle:      true,
	kwAnnotation: true,
	kwEvolution:  true,
	kwYAxis:      true,
}

// Compiler compiles notation text. The zero value is ready to use and
// logs nothing.
type Compiler struct {
	Logger *log.Logger
}

// New creates a compiler that logs to logger. A nil logger discards output.
func New(logger *log.Logger) *Compiler {
	return &Compiler{Logger: logger}
}

// Compile compiles text with a silent compiler.
func Compile(text string) (*model.Map, error) {
	return (&Compiler{}).Compile(text)
}

// MustCompile is like Compile but panics on error. It is meant for tests
// and fixed examples.
func MustCompile(text string) *model.Map {
	m, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return m
}

// Compile parses text into a new map. On failure it returns nil and an
// *errors.Error identifying the offending line.
func (c *Compiler) Compile(text string) (*model.Map, error) {
	logger := c.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	b := newBuilder()
	lines := splitLines(text)
	for _, ln := range lines {
		if err := b.statement(ln); err != nil {
			logger.Debug("compile failed", "pass", 1, "line", ln.num, "err", err)
			return nil, err
		}
	}
	for _, resolve := range b.deferred {
		if err := resolve(); err != nil {
			logger.Debug("compile failed", "pass", 2, "line", errors.LineOf(err), "err", err)
			return nil, err
		}
	}

	logger.Debug("compiled map",
		"title", b.m.Title,
		"statements", len(lines),
		"elements", len(b.m.Elements),
		"anchors", len(b.m.Anchors),
		"links", len(b.m.Links))
	return b.m, nil
}

// =============================================================================
// builder - pass 1 declarations, pass 2 resolution
// =============================================================================

type builder struct {
	m *model.Map

	// names maps a declared name to its ID; ids maps every ID to the line
	// that declared it.
	names map[string]string
	ids   map[string]int

	// components indexes m.Elements by ID for declared components.
	components map[string]int
	evolved    map[string]int

	// deferred resolves name references in source order once every
	// declaration is known.
	deferred []func() error
}

func newBuilder() *builder {
	return &builder{
		m:          model.New(),
		names:      make(map[string]string),
		ids:        make(map[string]int),
		components: make(map[string]int),
		evolved:    make(map[string]int),
	}
}

func (b *builder) statement(ln line) error {
	if !freeTextKeywords[ln.keyword] && looksLikeLink(ln.text) {
		return b.link(ln)
	}

	switch ln.keyword {
	case kwTitle:
		return b.title(ln)
	case kwComponent:
		return b.component(ln, model.TypeComponent)
	case kwMarket:
		return b.component(ln, model.TypeMarket)
	case kwAnchor:
		return b.anchor(ln)
	case kwEvolve:
		return b.evolve(ln)
	case kwBuild, kwBuy, kwOutsource:
		return b.method(ln)
	case kwAnnotation:
		return b.annotation(ln)
	case kwAnnotations:
		return b.annotations(ln)
	case kwStyle:
		return b.style(ln)
	case kwEvolution:
		return b.evolution(ln)
	case kwYAxis:
		return b.yAxis(ln)
	}
	return errors.AtLine(errors.ErrCodeLexical, ln.num, "unknown statement %q", ln.keyword)
}

// declare registers a new identifier for name.
func (b *builder) declare(name string, ln int) (string, error) {
	id := model.IDFor(name)
	if id == "" {
		return "", errors.AtLine(errors.ErrCodeLexical, ln, "name %q must contain a letter or digit", name)
	}
	if prev, ok := b.ids[id]; ok {
		return "", errors.AtLine(errors.ErrCodeReference, ln, "%q is already declared on line %d", name, prev)
	}
	b.ids[id] = ln
	b.names[name] = id
	return id, nil
}

// resolve returns the ID declared for name.
func (b *builder) resolve(name string, ln int) (string, error) {
	if id, ok := b.names[name]; ok {
		return id, nil
	}
	return "", errors.AtLine(errors.ErrCodeReference, ln, "unknown element %q", name)
}

// component handles both component and market statements.
func (b *builder) component(ln line, kind string) error {
	before, inner, after, err := bracket(ln.rest, ln.num)
	if err != nil {
		return err
	}
	n, err := name(before, ln.num)
	if err != nil {
		return err
	}
	vis, mat, err := coordinates(inner, ln.num)
	if err != nil {
		return err
	}

	c := model.Component{
		Name:       n,
		Maturity:   mat,
		Visibility: vis,
		Type:       kind,
		Label:      model.DefaultLabelOffset,
		Line:       ln.num,
	}
	mods, err := modifiers(after, ln.num)
	if err != nil {
		return err
	}
	if mods.label != nil {
		c.Label = *mods.label
	}
	if mods.market {
		c.Type = model.TypeMarket
	}

	if c.ID, err = b.declare(n, ln.num); err != nil {
		return err
	}
	b.components[c.ID] = len(b.m.Elements)
	b.m.Elements = append(b.m.Elements, c)

	for _, m := range mods.methods {
		b.m.Methods = append(b.m.Methods, model.Method{ElementID: c.ID, Name: n, Kind: m, Line: ln.num})
	}
	return nil
}

func (b *builder) anchor(ln line) error {
	before, inner, after, err := bracket(ln.rest, ln.num)
	if err != nil {
		return err
	}
	if after != "" {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "unexpected %q after anchor", after)
	}
	n, err := name(before, ln.num)
	if err != nil {
		return err
	}
	vis, mat, err := coordinates(inner, ln.num)
	if err != nil {
		return err
	}
	id, err := b.declare(n, ln.num)
	if err != nil {
		return err
	}
	b.m.Anchors = append(b.m.Anchors, model.Anchor{
		ID:         id,
		Name:       n,
		Maturity:   mat,
		Visibility: vis,
		Line:       ln.num,
	})
	return nil
}

// evolve declares the evolved counterpart now, so its ID is reserved, and
// fills in the source-dependent fields in pass 2.
func (b *builder) evolve(ln line) error {
	rest := ln.rest
	var label *position.Point
	if i := strings.LastIndex(rest, "label"); i > 0 && strings.HasSuffix(rest, "]") &&
		strings.HasPrefix(strings.TrimSpace(rest[i+len("label"):]), "[") {
		_, inner, _, err := bracket(rest[i:], ln.num)
		if err != nil {
			return err
		}
		p, err := offset(inner, ln.num)
		if err != nil {
			return err
		}
		label = &p
		rest = strings.TrimSpace(rest[:i])
	}

	sep := strings.LastIndexAny(rest, " \t")
	if sep < 0 {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "expected evolve <name> <maturity>")
	}
	n, err := name(rest[:sep], ln.num)
	if err != nil {
		return err
	}
	mat, err := number(rest[sep+1:], "maturity", ln.num)
	if err != nil {
		return err
	}

	// The counterpart shares its source's name, so only its ID is reserved.
	id := model.IDFor(n) + model.EvolvedSuffix
	if prev, ok := b.ids[id]; ok {
		return errors.AtLine(errors.ErrCodeReference, ln.num, "%q is already declared on line %d", id, prev)
	}
	b.ids[id] = ln.num

	b.deferred = append(b.deferred, func() error {
		srcID, err := b.resolve(n, ln.num)
		if err != nil {
			return err
		}
		idx, ok := b.components[srcID]
		if !ok {
			return errors.AtLine(errors.ErrCodeReference, ln.num, "%q is not a component and cannot evolve", n)
		}
		if prev, ok := b.evolved[srcID]; ok {
			return errors.AtLine(errors.ErrCodeReference, ln.num, "%q already evolves on line %d", n, prev)
		}
		b.evolved[srcID] = ln.num

		src := &b.m.Elements[idx]
		src.Evolving = true
		ev := model.Component{
			ID:         id,
			Name:       src.Name,
			Maturity:   mat,
			Visibility: src.Visibility,
			Evolved:    true,
			Type:       src.Type,
			Label:      src.Label,
			Line:       ln.num,
		}
		if label != nil {
			ev.Label = *label
		}
		b.m.Elements = append(b.m.Elements, ev)
		return nil
	})
	return nil
}

func (b *builder) link(ln line) error {
	text := ln.text
	var context string
	if i := strings.LastIndexByte(text, ';'); i >= 0 {
		text, context = strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
	}

	l := model.Link{Context: context, Line: ln.num}
	var start, end string
	switch {
	case valueFlowRe.MatchString(text):
		parts := valueFlowRe.FindStringSubmatch(text)
		start, end = parts[1], parts[4]
		l.FlowValue = parts[2]
		setFlow(&l, parts[3])
	case flowRe.MatchString(text):
		parts := flowRe.FindStringSubmatch(text)
		start, end = parts[1], parts[3]
		setFlow(&l, parts[2])
	case plainLinkRe.MatchString(text):
		parts := plainLinkRe.FindStringSubmatch(text)
		start, end = parts[1], parts[2]
	default:
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "malformed link %q", ln.text)
	}

	var err error
	if l.Start, err = name(start, ln.num); err != nil {
		return err
	}
	if l.End, err = name(end, ln.num); err != nil {
		return err
	}

	idx := len(b.m.Links)
	b.m.Links = append(b.m.Links, l)
	b.deferred = append(b.deferred, func() error {
		link := &b.m.Links[idx]
		var err error
		if link.StartID, err = b.resolve(link.Start, ln.num); err != nil {
			return err
		}
		link.EndID, err = b.resolve(link.End, ln.num)
		return err
	})
	return nil
}

func setFlow(l *model.Link, arrow string) {
	l.Flow = true
	switch arrow {
	case "<>":
		l.Past, l.Future = true, true
	case "<":
		l.Past = true
	case ">":
		l.Future = true
	}
}

func (b *builder) method(ln line) error {
	n, err := name(ln.rest, ln.num)
	if err != nil {
		return err
	}
	idx := len(b.m.Methods)
	b.m.Methods = append(b.m.Methods, model.Method{Name: n, Kind: ln.keyword, Line: ln.num})
	b.deferred = append(b.deferred, func() error {
		id, err := b.resolve(n, ln.num)
		if err != nil {
			return err
		}
		if _, ok := b.components[id]; !ok {
			return errors.AtLine(errors.ErrCodeReference, ln.num, "%q is not a component", n)
		}
		b.m.Methods[idx].ElementID = id
		return nil
	})
	return nil
}

func (b *builder) annotation(ln line) error {
	numText, rest, _ := strings.Cut(ln.rest, " ")
	numText = strings.TrimSpace(numText)
	if numText == "" {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "expected annotation <number> [visibility, maturity] <text>")
	}
	num, err := strconv.Atoi(numText)
	if err != nil {
		return errors.AtLine(errors.ErrCodeNumeric, ln.num, "invalid annotation number %q", numText)
	}
	before, inner, text, err := bracket(rest, ln.num)
	if err != nil {
		return err
	}
	if before != "" {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "unexpected %q before annotation coordinates", before)
	}

	a := model.Annotation{Number: num, Text: text, Line: ln.num}
	var refs map[int]string

	if strings.HasPrefix(strings.TrimSpace(inner), "[") {
		for i, part := range splitTopLevel(inner) {
			if strings.HasPrefix(part, "[") {
				_, pin, after, err := bracket(part, ln.num)
				if err != nil {
					return err
				}
				if after != "" {
					return errors.AtLine(errors.ErrCodeLexical, ln.num, "unexpected %q in annotation coordinates", after)
				}
				vis, mat, err := coordinates(pin, ln.num)
				if err != nil {
					return err
				}
				a.Occurrences = append(a.Occurrences, model.Occurrence{Maturity: mat, Visibility: vis})
				continue
			}
			n, err := name(part, ln.num)
			if err != nil {
				return err
			}
			if refs == nil {
				refs = make(map[int]string)
			}
			refs[i] = n
			a.Occurrences = append(a.Occurrences, model.Occurrence{})
		}
	} else {
		vis, mat, err := coordinates(inner, ln.num)
		if err != nil {
			return err
		}
		a.Occurrences = []model.Occurrence{{Maturity: mat, Visibility: vis}}
	}

	idx := len(b.m.Annotations)
	b.m.Annotations = append(b.m.Annotations, a)
	if len(refs) > 0 {
		b.deferred = append(b.deferred, func() error {
			occ := b.m.Annotations[idx].Occurrences
			for i := range occ {
				n, ok := refs[i]
				if !ok {
					continue
				}
				id, err := b.resolve(n, ln.num)
				if err != nil {
					return err
				}
				node, _ := b.m.Lookup(id)
				occ[i] = model.Occurrence{Maturity: node.Maturity, Visibility: node.Visibility, ElementID: id}
			}
			return nil
		})
	}
	return nil
}

func (b *builder) annotations(ln line) error {
	before, inner, after, err := bracket(ln.rest, ln.num)
	if err != nil {
		return err
	}
	if before != "" || after != "" {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "expected annotations [visibility, maturity]")
	}
	vis, mat, err := coordinates(inner, ln.num)
	if err != nil {
		return err
	}
	b.m.Presentation.Annotations = model.Occurrence{Maturity: mat, Visibility: vis}
	return nil
}

func (b *builder) title(ln line) error {
	if ln.rest == "" {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "title requires text")
	}
	b.m.Title = ln.rest
	return nil
}

func (b *builder) style(ln line) error {
	s, ok := model.ParseStyle(ln.rest)
	if !ok {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "unknown style %q (must be plain, colour, wardley or handwritten)", ln.rest)
	}
	b.m.Presentation.Style = s
	return nil
}

func (b *builder) evolution(ln line) error {
	stages := strings.Split(ln.rest, "->")
	if len(stages) != len(b.m.Evolution) {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "evolution needs %d stages separated by ->, got %d", len(b.m.Evolution), len(stages))
	}
	for i, s := range stages {
		l1, l2, _ := strings.Cut(s, "+")
		b.m.Evolution[i] = model.EvolutionStage{Line1: strings.TrimSpace(l1), Line2: strings.TrimSpace(l2)}
	}
	return nil
}

func (b *builder) yAxis(ln line) error {
	parts := strings.Split(ln.rest, "->")
	if len(parts) != 3 {
		return errors.AtLine(errors.ErrCodeLexical, ln.num, "expected y-axis <label>-><min>-><max>")
	}
	b.m.Presentation.YAxis = model.YAxis{
		Label: strings.TrimSpace(parts[0]),
		Min:   strings.TrimSpace(parts[1]),
		Max:   strings.TrimSpace(parts[2]),
	}
	return nil
}

// =============================================================================
// Component modifiers
// =============================================================================

type componentModifiers struct {
	label   *position.Point
	market  bool
	methods []string
}

// modifiers parses the text after a component's coordinates: an optional
// label [x, y] and any number of (build), (buy), (outsource) or (market)
// decorators.
func modifiers(s string, ln int) (componentModifiers, error) {
	var mods componentModifiers
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		switch {
		case strings.HasPrefix(s, "label"):
			if mods.label != nil {
				return mods, errors.AtLine(errors.ErrCodeLexical, ln, "label given twice")
			}
			before, inner, after, err := bracket(s[len("label"):], ln)
			if err != nil {
				return mods, err
			}
			if before != "" {
				return mods, errors.AtLine(errors.ErrCodeLexical, ln, "expected label [x, y]")
			}
			p, err := offset(inner, ln)
			if err != nil {
				return mods, err
			}
			mods.label = &p
			s = after
		case strings.HasPrefix(s, "("):
			end := strings.IndexByte(s, ')')
			if end < 0 {
				return mods, errors.AtLine(errors.ErrCodeLexical, ln, "unterminated decorator %q", s)
			}
			switch d := strings.TrimSpace(s[1:end]); d {
			case model.MethodBuild, model.MethodBuy, model.MethodOutsource:
				mods.methods = append(mods.methods, d)
			case model.TypeMarket:
				mods.market = true
			default:
				return mods, errors.AtLine(errors.ErrCodeLexical, ln, "unknown decorator %q", d)
			}
			s = s[end+1:]
		default:
			return mods, errors.AtLine(errors.ErrCodeLexical, ln, "unexpected %q after coordinates", s)
		}
	}
	return mods, nil
}
