// Package meta manages the meta overlay: manual pixel offsets recorded
// when a user drags an element, kept apart from the map notation.
//
// # Format
//
// Overlay text is a JSON array of records keyed by element identifier:
//
//	[{"name": "kettle", "x": 12, "y": -4}, {"name": "flow_text_a_b", "x": "0", "y": "-30"}]
//
// Coordinates may be numbers or numeric strings; both parse to float64.
// Empty (or whitespace-only) text and the literal null mean "no records".
//
// # Semantics
//
// Records are keyed by identifier, not position, so they survive reordering
// of the map text. Renaming an element orphans its record: [Resolve] simply
// stops finding it. Nothing in this package removes records implicitly;
// [Prune] does so only when asked.
//
// [ApplyMove] rewrites exactly one record and copies every other record
// byte for byte, in its original order.
package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/position"
)

// Key prefixes for overlay records that belong to labels rather than nodes.
const (
	LabelKeyPrefix     = "element_text_"
	FlowLabelKeyPrefix = "flow_text_"
)

// LabelKey returns the overlay key of an element's text label.
func LabelKey(id string) string { return LabelKeyPrefix + id }

// FlowLabelKey returns the overlay key of the value label on the flow
// between start and end.
func FlowLabelKey(startID, endID string) string {
	return FlowLabelKeyPrefix + startID + "_" + endID
}

// Record is one decoded overlay entry.
type Record struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Point returns the record's offset.
func (r Record) Point() position.Point {
	return position.Point{X: r.X, Y: r.Y}
}

// Overlay is a parsed overlay. The zero value is an empty overlay.
type Overlay struct {
	records []Record
	raw     []json.RawMessage
}

// rawRecord keeps the coordinates undecoded so numbers and strings can both
// be accepted.
type rawRecord struct {
	Name *string         `json:"name"`
	X    json.RawMessage `json:"x"`
	Y    json.RawMessage `json:"y"`
}

// Parse decodes overlay text. It fails with an OVERLAY_FORMAT_ERROR when the
// text is not an array of {name, x, y} records with numeric coordinates.
func Parse(text string) (Overlay, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Overlay{}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raws); err != nil {
		return Overlay{}, errors.Wrap(errors.ErrCodeOverlayFormat, err, "overlay is not a JSON array")
	}

	o := Overlay{
		records: make([]Record, 0, len(raws)),
		raw:     raws,
	}
	for i, raw := range raws {
		rec, err := decodeRecord(raw)
		if err != nil {
			return Overlay{}, errors.Wrap(errors.ErrCodeOverlayFormat, err, "record %d", i)
		}
		o.records = append(o.records, rec)
	}
	return o, nil
}

func decodeRecord(raw json.RawMessage) (Record, error) {
	var rr rawRecord
	if err := json.Unmarshal(raw, &rr); err != nil {
		return Record{}, err
	}
	if rr.Name == nil {
		return Record{}, fmt.Errorf("missing name")
	}
	x, err := decodeCoordinate(rr.X)
	if err != nil {
		return Record{}, fmt.Errorf("x: %w", err)
	}
	y, err := decodeCoordinate(rr.Y)
	if err != nil {
		return Record{}, fmt.Errorf("y: %w", err)
	}
	return Record{Name: *rr.Name, X: x, Y: y}, nil
}

func decodeCoordinate(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("non-finite value %q", s)
		}
		return f, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// Len returns the number of records.
func (o Overlay) Len() int { return len(o.records) }

// Records returns a copy of the decoded records in order.
func (o Overlay) Records() []Record {
	out := make([]Record, len(o.records))
	copy(out, o.records)
	return out
}

// Lookup returns the offset of the first record named id.
func (o Overlay) Lookup(id string) (position.Point, bool) {
	if i := o.index(id); i >= 0 {
		return o.records[i].Point(), true
	}
	return position.Point{}, false
}

// IDs returns the distinct record names in first-seen order.
func (o Overlay) IDs() []string {
	seen := make(map[string]bool, len(o.records))
	ids := make([]string, 0, len(o.records))
	for _, r := range o.records {
		if !seen[r.Name] {
			seen[r.Name] = true
			ids = append(ids, r.Name)
		}
	}
	return ids
}

func (o Overlay) index(id string) int {
	for i, r := range o.records {
		if r.Name == id {
			return i
		}
	}
	return -1
}

// String serializes the overlay, reusing the original bytes of every record.
func (o Overlay) String() string {
	parts := make([]string, len(o.raw))
	for i, raw := range o.raw {
		parts[i] = string(raw)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// With returns a copy of o where the first record named id carries p, or
// with a new record appended when there was none.
func (o Overlay) With(id string, p position.Point) (Overlay, error) {
	raw, err := encodeRecord(Record{Name: id, X: p.X, Y: p.Y})
	if err != nil {
		return Overlay{}, err
	}

	out := Overlay{
		records: make([]Record, len(o.records), len(o.records)+1),
		raw:     make([]json.RawMessage, len(o.raw), len(o.raw)+1),
	}
	copy(out.records, o.records)
	copy(out.raw, o.raw)

	rec := Record{Name: id, X: p.X, Y: p.Y}
	if i := o.index(id); i >= 0 {
		out.records[i] = rec
		out.raw[i] = raw
	} else {
		out.records = append(out.records, rec)
		out.raw = append(out.raw, raw)
	}
	return out, nil
}

// Without returns a copy of o keeping only the records for which keep
// reports true, together with the names that were dropped.
func (o Overlay) Without(keep func(id string) bool) (Overlay, []string) {
	out := Overlay{}
	var dropped []string
	for i, r := range o.records {
		if keep(r.Name) {
			out.records = append(out.records, r)
			out.raw = append(out.raw, o.raw[i])
			continue
		}
		dropped = append(dropped, r.Name)
	}
	return out, dropped
}

func encodeRecord(r Record) (json.RawMessage, error) {
	if err := errors.ValidateCoordinate("x", r.X); err != nil {
		return nil, err
	}
	if err := errors.ValidateCoordinate("y", r.Y); err != nil {
		return nil, err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode record %q", r.Name)
	}
	return data, nil
}

// Resolve returns the recorded offset for id, or def when overlayText has
// no record for it. Malformed overlay text is reported, never guessed at.
func Resolve(id, overlayText string, def position.Point) (position.Point, error) {
	o, err := Parse(overlayText)
	if err != nil {
		return position.Point{}, err
	}
	if p, ok := o.Lookup(id); ok {
		return p, nil
	}
	return def, nil
}

// ApplyMove records p as the offset of id and returns the new overlay text.
// The record for id is replaced in place or appended; all other records are
// preserved verbatim and in order.
func ApplyMove(id, overlayText string, p position.Point) (string, error) {
	o, err := Parse(overlayText)
	if err != nil {
		return "", err
	}
	updated, err := o.With(id, p)
	if err != nil {
		return "", err
	}
	return updated.String(), nil
}

// Prune drops every record whose name keep rejects and returns the new
// overlay text with the dropped names.
func Prune(overlayText string, keep func(id string) bool) (string, []string, error) {
	o, err := Parse(overlayText)
	if err != nil {
		return "", nil, err
	}
	pruned, dropped := o.Without(keep)
	return pruned.String(), dropped, nil
}
