package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/model"
)

// ReadMap decodes a map from r and validates it.
//
// ReadMap returns an error if:
//   - the JSON is malformed
//   - an element or anchor ID is invalid or used twice
//   - a link or method names an ID that is not declared
//
// Missing collections decode as empty, and a missing title or evolution
// takes the compiler's default.
func ReadMap(r io.Reader) (*model.Map, error) {
	m := model.New()
	m.Title = ""
	m.Evolution = [4]model.EvolutionStage{}
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	normalize(m)
	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalMap decodes a map produced by MarshalMap. Unlike ReadMap it
// applies no defaults, so a cached map equals the compiled one field for
// field.
func UnmarshalMap(data []byte) (*model.Map, error) {
	var m model.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode map")
	}
	return &m, nil
}

// ImportMap reads a map from the JSON file at path.
func ImportMap(path string) (*model.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMap(f)
}

// ReadLayout decodes a layout from r.
func ReadLayout(r io.Reader) (layout.Layout, error) {
	var l layout.Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return layout.Layout{}, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}

// UnmarshalLayout decodes a layout produced by MarshalLayout.
func UnmarshalLayout(data []byte) (layout.Layout, error) {
	return ReadLayout(bytes.NewReader(data))
}

// ReadDocument decodes a document from r.
func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}

// ImportDocument reads a document from the JSON file at path.
func ImportDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

func normalize(m *model.Map) {
	if m.Title == "" {
		m.Title = model.DefaultTitle
	}
	if m.Evolution == ([4]model.EvolutionStage{}) {
		m.Evolution = model.DefaultEvolution()
	}
	if m.Presentation.Style == "" {
		m.Presentation.Style = model.StylePlain
	}
	if m.Elements == nil {
		m.Elements = []model.Component{}
	}
	if m.Anchors == nil {
		m.Anchors = []model.Anchor{}
	}
	if m.Links == nil {
		m.Links = []model.Link{}
	}
	if m.Methods == nil {
		m.Methods = []model.Method{}
	}
	if m.Annotations == nil {
		m.Annotations = []model.Annotation{}
	}
}

func validate(m *model.Map) error {
	if _, ok := model.ParseStyle(string(m.Presentation.Style)); !ok {
		return errors.New(errors.ErrCodeInvalidStyle, "unknown style %q", m.Presentation.Style)
	}

	seen := make(map[string]bool, len(m.Elements)+len(m.Anchors))
	declare := func(id string) error {
		if err := errors.ValidateElementID(id); err != nil {
			return err
		}
		if seen[id] {
			return errors.New(errors.ErrCodeReference, "duplicate id %q", id)
		}
		seen[id] = true
		return nil
	}
	for _, c := range m.Elements {
		if err := declare(c.ID); err != nil {
			return err
		}
	}
	for _, a := range m.Anchors {
		if err := declare(a.ID); err != nil {
			return err
		}
	}

	for _, l := range m.Links {
		if !seen[l.StartID] || !seen[l.EndID] {
			return errors.AtLine(errors.ErrCodeReference, l.Line, "link %q->%q has an unknown endpoint", l.StartID, l.EndID)
		}
	}
	for _, mt := range m.Methods {
		if !seen[mt.ElementID] {
			return errors.AtLine(errors.ErrCodeReference, mt.Line, "method %s names unknown element %q", mt.Kind, mt.ElementID)
		}
	}
	return nil
}
