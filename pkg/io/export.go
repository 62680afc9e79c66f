package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/model"
)

// Document is a saved map: notation text and overlay text.
type Document struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
	Meta string `json:"meta"`
}

// WriteMap writes m as indented JSON.
func WriteMap(m *model.Map, w io.Writer) error {
	return writeIndented(m, w)
}

// ExportMap writes m to a JSON file at path.
func ExportMap(m *model.Map, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteMap(m, w) })
}

// MarshalMap encodes m as compact JSON.
func MarshalMap(m *model.Map) ([]byte, error) {
	return json.Marshal(m)
}

// WriteLayout writes l as indented JSON.
func WriteLayout(l layout.Layout, w io.Writer) error {
	return writeIndented(l, w)
}

// ExportLayout writes l to a JSON file at path.
func ExportLayout(l layout.Layout, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteLayout(l, w) })
}

// MarshalLayout encodes l as compact JSON.
func MarshalLayout(l layout.Layout) ([]byte, error) {
	return json.Marshal(l)
}

// WriteDocument writes d as indented JSON.
func WriteDocument(d Document, w io.Writer) error {
	return writeIndented(d, w)
}

// ExportDocument writes d to a JSON file at path.
func ExportDocument(d Document, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteDocument(d, w) })
}

func writeIndented(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
