package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/wardley/pkg/compiler"
	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/position"
)

const teaShop = `title Tea Shop
anchor Business [0.95, 0.63]
component Cup of Tea [0.79, 0.61] label [19, -4]
component Kettle [0.43, 0.35] (build)
evolve Kettle 0.62
Business->Cup of Tea
Cup of Tea+'£1'>Kettle; hot
annotation 1 [[0.5, 0.5], Kettle] note
style wardley`

func TestMapRoundTrip(t *testing.T) {
	m := compiler.MustCompile(teaShop)

	var buf bytes.Buffer
	if err := WriteMap(m, &buf); err != nil {
		t.Fatalf("WriteMap: %v", err)
	}
	got, err := ReadMap(&buf)
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip differs:\n got %+v\nwant %+v", got, m)
	}

	data, err := MarshalMap(m)
	if err != nil {
		t.Fatalf("MarshalMap: %v", err)
	}
	again, err := UnmarshalMap(data)
	if err != nil {
		t.Fatalf("UnmarshalMap: %v", err)
	}
	if !reflect.DeepEqual(again, m) {
		t.Error("compact round trip differs")
	}
}

func TestReadMapDefaults(t *testing.T) {
	m, err := ReadMap(strings.NewReader(`{"elements":[{"id":"a","name":"A","maturity":0.5,"visibility":0.5,"type":"component"}]}`))
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}
	if m.Title != model.DefaultTitle {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Evolution != model.DefaultEvolution() {
		t.Errorf("Evolution = %+v", m.Evolution)
	}
	if m.Links == nil || m.Anchors == nil {
		t.Error("missing collections should decode as empty slices")
	}
	if m.Presentation.YAxis.Label != "Value Chain" {
		t.Errorf("YAxis = %+v", m.Presentation.YAxis)
	}
}

func TestReadMapErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		code errors.Code
	}{
		{"duplicate id", `{"elements":[{"id":"a"},{"id":"a"}]}`, errors.ErrCodeReference},
		{"anchor clashes with element", `{"elements":[{"id":"a"}],"anchors":[{"id":"a"}]}`, errors.ErrCodeReference},
		{"empty id", `{"elements":[{"id":""}]}`, errors.ErrCodeInvalidInput},
		{"unknown link end", `{"elements":[{"id":"a"}],"links":[{"start_id":"a","end_id":"b","line":3}]}`, errors.ErrCodeReference},
		{"unknown method target", `{"methods":[{"element_id":"x","kind":"build"}]}`, errors.ErrCodeReference},
		{"bad style", `{"presentation":{"style":"neon"}}`, errors.ErrCodeInvalidStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMap(strings.NewReader(tt.json))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}

	if _, err := ReadMap(strings.NewReader("{")); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	m := compiler.MustCompile(teaShop)
	l, err := layout.Compute(m, position.Canvas{Width: 500, Height: 600}, `[{"name":"kettle","x":3,"y":4},{"name":"gone","x":0,"y":0}]`)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Errorf("layout round trip differs:\n got %+v\nwant %+v", got, l)
	}
}

func TestDocumentFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tea.json")
	doc := Document{ID: "abc", Text: teaShop, Meta: `[{"name":"kettle","x":"12","y":-4}]`}

	if err := ExportDocument(doc, path); err != nil {
		t.Fatalf("ExportDocument: %v", err)
	}
	got, err := ImportDocument(path)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	if got != doc {
		t.Errorf("document = %+v, want %+v", got, doc)
	}

	if _, err := ImportDocument(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("importing a missing file should fail")
	}
}

func TestExportImportMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	m := compiler.MustCompile(teaShop)
	if err := ExportMap(m, path); err != nil {
		t.Fatalf("ExportMap: %v", err)
	}
	got, err := ImportMap(path)
	if err != nil {
		t.Fatalf("ImportMap: %v", err)
	}
	if got.Title != "Tea Shop" || len(got.Elements) != 3 {
		t.Errorf("imported map = %+v", got)
	}
}
