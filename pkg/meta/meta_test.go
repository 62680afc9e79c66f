package meta

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/position"
)

func TestResolveDefault(t *testing.T) {
	def := position.Point{X: 0, Y: -30}
	for _, text := range []string{"", "   ", "[]", "null"} {
		got, err := Resolve("A", text, def)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", text, err)
		}
		if got != def {
			t.Errorf("Resolve(%q) = %+v, want %+v", text, got, def)
		}
	}
}

func TestResolveRecord(t *testing.T) {
	text := `[{"name":"A","x":12,"y":-4},{"name":"B","x":"7.5","y":" 3 "}]`

	tests := []struct {
		id   string
		want position.Point
	}{
		{"A", position.Point{X: 12, Y: -4}},
		{"B", position.Point{X: 7.5, Y: 3}},
		{"C", position.Point{X: 1, Y: 1}},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.id, text, position.Point{X: 1, Y: 1})
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %+v, want %+v", tt.id, got, tt.want)
		}
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	text := `[{"name":"A","x":1,"y":1},{"name":"A","x":2,"y":2}]`
	got, err := Resolve("A", text, position.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if got != (position.Point{X: 1, Y: 1}) {
		t.Errorf("Resolve = %+v, want first record", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "nope"},
		{"object", `{"name":"A","x":1,"y":1}`},
		{"truncated", `[{"name":"A","x":1`},
		{"missing name", `[{"x":1,"y":1}]`},
		{"missing x", `[{"name":"A","y":1}]`},
		{"null y", `[{"name":"A","x":1,"y":null}]`},
		{"non numeric string", `[{"name":"A","x":"abc","y":1}]`},
		{"NaN string", `[{"name":"A","x":"NaN","y":1}]`},
		{"infinite string", `[{"name":"A","x":1,"y":"-Inf"}]`},
		{"boolean coordinate", `[{"name":"A","x":true,"y":1}]`},
		{"record not object", `[1]`},
		{"name not string", `[{"name":3,"x":1,"y":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", tt.text)
			}
			if !errors.Is(err, errors.ErrCodeOverlayFormat) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeOverlayFormat)
			}

			if _, err := Resolve("A", tt.text, position.Point{}); !errors.Is(err, errors.ErrCodeOverlayFormat) {
				t.Errorf("Resolve should surface overlay error, got %v", err)
			}
			if _, err := ApplyMove("A", tt.text, position.Point{}); !errors.Is(err, errors.ErrCodeOverlayFormat) {
				t.Errorf("ApplyMove should surface overlay error, got %v", err)
			}
		})
	}
}

func TestApplyMoveRoundTrip(t *testing.T) {
	priors := []string{
		"",
		"[]",
		`[{"name":"A","x":1,"y":2}]`,
		`[{"name":"B","x":"5","y":"6"},{"name":"A","x":1,"y":2}]`,
		`[ {"name": "C", "x": 9, "y": 9} ]`,
	}
	moves := []position.Point{
		{X: 0, Y: -30},
		{X: 12.25, Y: 0.1},
		{X: -1e-7, Y: 123456.789},
	}

	for _, prior := range priors {
		for _, p := range moves {
			updated, err := ApplyMove("A", prior, p)
			if err != nil {
				t.Fatalf("ApplyMove(%q) error: %v", prior, err)
			}
			got, err := Resolve("A", updated, position.Point{X: 99, Y: 99})
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", updated, err)
			}
			if got != p {
				t.Errorf("round trip over %q: got %+v, want %+v", prior, got, p)
			}
		}
	}
}

func TestApplyMovePreservesOthers(t *testing.T) {
	prior := `[{"name":"B","x":"5","y":"6"},{"name":"A","x":1,"y":2},{"name":"C", "x": 7 ,"y":8}]`

	updated, err := ApplyMove("A", prior, position.Point{X: 10, Y: 20})
	if err != nil {
		t.Fatal(err)
	}

	want := `[{"name":"B","x":"5","y":"6"},{"name":"A","x":10,"y":20},{"name":"C", "x": 7 ,"y":8}]`
	if updated != want {
		t.Errorf("ApplyMove =\n%s\nwant\n%s", updated, want)
	}

	before, _ := Parse(prior)
	after, _ := Parse(updated)
	for _, id := range []string{"B", "C"} {
		p1, _ := before.Lookup(id)
		p2, _ := after.Lookup(id)
		if p1 != p2 {
			t.Errorf("record %s changed: %+v -> %+v", id, p1, p2)
		}
	}
}

func TestApplyMoveAppends(t *testing.T) {
	updated, err := ApplyMove("A", "", position.Point{X: 0, Y: -30})
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"name":"A","x":0,"y":-30}]`; updated != want {
		t.Errorf("ApplyMove = %s, want %s", updated, want)
	}

	updated, err = ApplyMove("B", updated, position.Point{X: 1, Y: 2})
	if err != nil {
		t.Fatal(err)
	}
	o, err := Parse(updated)
	if err != nil {
		t.Fatal(err)
	}
	if got := o.IDs(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("IDs = %v, want [A B]", got)
	}
}

func TestApplyMoveRejectsNaN(t *testing.T) {
	if _, err := ApplyMove("A", "", position.Point{X: math.NaN()}); err == nil {
		t.Error("ApplyMove with NaN should fail")
	}
}

func TestPrune(t *testing.T) {
	prior := `[{"name":"A","x":1,"y":1},{"name":"gone","x":2,"y":2},{"name":"B","x":3,"y":3}]`
	keep := func(id string) bool { return id != "gone" }

	text, dropped, err := Prune(prior, keep)
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"name":"A","x":1,"y":1},{"name":"B","x":3,"y":3}]`; text != want {
		t.Errorf("Prune = %s, want %s", text, want)
	}
	if !slices.Equal(dropped, []string{"gone"}) {
		t.Errorf("dropped = %v", dropped)
	}

	text, dropped, err = Prune("", keep)
	if err != nil {
		t.Fatal(err)
	}
	if text != "[]" || len(dropped) != 0 {
		t.Errorf("Prune(empty) = %q, %v", text, dropped)
	}
}

func TestKeys(t *testing.T) {
	if got := LabelKey("kettle"); got != "element_text_kettle" {
		t.Errorf("LabelKey = %s", got)
	}
	if got := FlowLabelKey("a", "b"); got != "flow_text_a_b" {
		t.Errorf("FlowLabelKey = %s", got)
	}
}
