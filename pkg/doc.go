// Package pkg provides the core libraries for compiling and laying out
// Wardley Maps.
//
// # Overview
//
// A map is written in a compact line-oriented notation:
//
//	title Tea Shop
//	anchor Business [0.95, 0.63]
//	component Cup of Tea [0.79, 0.61]
//	component Kettle [0.43, 0.35]
//	evolve Kettle 0.62
//	Business->Cup of Tea
//	Cup of Tea->Kettle
//
// Each element sits at a semantic coordinate: visibility (0 at the bottom,
// 1 at the top of the value chain) and maturity (0 at genesis, 1 at
// commodity). Users may drag elements away from where the notation puts
// them; those manual offsets are kept apart from the notation in a JSON
// document called the overlay, so editing the text never loses a drag and
// dragging never rewrites the text.
//
// # Architecture
//
// The data flow through wardley:
//
//	notation text                overlay text
//	     ↓                            │
//	[compiler] package               │
//	     ↓                            │
//	*[model].Map                      │
//	     ↓                            ↓
//	[layout] package ← [position] + [meta]
//	     ↓
//	pixel coordinates for a renderer
//
// The compiler never reads the overlay and nothing in the core mutates the
// notation. A finished drag goes through [meta.ApplyMove] and yields new
// overlay text.
//
// # Quick Start
//
//	m, err := compiler.Compile(text)
//	if err != nil {
//	    return err // coded error with line number, see [errors]
//	}
//	l, err := layout.Compute(m, position.Canvas{Width: 500, Height: 600}, overlay)
//	if err != nil {
//	    return err
//	}
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.Final)
//	}
//
//	// After a drag:
//	overlay, err = meta.ApplyMove("kettle", overlay, position.Point{X: 12, Y: -4})
//
// # Main Packages
//
// [model] - Map types, defaults and the flow classification rule.
//
// [compiler] - Lexer and two-pass resolver for the notation.
//
// [position] - Pure geometry between semantic and pixel coordinates.
//
// [meta] - The overlay: resolve, move and prune manual offsets.
//
// [layout] - Combines a map, a canvas and an overlay into final positions.
//
// [errors] - Coded errors (LEXICAL_ERROR, NUMERIC_ERROR, REFERENCE_ERROR,
// OVERLAY_FORMAT_ERROR) carrying the offending line.
//
// ## Infrastructure
//
// [pipeline] - compile → layout with caching, used by the CLI, the editor
// and the HTTP server.
//
// [cache] - Null, file and Redis cache backends with content-hash keys.
//
// [observability] - Hook interfaces and a Prometheus implementation.
//
// [io] - JSON import and export of maps, layouts and map documents.
//
// [config] - The TOML configuration file.
//
// [model]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/model
// [compiler]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/compiler
// [position]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/position
// [meta]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/meta
// [meta.ApplyMove]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/meta#ApplyMove
// [layout]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/layout
// [errors]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/wardley/pkg/config
package pkg
