// Package pipeline runs the compile → layout pipeline shared by the CLI,
// the interactive editor and the HTTP API.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Compile: turn notation text into a [model.Map]
//  2. Layout: place the map on a canvas and apply the meta overlay
//
// Both stages are pure, so their results are cached by content hash. A
// layout depends on the overlay text as well as the notation, which is
// why a drag only invalidates the layout entry.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Text:    text,
//	    Overlay: overlay,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, n := range result.Layout.Nodes {
//	    fmt.Println(n.ID, n.Final)
//	}
//
// Drag interactions end in a single [Runner.Move] call that rewrites the
// overlay text.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wardley/pkg/cache"
	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/position"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and Editor
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 500.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the inputs of one pipeline run. It supports JSON for
// API requests.
type Options struct {
	Text    string  `json:"text"`
	Overlay string  `json:"meta,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Map is the compiled map.
	Map *model.Map

	// TextHash is the content hash of the notation text.
	TextHash string

	// Layout is the computed drawing.
	Layout layout.Layout

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount int
	LinkCount    int
	FlowCount    int
	OrphanCount  int
	CompileTime  time.Duration
	LayoutTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CompileHit bool
	LayoutHit  bool
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills in the canvas size and logger.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies defaults and checks the canvas.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return errors.ValidateCanvas(o.Width, o.Height)
}

// Canvas returns the canvas described by the options.
func (o *Options) Canvas() position.Canvas {
	return position.Canvas{Width: o.Width, Height: o.Height}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		OverlayHash: cache.Hash([]byte(o.Overlay)),
	}
}
