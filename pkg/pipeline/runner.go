package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wardley/pkg/cache"
	"github.com/matzehuels/wardley/pkg/compiler"
	"github.com/matzehuels/wardley/pkg/io"
	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/meta"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/observability"
	"github.com/matzehuels/wardley/pkg/position"
)

// Cache key types reported to observability hooks.
const (
	keyTypeModel  = "model"
	keyTypeLayout = "layout"
)

// Runner executes the pipeline with caching.
//
// The Runner holds no per-document state, so one Runner can serve many
// goroutines with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL, when positive, replaces cache.TTLModel and cache.TTLLayout.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer means DefaultKeyer, a nil cache
// disables caching and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute compiles opts.Text and lays it out with opts.Overlay.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	result := &Result{TextHash: cache.Hash([]byte(opts.Text))}

	// Stage 1: Compile
	compileStart := time.Now()
	m, compileHit, err := r.CompileWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Map = m
	result.Stats.CompileTime = time.Since(compileStart)
	result.Stats.ElementCount = len(m.Elements)
	result.Stats.LinkCount = len(m.Links)
	result.Stats.FlowCount = len(m.FlowLinks())
	result.CacheInfo.CompileHit = compileHit

	opts.Logger.Info("compiled map",
		"title", m.Title,
		"elements", len(m.Elements),
		"links", len(m.Links),
		"cached", compileHit,
		"duration", result.Stats.CompileTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, m, result.TextHash, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.OrphanCount = len(l.Orphans)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"orphans", len(l.Orphans),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// CompileWithCacheInfo compiles opts.Text and reports whether the map came
// from the cache.
func (r *Runner) CompileWithCacheInfo(ctx context.Context, opts Options) (*model.Map, bool, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	key := r.Keyer.ModelKey(cache.Hash([]byte(opts.Text)))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if m, err := io.UnmarshalMap(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeModel)
				return m, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeModel)
	}

	start := time.Now()
	hooks.OnCompileStart(ctx, len(opts.Text))
	m, err := compiler.New(opts.Logger).Compile(opts.Text)
	elements := 0
	if m != nil {
		elements = len(m.Elements)
	}
	hooks.OnCompileComplete(ctx, elements, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, key, keyTypeModel, r.ttl(cache.TTLModel), func() ([]byte, error) { return io.MarshalMap(m) })
	return m, false, nil
}

// Compile is CompileWithCacheInfo without the cache hit info.
func (r *Runner) Compile(ctx context.Context, opts Options) (*model.Map, error) {
	m, _, err := r.CompileWithCacheInfo(ctx, opts)
	return m, err
}

// LayoutWithCacheInfo lays out m, the map compiled from text with hash
// textHash, and reports whether the layout came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m *model.Map, textHash string, opts Options) (layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	key := r.Keyer.LayoutKey(textHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := io.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				return l, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, len(m.Elements)+len(m.Anchors))
	l, err := layout.Compute(m, opts.Canvas(), opts.Overlay)
	hooks.OnLayoutComplete(ctx, len(l.Orphans), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}
	if len(l.Orphans) > 0 {
		opts.Logger.Debug("overlay has orphaned records", "ids", l.Orphans)
	}

	r.store(ctx, key, keyTypeLayout, r.ttl(cache.TTLLayout), func() ([]byte, error) { return io.MarshalLayout(l) })
	return l, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, m *model.Map, textHash string, opts Options) (layout.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, m, textHash, opts)
	return l, err
}

// Move records p as the manual offset of id in opts.Overlay and returns
// the new overlay text. It is the single call a drag ends in.
func (r *Runner) Move(ctx context.Context, opts Options, id string, p position.Point) (string, error) {
	r.applyLogger(&opts)
	updated, err := meta.ApplyMove(id, opts.Overlay, p)
	observability.Pipeline().OnOverlayMove(ctx, id, err)
	if err != nil {
		return "", err
	}
	opts.Logger.Debug("moved element", "id", id, "x", p.X, "y", p.Y)
	return updated, nil
}

// Prune compiles opts.Text and removes every overlay record that the
// layout reports as orphaned. It returns the new overlay text and the
// removed names.
func (r *Runner) Prune(ctx context.Context, opts Options) (string, []string, error) {
	r.applyLogger(&opts)
	res, err := r.Execute(ctx, opts)
	if err != nil {
		return "", nil, err
	}
	orphan := make(map[string]bool, len(res.Layout.Orphans))
	for _, id := range res.Layout.Orphans {
		orphan[id] = true
	}
	text, dropped, err := meta.Prune(opts.Overlay, func(id string) bool { return !orphan[id] })
	if err != nil {
		return "", nil, err
	}
	opts.Logger.Info("pruned overlay", "removed", len(dropped))
	return text, dropped, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store encodes a result and writes it to the cache. Cache failures are
// logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, key, keyType string, ttl time.Duration, encode func() ([]byte, error)) {
	data, err := encode()
	if err != nil {
		r.Logger.Warn("encode cache entry", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("write cache entry", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
