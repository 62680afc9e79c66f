// Package cache stores compiled maps and layouts keyed by content hash.
//
// Three backends implement [Cache]:
//
//   - [NullCache] stores nothing (caching disabled)
//   - [FileCache] keeps entries under a local directory (CLI use)
//   - [RedisCache] shares entries between server replicas
//
// Keys come from a [Keyer] so that callers never build them by hand:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash([]byte(text)), cache.LayoutKeyOpts{Width: 500, Height: 600})
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLModel is the lifetime of a compiled map. Compilation is pure, so
	// entries only expire to bound storage.
	TTLModel = 7 * 24 * time.Hour

	// TTLLayout is the lifetime of a computed layout.
	TTLLayout = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts are the inputs besides the notation text that change a
// layout.
type LayoutKeyOpts struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	OverlayHash string  `json:"overlay_hash"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ModelKey is the key of the map compiled from text with the given hash.
	ModelKey(textHash string) string

	// LayoutKey is the key of a layout of the map with the given text hash.
	LayoutKey(textHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without namespace.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ModelKey returns "model:<textHash>".
func (DefaultKeyer) ModelKey(textHash string) string {
	return "model:" + textHash
}

// LayoutKey hashes the layout options together with the text hash.
func (DefaultKeyer) LayoutKey(textHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", textHash, opts)
}
