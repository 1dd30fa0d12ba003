// Package cache stores rendered artifacts so repeated renders of the same
// DOT description skip the Graphviz layout step.
//
// # Backends
//
// [FileCache] keeps entries as files under a directory (the CLI uses the
// user cache directory). [MemoryCache] keeps them in process (the HTTP
// server). [NullCache] disables caching.
//
// # Keys
//
// A [Keyer] derives keys from the content hash of the DOT text and the
// requested format:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: "svg"})
//
// [NewScopedKeyer] prefixes keys, which the CLI uses to separate entries
// written by different releases.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// TTLArtifact is how long rendered artifacts are kept. Rendering is a pure
// function of the DOT text, so entries only expire to bound disk usage.
const TTLArtifact = 7 * 24 * time.Hour

// ArtifactKeyOpts holds the render options that change the artifact bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of the artifact rendered from the DOT
	// text with the given content hash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return artifactKey(dotHash, opts)
}
