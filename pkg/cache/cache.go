// Package cache stores encoded pattern database tables.
//
// Every backend implements [Cache], a byte-oriented key/value store with an
// optional time-to-live. Keys come from a [Keyer] so that a change in table
// layout or encoding never reads a stale entry.
//
// Backends:
//   - [FileCache]: one file per key under a directory (CLI default)
//   - [BadgerCache]: an embedded badger key/value store
//   - [RedisCache]: a shared redis instance
//   - [MongoCache]: a mongo collection with a TTL index
//   - [NullCache]: stores nothing
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for encoded tables.
type Cache interface {
	// Get returns the value for key. A missing or expired key is a miss,
	// not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// FormatVersion is mixed into every table key. Bump it when the table
// encoding or an encoding's index order changes.
const FormatVersion = 1

// Keyer generates cache keys.
type Keyer interface {
	// TableKey returns the key of the table built for the named encoding
	// over an index space of the given size.
	TableKey(name string, size uint32) string
}

// DefaultKeyer produces keys of the form "table:<name>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TableKey implements Keyer.
func (DefaultKeyer) TableKey(name string, size uint32) string {
	return "table:" + name + ":" + tableDigest(name, size, FormatVersion)
}
