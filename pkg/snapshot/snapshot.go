// Package snapshot persists small JSON state blobs keyed by name. It backs the
// storefront cart and session managers, which write a snapshot after every
// mutation and rehydrate from it on startup.
package snapshot

import "context"

// Store saves and restores JSON snapshots. Load treats a missing or
// unreadable snapshot the same way: the caller gets (false, nil) and starts
// from a clean state. Corruption must never surface as an error to the
// state managers.
type Store interface {
	// Save serializes value as JSON and stores it under key, replacing any
	// previous snapshot.
	Save(ctx context.Context, key string, value any) error

	// Load reads the snapshot under key into dest. It returns false when no
	// snapshot exists or the stored bytes do not decode into dest, in which
	// case the stale entry is discarded.
	Load(ctx context.Context, key string, dest any) (bool, error)

	// Clear removes the snapshot under key. Clearing an absent key is not an
	// error.
	Clear(ctx context.Context, key string) error
}
