// Package kv provides the key/value backends that persist dashboard state
// (the watchlist and UI preferences).
package kv

import (
	"context"

	"github.com/newthinker/signaldeck/internal/core"
)

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = &core.Error{Code: "KEY_NOT_FOUND", Message: "key not found"}

// Storage defines the interface for key/value persistence backends
type Storage interface {
	// Write stores data at the given key
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data from the given key
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given key
	Delete(ctx context.Context, key string) error

	// Exists checks if data exists at the given key
	Exists(ctx context.Context, key string) (bool, error)
}
