// Package kvstore provides the string key-value stores collections are persisted in.
package kvstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is an opaque get/set/remove string store.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key; removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores backed by a server or file that can be unavailable.
type Pinger interface {
	Ping(ctx context.Context) error
}
