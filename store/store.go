// Package store provides the key-value persistence backends shared by the
// translation cache and the settings record.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("store: key not found")

	// ErrQuotaExceeded is returned by Set when the backend has no room left.
	ErrQuotaExceeded = errors.New("store: quota exceeded")
)

// Store is a process-wide key-value store. Each call is atomic on its own
// and concurrent writers to the same key are last-writer-wins.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
