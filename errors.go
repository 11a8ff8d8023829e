package bearchat

import (
	"errors"
	"fmt"
)

// ConfigError indicates missing or invalid translation settings.
// It is surfaced immediately and never retried.
type ConfigError struct {
	Field   string // Offending setting ("apiKey", "baseUrl", "modelName"), if known
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NetworkError indicates a transport failure or a non-success response from
// the remote service that persisted through the whole retry budget.
type NetworkError struct {
	Message  string
	Attempts int // Number of attempts made, including the first
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error after %d attempt(s): %s: %v", e.Attempts, e.Message, e.Cause)
	}
	return fmt.Sprintf("network error after %d attempt(s): %s", e.Attempts, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// StorageError indicates a persistence failure inside the cache.
// The cache absorbs it; it never reaches the user-visible layer.
type StorageError struct {
	Op    string // "read" or "write"
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsNetworkError reports whether err is, or wraps, a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
