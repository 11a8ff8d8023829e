package bearchat

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "apiKey", Message: "missing API key"}

	if err.Error() != "configuration error (apiKey): missing API key" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	cause := errors.New("parse failure")
	err2 := &ConfigError{Message: "invalid base URL", Cause: cause}
	if err2.Error() != "configuration error: invalid base URL: parse failure" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
	if err2.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Message: "chat completion failed", Attempts: 3, Cause: cause}

	expected := "network error after 3 attempt(s): chat completion failed: connection refused"
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestStorageError(t *testing.T) {
	err := &StorageError{Op: "write", Key: "bearchat-translations", Cause: errors.New("quota exceeded")}

	expected := `storage error: write "bearchat-translations": quota exceeded`
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		isConfig  bool
		isNetwork bool
	}{
		{"nil", nil, false, false},
		{"config", &ConfigError{Message: "x"}, true, false},
		{"wrapped config", fmt.Errorf("loading: %w", &ConfigError{Message: "x"}), true, false},
		{"network", &NetworkError{Message: "x", Attempts: 1}, false, true},
		{"generic", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigError(tt.err); got != tt.isConfig {
				t.Errorf("IsConfigError() = %v, want %v", got, tt.isConfig)
			}
			if got := IsNetworkError(tt.err); got != tt.isNetwork {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.isNetwork)
			}
		})
	}
}
