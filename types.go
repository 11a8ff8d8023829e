package bearchat

import (
	"context"
	"strings"
)

// TranslationRequest is a single whole-utterance translation request.
type TranslationRequest struct {
	Text string   // Raw recognized text, untrimmed
	From Language // Source language
	To   Language // Target language
}

// IsEmpty reports whether the request carries no translatable text.
func (r TranslationRequest) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// TranslationResult is the outcome of a remote translation.
// Err is nil on success; on failure Text is empty.
type TranslationResult struct {
	Text string
	Err  error
}

// RemoteTranslator is the interface for translation backends.
// Translate never returns failures out of band: every failure is carried in
// TranslationResult.Err.
type RemoteTranslator interface {
	Translate(ctx context.Context, req TranslationRequest) TranslationResult
	ModelName() string
}

// TranslationCache is the interface for the persistent translation cache.
type TranslationCache interface {
	Get(ctx context.Context, text string, from, to Language, model string) (string, bool)
	Set(ctx context.Context, text string, from, to Language, translation, model string)
}

// Result is what the Orchestrator publishes for one input event.
type Result struct {
	Generation uint64 // Input event the result belongs to
	Source     string // Text that was translated
	Text       string // Translated text (empty on error or empty input)
	Err        error  // ConfigError or NetworkError
	Cached     bool   // Served from the cache without a network call
	Stale      bool   // Superseded by a newer event; never published
}

// State is a snapshot of what a consumer should currently render.
type State struct {
	Generation  uint64 // Generation of the last published result
	Text        string // Last published translation
	Translating bool   // A network call for the current generation is in flight
	Err         error  // Error of the last published result
}
