// Package provider implements remote translators for the bearchat pipeline.
package provider

import "github.com/ZaguanLabs/bearchat"

// RemoteTranslator is an alias to the main package interface for convenience.
type RemoteTranslator = bearchat.RemoteTranslator

// TranslationRequest is an alias to the main package type.
type TranslationRequest = bearchat.TranslationRequest

// TranslationResult is an alias to the main package type.
type TranslationResult = bearchat.TranslationResult
