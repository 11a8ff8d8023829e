package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTranslator is a mock translator for tests and examples.
// It is safe for concurrent use.
type MockTranslator struct {
	mu           sync.Mutex
	translations map[string]string
	model        string
	delay        time.Duration
	failures     []error
	calls        int
	lastRequest  *TranslationRequest
}

// NewMockTranslator creates a mock translator with a few canned translations.
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{
		translations: map[string]string{
			"hello":       "こんにちは",
			"hello world": "こんにちは世界",
			"你好":          "Hello",
			"thank you":   "감사합니다",
		},
		model: "mock-model",
	}
}

// SetTranslation registers a canned translation for text.
func (m *MockTranslator) SetTranslation(text, translation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.translations[text] = translation
}

// SetModel changes the reported model name.
func (m *MockTranslator) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// SetDelay makes every call block for d or until the context is done.
func (m *MockTranslator) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// FailNext makes the next calls fail with errs, one error per call.
func (m *MockTranslator) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

// Translate returns the canned translation, or the bracketed text for
// unknown input.
func (m *MockTranslator) Translate(ctx context.Context, req TranslationRequest) TranslationResult {
	m.mu.Lock()
	m.calls++
	m.lastRequest = &req
	delay := m.delay
	var failure error
	if len(m.failures) > 0 {
		failure = m.failures[0]
		m.failures = m.failures[1:]
	}
	translation, ok := m.translations[req.Text]
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return TranslationResult{Err: ctx.Err()}
		case <-timer.C:
		}
	}

	if failure != nil {
		return TranslationResult{Err: failure}
	}
	if req.IsEmpty() {
		return TranslationResult{}
	}
	if !ok {
		translation = fmt.Sprintf("[%s]", req.Text)
	}
	return TranslationResult{Text: translation}
}

// ModelName implements RemoteTranslator.
func (m *MockTranslator) ModelName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// Calls returns the number of Translate calls.
func (m *MockTranslator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the last request received, or nil.
func (m *MockTranslator) LastRequest() *TranslationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockTranslator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.lastRequest = nil
	m.failures = nil
}

// Verify MockTranslator implements RemoteTranslator
var _ RemoteTranslator = (*MockTranslator)(nil)
