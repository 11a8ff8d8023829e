package bearchat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by Session methods after Close.
var ErrSessionClosed = errors.New("session closed")

// Session feeds a stream of transcript updates into an Orchestrator. Updates
// are debounced so that only the text present after a quiet window is
// translated.
type Session struct {
	id           string
	orchestrator *Orchestrator
	debouncer    *Debouncer[string]
	logger       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // Re-translations started by SetLanguages

	mu       sync.Mutex
	lastText string
	closed   bool
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	window time.Duration
}

// WithDebounceWindow sets the quiet period (default: 300ms).
func WithDebounceWindow(d time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.window = d
	}
}

// NewSession creates a session over o.
func NewSession(o *Orchestrator, opts ...SessionOption) *Session {
	so := &sessionOptions{window: DefaultDebounceWindow}
	for _, opt := range opts {
		opt(so)
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	s := &Session{
		id:           id,
		orchestrator: o,
		logger:       o.logger.With(zap.String("session", id)),
		ctx:          ctx,
		cancel:       cancel,
	}
	s.debouncer = NewDebouncer(so.window, s.translate)

	s.logger.Debug("session started", zap.Duration("debounce", so.window))
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Update records the latest transcript text. Translation runs asynchronously
// once no further update arrives within the debounce window.
func (s *Session) Update(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastText = text
	s.debouncer.Trigger(text)
	return nil
}

// Flush translates a pending update immediately, blocking until it is
// published or discarded.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Drain translates a pending update, waits for every in-flight translation
// to finish and closes the session. Use it at the end of input.
func (s *Session) Drain() {
	s.debouncer.Flush()
	s.shutdown(false)
}

// SetLanguages changes the language pair and re-translates the last text in
// the background.
func (s *Session) SetLanguages(from, to Language) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	last := s.lastText
	s.mu.Unlock()

	if err := s.orchestrator.SetLanguages(from, to); err != nil {
		return err
	}
	s.logger.Debug("languages changed", zap.Stringer("from", from), zap.Stringer("to", to))

	if !s.begin() {
		return ErrSessionClosed
	}
	go func() {
		defer s.wg.Done()
		s.orchestrator.Translate(s.ctx, last)
	}()
	return nil
}

// Close drops a pending update, cancels in-flight translations and waits
// for them to finish. It is safe to call more than once.
func (s *Session) Close() {
	s.shutdown(true)
}

func (s *Session) shutdown(cancel bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	if cancel {
		s.cancel()
	}
	s.debouncer.Wait()
	s.wg.Wait()
	s.cancel()
	s.logger.Debug("session closed")
}

// begin registers an in-flight translation unless the session is closed.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Session) translate(text string) {
	s.orchestrator.Translate(s.ctx, text)
}
