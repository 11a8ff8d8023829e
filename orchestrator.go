package bearchat

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/bearchat/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Orchestrator turns transcript updates into published translations. Each
// call to Translate is one input event with its own generation; a result is
// published only while its generation is still the newest one, so an older
// request resolving late never overwrites a newer one.
type Orchestrator struct {
	translator RemoteTranslator
	cache      TranslationCache
	logger     *zap.Logger
	metrics    *metrics.Collector

	onResult  func(Result)
	onError   func(Result)
	onPending func(generation uint64)

	group     singleflight.Group
	flightsMu sync.Mutex
	flights   map[string]*flight
	flightSeq uint64

	// publishMu serialises the currency check, state update and handler
	// call of a publish. Handlers must not call Translate.
	publishMu sync.Mutex

	mu         sync.Mutex
	from, to   Language
	generation uint64 // Newest minted generation
	published  uint64 // Generation of the last published result
	state      State
}

// OrchestratorOption is a functional option for configuring the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLanguages sets the initial language pair (default: Chinese to English).
// NewOrchestrator rejects a pair SetLanguages would reject.
func WithLanguages(from, to Language) OrchestratorOption {
	return func(o *Orchestrator) {
		o.from = from
		o.to = to
	}
}

// WithResultHandler sets the callback for published successful results,
// including cache hits and empty input.
func WithResultHandler(fn func(Result)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onResult = fn
	}
}

// WithErrorHandler sets the callback for published failures.
func WithErrorHandler(fn func(Result)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onError = fn
	}
}

// WithPendingHandler sets the callback invoked when a network translation
// starts for a generation.
func WithPendingHandler(fn func(generation uint64)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onPending = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = c
	}
}

// NewOrchestrator creates an Orchestrator over translator and cache.
func NewOrchestrator(translator RemoteTranslator, cache TranslationCache, opts ...OrchestratorOption) (*Orchestrator, error) {
	o := &Orchestrator{
		translator: translator,
		cache:      cache,
		logger:     zap.NewNop(),
		flights:    make(map[string]*flight),
		from:       Chinese,
		to:         English,
	}

	for _, opt := range opts {
		opt(o)
	}

	if err := validatePair(o.from, o.to); err != nil {
		return nil, err
	}
	return o, nil
}

func validatePair(from, to Language) error {
	if !from.Valid() || !to.Valid() {
		return &ConfigError{Field: "language", Message: fmt.Sprintf("unsupported language pair %v -> %v", from, to)}
	}
	if from == to {
		return &ConfigError{Field: "language", Message: fmt.Sprintf("source and target are both %s", from.Name())}
	}
	return nil
}

// Translate handles one input event and returns its outcome. The returned
// Result has Stale set when a newer event superseded it; such results are
// neither published nor cached. If ctx ends before the translation resolves,
// the Result carries ctx's error and is not published either.
func (o *Orchestrator) Translate(ctx context.Context, text string) Result {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	req := TranslationRequest{Text: text, From: o.from, To: o.to}
	o.mu.Unlock()

	res := Result{Generation: gen, Source: text}

	if req.IsEmpty() {
		return o.publish(res)
	}

	model := o.translator.ModelName()
	if cached, ok := o.cache.Get(ctx, text, req.From, req.To, model); ok {
		o.metrics.RecordCacheLookup(true)
		res.Text = cached
		res.Cached = true
		return o.publish(res)
	}
	o.metrics.RecordCacheLookup(false)

	if !o.markTranslating(gen) {
		res.Stale = true
		o.metrics.RecordStale()
		return res
	}
	if o.onPending != nil {
		o.onPending(gen)
	}

	tr, err := o.share(ctx, CacheKey(text, req.From, req.To)+"\x00"+model, req)
	if err != nil {
		return o.abandon(res, err)
	}

	res.Text = tr.Text
	res.Err = tr.Err

	if !o.isCurrent(gen) {
		return o.discard(res)
	}
	if res.Err == nil {
		o.cache.Set(ctx, text, req.From, req.To, res.Text, model)
	}
	return o.publish(res)
}

// State returns a snapshot of what should currently be rendered.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetLanguages changes the language pair for subsequent events. Both
// languages must be supported and distinct.
func (o *Orchestrator) SetLanguages(from, to Language) error {
	if err := validatePair(from, to); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.from = from
	o.to = to
	return nil
}

// Languages returns the current language pair.
func (o *Orchestrator) Languages() (from, to Language) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.from, o.to
}

// ModelName returns the model of the underlying translator.
func (o *Orchestrator) ModelName() string {
	return o.translator.ModelName()
}

func (o *Orchestrator) isCurrent(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.generation
}

func (o *Orchestrator) markTranslating(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	o.state.Translating = true
	return true
}

func (o *Orchestrator) publish(res Result) Result {
	o.publishMu.Lock()
	defer o.publishMu.Unlock()

	o.mu.Lock()
	if res.Generation != o.generation || res.Generation <= o.published {
		o.mu.Unlock()
		return o.discard(res)
	}
	o.published = res.Generation
	o.state = State{
		Generation: res.Generation,
		Text:       res.Text,
		Err:        res.Err,
	}
	o.mu.Unlock()

	if res.Err != nil {
		o.logger.Debug("translation failed",
			zap.Uint64("generation", res.Generation),
			zap.Error(res.Err),
		)
		if o.onError != nil {
			o.onError(res)
		}
		return res
	}

	if o.onResult != nil {
		o.onResult(res)
	}
	return res
}

// abandon drops a result whose caller went away. Nothing is published; a
// Translating flag raised for it is cleared.
func (o *Orchestrator) abandon(res Result, err error) Result {
	o.mu.Lock()
	if res.Generation == o.generation {
		o.state.Translating = false
	}
	o.mu.Unlock()

	o.logger.Debug("translation abandoned",
		zap.Uint64("generation", res.Generation),
		zap.Error(err),
	)
	res.Text = ""
	res.Err = err
	return res
}

func (o *Orchestrator) discard(res Result) Result {
	res.Stale = true
	o.metrics.RecordStale()
	o.logger.Debug("discarding superseded result", zap.Uint64("generation", res.Generation))
	return res
}
