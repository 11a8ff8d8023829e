package bearchat

import (
	"context"
	"fmt"
	"time"
)

// flight is one shared remote call. Its context outlives any single caller
// and is cancelled only once every caller waiting on it has gone.
type flight struct {
	key     string // singleflight key, unique per flight
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// share runs req through the translator, joining an identical call already
// in flight. It returns ctx's error if ctx ends first; the shared call keeps
// running for the remaining callers.
func (o *Orchestrator) share(ctx context.Context, key string, req TranslationRequest) (TranslationResult, error) {
	f := o.join(ctx, key)
	defer o.leave(f)

	ch := o.group.DoChan(f.key, func() (any, error) {
		defer o.land(key, f)

		start := time.Now()
		tr := o.translator.Translate(f.ctx, req)
		if f.ctx.Err() == nil {
			o.metrics.RecordTranslation(tr.Err, time.Since(start))
		}
		return tr, nil
	})

	select {
	case r := <-ch:
		if err := ctx.Err(); err != nil {
			return TranslationResult{}, err
		}
		return r.Val.(TranslationResult), nil
	case <-ctx.Done():
		return TranslationResult{}, ctx.Err()
	}
}

// join registers the caller on the live flight for key, starting a new one
// when there is none or the previous one was abandoned by all its callers.
func (o *Orchestrator) join(ctx context.Context, key string) *flight {
	o.flightsMu.Lock()
	defer o.flightsMu.Unlock()

	f := o.flights[key]
	if f == nil || f.ctx.Err() != nil {
		o.flightSeq++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{
			key:    fmt.Sprintf("%s\x00%d", key, o.flightSeq),
			ctx:    fctx,
			cancel: cancel,
		}
		o.flights[key] = f
	}
	f.waiters++
	return f
}

// leave unregisters a caller. The last one out cancels the flight.
func (o *Orchestrator) leave(f *flight) {
	o.flightsMu.Lock()
	defer o.flightsMu.Unlock()

	f.waiters--
	if f.waiters == 0 {
		f.cancel()
	}
}

// land forgets a finished flight so later callers start a fresh call.
func (o *Orchestrator) land(key string, f *flight) {
	o.flightsMu.Lock()
	defer o.flightsMu.Unlock()

	if o.flights[key] == f {
		delete(o.flights, key)
	}
}
