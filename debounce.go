package bearchat

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiet period used when none is configured.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer coalesces a rapidly changing value: fn runs with the last value
// only after no new value has arrived for the whole window.
type Debouncer[T any] struct {
	window time.Duration
	fn     func(T)

	running sync.WaitGroup // Invocations of fn in progress

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64 // Bumped on every Trigger/Stop; stale timers compare against it
	value   T
	pending bool
	stopped bool
}

// NewDebouncer creates a debouncer. A non-positive window selects
// DefaultDebounceWindow.
func NewDebouncer[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer[T]{window: window, fn: fn}
}

// Trigger records v and restarts the quiet window, cancelling any pending
// invocation. Calls after Stop are ignored.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.seq++
	d.value = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}

	seq := d.seq
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

// fire runs fn if no Trigger or Stop happened since the timer was armed.
// Timer.Stop cannot recall a callback that has already started, hence the
// sequence check.
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
}

// Flush runs fn immediately with the pending value, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.value
	d.pending = false
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending invocation. The debouncer cannot be restarted.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Wait blocks until invocations of fn that already started have returned.
// Call it after Stop to be sure no invocation is left running.
func (d *Debouncer[T]) Wait() {
	d.running.Wait()
}
