// Package autosave coalesces rapid note edits into a single store write.
package autosave

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDelay is used when a non-positive delay is configured.
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs the most recently queued function for a key once no new
// function has been queued for that key during the delay.
type Debouncer struct {
	pending  map[string]*pendingSave
	mu       sync.Mutex
	seq      uint64 // guarded by mu, never reused
	delay    time.Duration
	stopping atomic.Bool
}

type pendingSave struct {
	timer *time.Timer
	run   func()
	seq   uint64
}

// New creates a Debouncer.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		pending: make(map[string]*pendingSave),
		delay:   delay,
	}
}

// Delay returns the configured debounce delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Queue schedules run for key, replacing any function still pending for the
// same key and restarting its timer. Returns false once Stop has been called.
func (d *Debouncer) Queue(key string, run func()) bool {
	if d.stopping.Load() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopping.Load() {
		return false
	}

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.seq++
	seq := d.seq

	p := &pendingSave{run: run, seq: seq}
	p.timer = time.AfterFunc(d.delay, func() {
		d.fire(key, seq)
	})
	d.pending[key] = p
	return true
}

// fire runs the pending function unless it was superseded after the timer
// went off.
func (d *Debouncer) fire(key string, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	p.run()
}

// Cancel drops the pending function for key. Returns true if one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Flush runs the pending function for key immediately. Returns true if one
// was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		p.run()
	}
	return ok
}

// FlushAll runs every pending function immediately.
func (d *Debouncer) FlushAll() {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[string]*pendingSave)
	for _, p := range pending {
		p.timer.Stop()
	}
	d.mu.Unlock()

	for _, p := range pending {
		p.run()
	}
}

// Stop cancels all pending functions and rejects new ones.
func (d *Debouncer) Stop() {
	d.stopping.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.pending {
		p.timer.Stop()
	}
	d.pending = make(map[string]*pendingSave)
}

// PendingCount returns the number of keys with a pending function.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
