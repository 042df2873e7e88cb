package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration collapses bursts of events from editors and
// atomic-rename writers into a single notification.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback invocation.
type Debouncer struct {
	d     time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

// Trigger schedules fn after the quiet period, resetting any pending
// invocation.
func (db *Debouncer) Trigger(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, fn)
}

// Cancel drops any pending invocation.
func (db *Debouncer) Cancel() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}
