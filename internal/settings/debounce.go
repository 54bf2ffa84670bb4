package settings

import (
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet window before an auto-save flush.
const DefaultAutoSaveDelay = time.Second

// debouncer collapses a burst of triggers into a single delayed call.
// A new trigger cancels the pending timer and restarts the window, so
// the function fires once per quiet period.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// trigger schedules (or reschedules) the call.
func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, d.fn)
}

// stop cancels any pending call.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
