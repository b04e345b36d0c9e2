package playback

import (
	"sync"
	"time"
)

const DefaultIdleWindow = 240 * time.Second

// Watchdog is a one-shot inactivity timer. Kick re-arms it; after it fires it
// stays disarmed until the next Kick.
type Watchdog struct {
	mu        sync.Mutex
	clock     Clock
	window    time.Duration
	onTimeout func()
	timer     Timer
	gen       uint64
}

func NewWatchdog(clock Clock, window time.Duration, onTimeout func()) *Watchdog {
	if clock == nil {
		clock = RealClock()
	}
	if window <= 0 {
		window = DefaultIdleWindow
	}
	return &Watchdog{clock: clock, window: window, onTimeout: onTimeout}
}

func (w *Watchdog) Kick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	gen := w.gen
	w.timer = w.clock.AfterFunc(w.window, func() { w.fire(gen) })
}

func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Armed reports whether a timeout is pending.
func (w *Watchdog) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timer != nil
}

func (w *Watchdog) stopLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watchdog) fire(gen uint64) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.gen++
	w.mu.Unlock()
	if w.onTimeout != nil {
		w.onTimeout()
	}
}
