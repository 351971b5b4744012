package usecases

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultIdleTimeout is how long a guild may stay idle before it is disconnected.
const DefaultIdleTimeout = 180 * time.Second

type watchdogEntry struct {
	timer      *time.Timer
	generation uint64
	deadline   time.Time
}

// InactivityWatchdog keeps one idle timer per guild.
// A timer that fires calls onFire with the guild ID unless it was reset or
// cancelled in the meantime.
type InactivityWatchdog struct {
	timeout time.Duration
	onFire  func(guildID snowflake.ID)

	mu         sync.Mutex
	entries    map[snowflake.ID]*watchdogEntry
	generation uint64
}

// NewInactivityWatchdog creates a watchdog with the given timeout.
func NewInactivityWatchdog(timeout time.Duration, onFire func(guildID snowflake.ID)) *InactivityWatchdog {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &InactivityWatchdog{
		timeout: timeout,
		onFire:  onFire,
		entries: make(map[snowflake.ID]*watchdogEntry),
	}
}

// Timeout returns the configured idle timeout.
func (w *InactivityWatchdog) Timeout() time.Duration {
	return w.timeout
}

// Reset cancels the guild's pending timer, if any, and starts a fresh one.
func (w *InactivityWatchdog) Reset(guildID snowflake.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked(guildID)

	w.generation++
	gen := w.generation
	w.entries[guildID] = &watchdogEntry{
		timer:      time.AfterFunc(w.timeout, func() { w.fire(guildID, gen) }),
		generation: gen,
		deadline:   time.Now().Add(w.timeout),
	}
}

// Cancel stops the guild's pending timer.
func (w *InactivityWatchdog) Cancel(guildID snowflake.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked(guildID)
}

// Deadline returns when the guild's timer will fire.
func (w *InactivityWatchdog) Deadline(guildID snowflake.ID) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.entries[guildID]
	if !ok {
		return time.Time{}, false
	}
	return entry.deadline, true
}

// Stop cancels every pending timer.
func (w *InactivityWatchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for guildID := range w.entries {
		w.stopLocked(guildID)
	}
}

func (w *InactivityWatchdog) stopLocked(guildID snowflake.ID) {
	if entry, ok := w.entries[guildID]; ok {
		entry.timer.Stop()
		delete(w.entries, guildID)
	}
}

func (w *InactivityWatchdog) fire(guildID snowflake.ID, gen uint64) {
	w.mu.Lock()
	entry, ok := w.entries[guildID]
	if !ok || entry.generation != gen {
		// Reset or cancelled after the timer had already started running.
		w.mu.Unlock()
		return
	}
	delete(w.entries, guildID)
	w.mu.Unlock()

	if w.onFire != nil {
		w.onFire(guildID)
	}
}
