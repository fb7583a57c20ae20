// Package globaltime is the clock behind every run timestamp: run
// identifiers, cohort ProcessedAt stamps and report start/finish times all
// read it, so tests can pin a run to a fixed instant.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu    sync.RWMutex
	clock = time.Now
)

// Now returns the current clock reading.
func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return clock()
}

// UTC returns the current clock reading in UTC. Artifacts and store rows
// always use this form.
func UTC() time.Time {
	return Now().UTC()
}

// SetMockTime freezes the clock at a fixed instant until ResetTime.
func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	clock = func() time.Time { return t }
}

// ResetTime restores the real clock.
func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	clock = time.Now
}
