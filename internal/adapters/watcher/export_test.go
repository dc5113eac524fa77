package watcher

import (
	"time"

	"go.trai.ch/kiln/internal/core/ports"
)

// ConvertEventExported exposes convertEvent for testing.
var ConvertEventExported = convertEvent

// Unchanged exposes the unchanged-content filter for testing.
func (w *Watcher) Unchanged(ev ports.WatchEvent) bool {
	return w.unchanged(ev)
}

// SetClock replaces the time source of the unchanged-content filter.
func (w *Watcher) SetClock(now func() time.Time) {
	w.now = now
}
