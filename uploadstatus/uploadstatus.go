// Package uploadstatus tracks completed uploads until a client polls for them.
package uploadstatus

import (
	"sync"
	"sync/atomic"
)

// Tracker is a concurrent take-once table of completed upload keys.
// The zero value is ready to use.
type Tracker struct {
	m   sync.Map
	len atomic.Int64
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// MarkCompleted records key as completed. Marking an already pending key is a no-op.
func (t *Tracker) MarkCompleted(key string) {
	if _, loaded := t.m.LoadOrStore(key, struct{}{}); !loaded {
		t.len.Add(1)
	}
}

// Take reports whether key was completed and removes the entry, so only the
// first poll after an upload sees true.
func (t *Tracker) Take(key string) bool {
	if _, ok := t.m.LoadAndDelete(key); ok {
		t.len.Add(-1)
		return true
	}
	return false
}

// Len returns the number of pending entries.
func (t *Tracker) Len() int {
	return int(t.len.Load())
}
