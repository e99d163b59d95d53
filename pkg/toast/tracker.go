// Package toast buffers user-facing notification events emitted by tool
// calls, for the frontend to poll independently of the narrative text.
package toast

import (
	"sync"
	"time"
)

const (
	// maxEvents caps the buffer at the most recent entries.
	maxEvents = 50
	// maxAge prunes entries on read once they are older than this.
	maxAge = time.Minute
)

// Event is one user-visible tool side effect. JSON field names match
// what the polling frontend expects.
type Event struct {
	ID        int64          `json:"id"`
	Tool      string         `json:"toolName"`
	Args      map[string]any `json:"args"`
	Payload   any            `json:"userReturn"`
	Timestamp time.Time      `json:"timestamp"`
}

// Tracker is an append-only buffer of events with monotonically
// increasing IDs. Reads snapshot under the lock, so polling is safe
// against concurrent appends from tool execution.
type Tracker struct {
	mu     sync.Mutex
	events []Event
	lastID int64

	now func() time.Time // injectable for tests
}

func NewTracker() *Tracker {
	return &Tracker{
		events: make([]Event, 0, maxEvents),
		now:    time.Now,
	}
}

// Add appends an event with a fresh ID and returns that ID.
func (t *Tracker) Add(tool string, args map[string]any, payload any) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastID++
	t.events = append(t.events, Event{
		ID:        t.lastID,
		Tool:      tool,
		Args:      args,
		Payload:   payload,
		Timestamp: t.now(),
	})
	if len(t.events) > maxEvents {
		t.events = t.events[len(t.events)-maxEvents:]
	}
	return t.lastID
}

// Since returns events with ID > sinceID in ascending ID order, pruning
// entries older than the retention window first. Entries inside the
// window are never pruned, so a poller cannot lose events it has not
// seen yet.
func (t *Tracker) Since(sinceID int64) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-maxAge)
	kept := t.events[:0]
	for _, e := range t.events {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	t.events = kept

	out := make([]Event, 0, len(t.events))
	for _, e := range t.events {
		if e.ID > sinceID {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all buffered events. IDs keep increasing across resets so
// a stale poller cannot mistake new events for already-seen ones.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = t.events[:0]
}
