package trace

import (
	"os"
	"sync"

	"assetforge/internal/fsutil"
)

// Sink is the minimal interface the bundler and map compiler depend on.
//
// Record must be inert: it must not panic and does not return errors.
// Callers must assume Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(Event) {}

// SafeRecord records an event and guarantees inertness even if the sink is buggy.
func SafeRecord(s Sink, event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder is a concurrency-safe in-memory collector.
// Ordering is computed after collection, so recording order does not matter.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all recorded events.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Trace builds a canonical ExecutionTrace from the recorded events.
func (r *Recorder) Trace(command string) ExecutionTrace {
	tr := ExecutionTrace{Command: command}
	tr.Events = r.Snapshot()
	tr.Canonicalize()
	return tr
}

// WriteFile writes the canonical JSON of tr to path atomically.
func WriteFile(path string, tr ExecutionTrace) error {
	b, err := tr.CanonicalJSON()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, append(b, '\n'), os.FileMode(0o644))
}
