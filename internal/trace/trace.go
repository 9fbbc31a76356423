package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ExecutionTrace is the canonical, deterministic record of one assetforge run.
//
// Invariants:
//   - Command names the subcommand that produced the trace.
//   - Events describe logical outcomes (asset bundled, tool step ran, map
//     compiled), not runtime details.
//   - No timestamps, absolute paths or error strings are recorded.
//
// Canonical representation:
//   - Events are sorted via Canonicalize() using a fully-specified ordering.
//   - JSON serialization uses a custom marshaler to fix field order and omit
//     absent optional fields.
//
// Two runs over identical inputs produce byte-identical CanonicalJSON.
type ExecutionTrace struct {
	Command string
	Events  []Event
}

// EventKind is the stable discriminator for Event.
// The string values are part of the trace's canonical bytes; do not rename.
type EventKind string

const (
	EventAssetBundled EventKind = "AssetBundled"
	EventStepExecuted EventKind = "StepExecuted"
	EventStepFailed   EventKind = "StepFailed"
	EventMapCompiled  EventKind = "MapCompiled"
	EventMapFailed    EventKind = "MapFailed"
)

// Event is a single logical outcome.
//
// Subject is the asset identifier for bundle events and the map name for
// compile events. Seq orders the tool steps of one map pipeline.
type Event struct {
	Kind    EventKind
	Subject string

	Seq      int
	Step     string
	ExitCode int

	// Digest is the hex sha256 of the bundled asset bytes.
	Digest string

	// Artifacts lists base names of files copied into the asset tree.
	Artifacts []string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ExecutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.Command == "" {
		return errors.New("command is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Subject == "" {
			return fmt.Errorf("events[%d].subject is required for kind %q", i, e.Kind)
		}
		if isStepEvent(e.Kind) && e.Step == "" {
			return fmt.Errorf("events[%d].step is required for kind %q", i, e.Kind)
		}
		for j, a := range e.Artifacts {
			if a == "" {
				return fmt.Errorf("events[%d].artifacts[%d] is empty", i, j)
			}
		}
	}
	return nil
}

func isStepEvent(kind EventKind) bool {
	return kind == EventStepExecuted || kind == EventStepFailed
}

// Canonicalize normalizes and sorts the trace into its canonical form.
//
// Canonicalization rules:
//   - Artifacts are copied and sorted; empty slices become nil.
//   - Events are stably sorted by (subject, kindOrder, seq, step, artifactsLex).
func (t *ExecutionTrace) Canonicalize() {
	if t == nil {
		return
	}
	for i := range t.Events {
		if len(t.Events[i].Artifacts) == 0 {
			t.Events[i].Artifacts = nil
			continue
		}
		art := make([]string, len(t.Events[i].Artifacts))
		copy(art, t.Events[i].Artifacts)
		sort.Strings(art)
		t.Events[i].Artifacts = art
	}

	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]

		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		if a.Step != b.Step {
			return a.Step < b.Step
		}
		return compareStringSlices(a.Artifacts, b.Artifacts)
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventAssetBundled:
		return 10
	case EventStepExecuted, EventStepFailed:
		// Steps of one pipeline interleave by Seq, not by outcome.
		return 20
	case EventMapCompiled:
		return 40
	case EventMapFailed:
		return 50
	default:
		return 1000
	}
}

func compareStringSlices(a, b []string) bool {
	la := len(a)
	lb := len(b)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			continue
		}
		return a[i] < b[i]
	}
	return la < lb
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy of the trace to avoid mutating the caller's slices.
func (t ExecutionTrace) CanonicalJSON() ([]byte, error) {
	copyTrace := ExecutionTrace{Command: t.Command}
	copyTrace.Events = make([]Event, len(t.Events))
	copy(copyTrace.Events, t.Events)
	copyTrace.Canonicalize()
	if err := copyTrace.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&copyTrace)
}

// Hash returns the deterministic trace hash (sha256 hex) of the canonical JSON bytes.
func (t ExecutionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON ensures canonical field ordering.
func (t ExecutionTrace) MarshalJSON() ([]byte, error) {
	if t.Command == "" {
		return nil, errors.New("command is required")
	}
	var buf bytes.Buffer
	buf.WriteString(`{"command":`)
	cb, _ := json.Marshal(t.Command)
	buf.Write(cb)

	buf.WriteString(`,"events":[`)
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON ensures canonical field ordering and omission of empty optional fields.
// Step events always carry seq, step and exitCode.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var artifacts []string
	if len(e.Artifacts) > 0 {
		artifacts = make([]string, len(e.Artifacts))
		copy(artifacts, e.Artifacts)
		sort.Strings(artifacts)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField(&buf, "kind", string(e.Kind), true)
	writeField(&buf, "subject", e.Subject, false)

	if isStepEvent(e.Kind) {
		fmt.Fprintf(&buf, `,"seq":%d`, e.Seq)
		writeField(&buf, "step", e.Step, false)
		fmt.Fprintf(&buf, `,"exitCode":%d`, e.ExitCode)
	}
	if e.Digest != "" {
		writeField(&buf, "digest", e.Digest, false)
	}
	if len(artifacts) > 0 {
		buf.WriteString(`,"artifacts":`)
		ab, _ := json.Marshal(artifacts)
		buf.Write(ab)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, name, value string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	buf.WriteByte('"')
	buf.WriteString(name)
	buf.WriteString(`":`)
	vb, _ := json.Marshal(value)
	buf.Write(vb)
}
