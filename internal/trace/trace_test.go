package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalTraceStability_ByteForByte(t *testing.T) {
	trace1 := ExecutionTrace{
		Command: "compile",
		Events: []Event{
			{Kind: EventMapCompiled, Subject: "level1", Artifacts: []string{"level1.bsp"}},
			{Kind: EventStepExecuted, Subject: "level1", Seq: 1, Step: "light"},
			{Kind: EventStepExecuted, Subject: "level1", Seq: 0, Step: "qbsp"},
		},
	}

	trace2 := ExecutionTrace{
		Command: "compile",
		Events: []Event{
			{Kind: EventStepExecuted, Subject: "level1", Seq: 0, Step: "qbsp"},
			{Kind: EventStepExecuted, Subject: "level1", Seq: 1, Step: "light"},
			{Kind: EventMapCompiled, Subject: "level1", Artifacts: []string{"level1.bsp"}},
		},
	}

	b1, err := trace1.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json (1): %v", err)
	}
	b2, err := trace2.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json (2): %v", err)
	}

	if !bytes.Equal(b1, b2) {
		t.Fatalf("expected identical bytes\n1=%s\n2=%s", string(b1), string(b2))
	}
}

func TestCanonicalOrdering_StepsFollowPipelineOrder(t *testing.T) {
	tr := ExecutionTrace{
		Command: "compile",
		Events: []Event{
			{Kind: EventMapFailed, Subject: "m"},
			{Kind: EventStepFailed, Subject: "m", Seq: 1, Step: "light", ExitCode: 2},
			{Kind: EventStepExecuted, Subject: "m", Seq: 0, Step: "qbsp"},
		},
	}
	b, err := tr.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	expected := `{"command":"compile","events":[` +
		`{"kind":"StepExecuted","subject":"m","seq":0,"step":"qbsp","exitCode":0},` +
		`{"kind":"StepFailed","subject":"m","seq":1,"step":"light","exitCode":2},` +
		`{"kind":"MapFailed","subject":"m"}]}`
	if string(b) != expected {
		t.Fatalf("unexpected canonical bytes\nexpected=%s\nactual  =%s", expected, string(b))
	}
}

func TestCanonicalOrdering_SortsBySubject(t *testing.T) {
	tr := ExecutionTrace{
		Command: "bundle",
		Events: []Event{
			{Kind: EventAssetBundled, Subject: "ASSET_PLAYER", Digest: "bb"},
			{Kind: EventAssetBundled, Subject: "ASSET_FONT", Digest: "aa"},
		},
	}
	b, err := tr.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	expected := `{"command":"bundle","events":[` +
		`{"kind":"AssetBundled","subject":"ASSET_FONT","digest":"aa"},` +
		`{"kind":"AssetBundled","subject":"ASSET_PLAYER","digest":"bb"}]}`
	if string(b) != expected {
		t.Fatalf("unexpected canonical bytes\nexpected=%s\nactual  =%s", expected, string(b))
	}
}

func TestHash_IgnoresInsertionOrder(t *testing.T) {
	tr1 := ExecutionTrace{
		Command: "bundle",
		Events: []Event{
			{Kind: EventAssetBundled, Subject: "ASSET_B"},
			{Kind: EventAssetBundled, Subject: "ASSET_A"},
		},
	}
	tr2 := ExecutionTrace{
		Command: "bundle",
		Events: []Event{
			{Kind: EventAssetBundled, Subject: "ASSET_A"},
			{Kind: EventAssetBundled, Subject: "ASSET_B"},
		},
	}

	h1, err := tr1.Hash()
	if err != nil {
		t.Fatalf("hash (1): %v", err)
	}
	h2, err := tr2.Hash()
	if err != nil {
		t.Fatalf("hash (2): %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected equal hash, got %q != %q", h1, h2)
	}
}

func TestEventArtifacts_CanonicalizedAndOmittedWhenEmpty(t *testing.T) {
	tr := ExecutionTrace{
		Command: "compile",
		Events: []Event{{
			Kind:      EventMapCompiled,
			Subject:   "a",
			Artifacts: []string{"z.bsp", "a.bsp"},
		}},
	}
	b, err := tr.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	expected := `{"command":"compile","events":[{"kind":"MapCompiled","subject":"a","artifacts":["a.bsp","z.bsp"]}]}`
	if string(b) != expected {
		t.Fatalf("unexpected canonical bytes\nexpected=%s\nactual  =%s", expected, string(b))
	}

	tr2 := ExecutionTrace{Command: "compile", Events: []Event{{Kind: EventMapFailed, Subject: "a", Artifacts: []string{}}}}
	b2, err := tr2.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	expected2 := `{"command":"compile","events":[{"kind":"MapFailed","subject":"a"}]}`
	if string(b2) != expected2 {
		t.Fatalf("unexpected canonical bytes\nexpected=%s\nactual  =%s", expected2, string(b2))
	}
}

func TestValidate_RejectsIncompleteEvents(t *testing.T) {
	cases := []ExecutionTrace{
		{Command: "", Events: nil},
		{Command: "bundle", Events: []Event{{Subject: "x"}}},
		{Command: "bundle", Events: []Event{{Kind: EventAssetBundled}}},
		{Command: "compile", Events: []Event{{Kind: EventStepExecuted, Subject: "m"}}},
	}
	for i, tr := range cases {
		if _, err := tr.CanonicalJSON(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

type panickingSink struct{}

func (panickingSink) Record(Event) { panic("boom") }

func TestSafeRecord_SwallowsPanics(t *testing.T) {
	SafeRecord(panickingSink{}, Event{Kind: EventAssetBundled, Subject: "x"})
	SafeRecord(nil, Event{Kind: EventAssetBundled, Subject: "x"})
}

func TestRecorder_WriteFile(t *testing.T) {
	rec := NewRecorder()
	rec.Record(Event{Kind: EventAssetBundled, Subject: "ASSET_B"})
	rec.Record(Event{Kind: EventAssetBundled, Subject: "ASSET_A"})

	path := filepath.Join(t.TempDir(), "trace.json")
	if err := WriteFile(path, rec.Trace("bundle")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	expected := `{"command":"bundle","events":[{"kind":"AssetBundled","subject":"ASSET_A"},{"kind":"AssetBundled","subject":"ASSET_B"}]}` + "\n"
	if string(b) != expected {
		t.Fatalf("unexpected trace file\nexpected=%s\nactual  =%s", expected, string(b))
	}
}
