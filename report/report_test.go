package report

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/arrowbench/banditbench/metrics"
	"github.com/arrowbench/banditbench/types"
)

func newTestResults() []types.Result {
	params := []types.Param{{Key: "source", Value: "openml"}}
	return []types.Result{
		{
			LearnerName:        "0",
			EnvIndex:           0,
			BatchIndex:          0,
			InteractionCount:    5,
			MedianFeatureCount:  2,
			MedianActionCount:   2,
			Stats:               types.Stats{N: 3, Mean: 1, Variance: 1, Min: 0, Max: 2},
			Params:              params,
		},
		{
			LearnerName:        "0",
			EnvIndex:           0,
			BatchIndex:          1,
			InteractionCount:    5,
			MedianFeatureCount:  2,
			MedianActionCount:   2,
			Stats:               types.Stats{N: 2, Mean: 0.5, Variance: 0.5, Min: 0, Max: 1},
			Params:              params,
		},
	}
}

func TestBuildAssemblesRunFromResults(t *testing.T) {
	seed := int64(7)
	meta := types.RunMeta{RunID: "run-001", Seed: &seed, Attempt: 1}
	snap := metrics.Snapshot{EnvironmentsEvaluated: 1, BatchesEmitted: 2}
	results := newTestResults()

	run := Build(meta, snap, results)
	if run.RunID != "run-001" || run.Attempt != 1 {
		t.Fatalf("unexpected run identity: %+v", run)
	}
	if run.Seed == nil || *run.Seed != 7 {
		t.Fatalf("seed not carried through: %+v", run.Seed)
	}
	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if run.Metrics.BatchesEmitted != 2 {
		t.Fatalf("metrics not carried through: %+v", run.Metrics)
	}
}

func TestNewRunMetaGeneratesDistinctRunIDs(t *testing.T) {
	m1 := NewRunMeta(nil, 1)
	m2 := NewRunMeta(nil, 1)
	if m1.RunID == "" || m2.RunID == "" {
		t.Fatal("expected non-empty run IDs")
	}
	if m1.RunID == m2.RunID {
		t.Fatal("expected distinct run IDs across calls")
	}
}

func TestWriteJSONToBufferRoundTrips(t *testing.T) {
	meta := types.RunMeta{RunID: "run-002", Attempt: 1}
	run := Build(meta, metrics.Snapshot{}, newTestResults())

	var buf bytes.Buffer
	if err := writeJSONTo(run, &buf); err != nil {
		t.Fatalf("writeJSONTo failed: %v", err)
	}

	var decoded Run
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if decoded.RunID != "run-002" || len(decoded.Results) != 2 {
		t.Fatalf("round-trip mismatch: %+v", decoded)
	}
}

func TestWriteJSONRejectsEmptyPath(t *testing.T) {
	run := Build(types.RunMeta{RunID: "run-003"}, metrics.Snapshot{}, nil)
	if err := WriteJSON(run, ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestEncodeDecodeResultsRoundTrip(t *testing.T) {
	results := newTestResults()

	var buf bytes.Buffer
	if err := EncodeResults(&buf, results); err != nil {
		t.Fatalf("EncodeResults failed: %v", err)
	}

	decoded, err := DecodeResults(&buf)
	if err != nil {
		t.Fatalf("DecodeResults failed: %v", err)
	}
	if len(decoded) != len(results) {
		t.Fatalf("got %d decoded results, want %d", len(decoded), len(results))
	}
	for i := range results {
		if !reflect.DeepEqual(decoded[i], results[i]) {
			t.Fatalf("result %d mismatch: got %+v, want %+v", i, decoded[i], results[i])
		}
	}
}

func TestDecodeResultsEmptyStreamReturnsNil(t *testing.T) {
	decoded, err := DecodeResults(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected no results, got %d", len(decoded))
	}
}
