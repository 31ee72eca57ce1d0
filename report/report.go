// Package report assembles a benchmark run's Result stream into a
// serializable report: msgpack for the on-disk/wire record stream, JSON for
// the human-facing summary written by --report.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/arrowbench/banditbench/metrics"
	"github.com/arrowbench/banditbench/types"
)

// Run is the structured report for one benchmark run: run identity, the
// metrics snapshot, and every emitted Result. No ordering is promised
// across Results (§5); callers that need one should sort by
// (EnvIndex, LearnerName, BatchIndex).
type Run struct {
	RunID   string          `json:"run_id"`
	Seed    *int64          `json:"seed,omitempty"`
	Attempt int             `json:"attempt"`
	Metrics metrics.Snapshot `json:"metrics"`
	Results []types.Result  `json:"results"`
}

// NewRunMeta mints a fresh RunMeta with a generated run ID, the way the
// teacher tags every frame in a run with a run ID at the top of the run.
func NewRunMeta(seed *int64, attempt int) types.RunMeta {
	return types.RunMeta{
		RunID:   uuid.New().String(),
		Seed:    seed,
		Attempt: attempt,
	}
}

// Build composes a Run from run metadata, a metrics snapshot, and the
// Result stream produced by bench.Loop or worker.Run.
func Build(meta types.RunMeta, snap metrics.Snapshot, results []types.Result) *Run {
	return &Run{
		RunID:   meta.RunID,
		Seed:    meta.Seed,
		Attempt: meta.Attempt,
		Metrics: snap,
		Results: results,
	}
}

// WriteJSON writes the report as indented JSON to path. path "-" writes to
// stderr, matching the teacher's --report convention.
func WriteJSON(run *Run, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		if _, err := os.Stderr.Write(data); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeJSONTo writes report JSON to any writer (for testing).
func writeJSONTo(run *Run, w io.Writer) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// EncodeResults msgpack-encodes a Result stream for wire transport or
// on-disk storage, one record at a time. Each record is length-prefixed by
// msgpack's own framing when decoded with a matching Decoder, so callers
// can stream without buffering the whole slice.
func EncodeResults(w io.Writer, results []types.Result) error {
	enc := msgpack.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(&r); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	return nil
}

// DecodeResults reads a msgpack-encoded Result stream until EOF.
func DecodeResults(r io.Reader) ([]types.Result, error) {
	dec := msgpack.NewDecoder(r)
	var results []types.Result
	for {
		var res types.Result
		if err := dec.Decode(&res); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return results, fmt.Errorf("decode result: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}
