package types

// RunMeta carries run identity fields onto every log entry and report
// record emitted during one benchmark run.
type RunMeta struct {
	// RunID uniquely identifies this run (typically a uuid.New().String()).
	RunID string
	// Seed is the top-level seed the run was configured with, if any.
	Seed *int64
	// Attempt is the run attempt number, starting at 1.
	Attempt int
}
