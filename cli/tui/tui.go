package tui

import tea "github.com/charmbracelet/bubbletea"

// Progress is the snapshot the run command feeds into the TUI; it sends one,
// with Done set, once the run has finished. It mirrors metrics.Snapshot's counters plus the derived cache hit
// rate, so the TUI never needs data the non-TUI JSON/table path lacks.
type Progress struct {
	EnvironmentsEvaluated int64
	EnvironmentsFailed    int64
	BatchesEmitted        int64
	LearnerErrors         int64
	CacheHits             int64
	CacheMisses           int64
	Done                  bool
}

// CacheHitRate returns the fraction of cache lookups that hit, or 0 if
// there have been no lookups yet.
func (p Progress) CacheHitRate() float64 {
	total := p.CacheHits + p.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(p.CacheHits) / float64(total)
}

// Run starts the run-progress TUI, reading Progress snapshots off updates
// until the channel closes or the model reports Done.
func Run(updates <-chan Progress) error {
	p := tea.NewProgram(newProgressModel(updates))
	_, err := p.Run()
	return err
}
