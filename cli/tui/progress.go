package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var quitKey = key.NewBinding(
	key.WithKeys("q", "ctrl+c", "esc"),
	key.WithHelp("q", "quit"),
)

// progressModel is the Bubble Tea model behind the run command's --tui
// view. It renders the latest Progress snapshot it receives off updates; it
// never drives the benchmark loop itself (TUI is read-only, per SPEC_FULL.md
// Section A).
type progressModel struct {
	spinner  spinner.Model
	updates  <-chan Progress
	latest   Progress
	quitting bool
}

func newProgressModel(updates <-chan Progress) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return progressModel{spinner: s, updates: updates}
}

type progressMsg Progress
type progressClosedMsg struct{}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForProgress(m.updates))
}

func waitForProgress(updates <-chan Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return progressClosedMsg{}
		}
		return progressMsg(p)
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			m.quitting = true
			return m, tea.Quit
		}
	case progressMsg:
		m.latest = Progress(msg)
		if m.latest.Done {
			m.quitting = true
			return m, tea.Quit
		}
		return m, waitForProgress(m.updates)
	case progressClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m progressModel) View() string {
	p := m.latest
	body := fmt.Sprintf(
		"%s %s\n\n%s %d    %s %d\n%s %d    %s %d\n%s %.1f%%\n",
		m.spinner.View(), TitleStyle.Render("running benchmark"),
		LabelStyle.Render("environments evaluated:"), p.EnvironmentsEvaluated,
		LabelStyle.Render("environments failed:"), p.EnvironmentsFailed,
		LabelStyle.Render("batches emitted:"), p.BatchesEmitted,
		LabelStyle.Render("learner errors:"), p.LearnerErrors,
		LabelStyle.Render("cache hit rate:"), p.CacheHitRate()*100,
	)
	if m.quitting {
		return body
	}
	return body + HelpStyle.Render("press q to quit")
}
