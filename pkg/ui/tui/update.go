package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"hashclip/pkg/candidate"
	"hashclip/pkg/fetch"
)

// QueryMsg carries the search expression of the run
type QueryMsg struct {
	Query string
}

// CandidatesMsg carries the output of the likes filter
type CandidatesMsg struct {
	Candidates []candidate.Candidate
}

// OutcomeMsg carries one per-candidate outcome
type OutcomeMsg struct {
	Outcome fetch.Outcome
}

// FinishedMsg ends the run; Err is the fatal run error, if any
type FinishedMsg struct {
	Err error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mu.Unlock()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case QueryMsg:
		m.SetQuery(msg.Query)
		return m, nil

	case CandidatesMsg:
		m.SetCandidates(msg.Candidates)
		return m, nil

	case OutcomeMsg:
		m.RecordOutcome(msg.Outcome)
		return m, nil

	case FinishedMsg:
		m.Finish(msg.Err)
		return m, tea.Quit

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.cancel != nil && !m.IsFinished() {
			m.AddLogMessage("WARN", "Run cancelled by user")
			m.cancel()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.mu.Lock()
		m.logMessages = nil
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}
