package tui

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"hashclip/pkg/candidate"
	"hashclip/pkg/fetch"
)

// TUI is a live dashboard for one fetch run. Run blocks on the terminal while
// the fetch feeds it from another goroutine.
type TUI struct {
	program *tea.Program
	model   *Model

	mu      sync.Mutex
	started bool
}

// New creates a dashboard; quitting it early calls cancel
func New(cancel func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(cancel)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Run blocks until the run finishes or the user quits
func (t *TUI) Run() error {
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	_, err := t.program.Run()
	return err
}

// Model exposes the dashboard state
func (t *TUI) Model() *Model {
	return t.model
}

// Query forwards the search expression
func (t *TUI) Query(q string) {
	t.program.Send(QueryMsg{Query: q})
}

// Candidates forwards the likes-filtered candidates
func (t *TUI) Candidates(candidates []candidate.Candidate) {
	t.program.Send(CandidatesMsg{Candidates: candidates})
}

// Outcome forwards one outcome; it satisfies fetch.Reporter
func (t *TUI) Outcome(o fetch.Outcome) {
	t.program.Send(OutcomeMsg{Outcome: o})
}

// Finish ends the dashboard
func (t *TUI) Finish(err error) {
	t.program.Send(FinishedMsg{Err: err})
}

// Log adds a line to the dashboard log. Before Run the line goes straight
// to the model, since Send would block until the program starts.
func (t *TUI) Log(level, message string) {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		t.model.AddLogMessage(level, message)
		return
	}
	t.program.Send(LogMsg{Level: level, Message: message})
}

// LogHook mirrors warnings and errors of the run into the dashboard log.
// Events must not be logged from inside Update.
func (t *TUI) LogHook() zerolog.Hook {
	return zerolog.HookFunc(func(_ *zerolog.Event, level zerolog.Level, msg string) {
		if level < zerolog.WarnLevel || level == zerolog.NoLevel || msg == "" {
			return
		}
		t.Log(strings.ToUpper(level.String()), msg)
	})
}
