package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hashclip/pkg/candidate"
	"hashclip/pkg/fetch"
)

// ItemState is the dashboard state of one candidate
type ItemState int

const (
	ItemPending ItemState = iota
	ItemDownloaded
	ItemSkipped
	ItemFailed
)

// Item is one candidate as shown on the dashboard
type Item struct {
	Candidate candidate.Candidate
	State     ItemState
	ViewCount int64
	Path      string
	Reason    string
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model of a fetch run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	query   string
	items   []*Item
	byID    map[string]*Item
	summary fetch.Summary

	startTime time.Time
	finished  bool
	runErr    error

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	// cancel aborts the run when the user quits early
	cancel func()

	mu sync.RWMutex
}

// NewModel creates a dashboard model; cancel may be nil
func NewModel(cancel func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return &Model{
		spinner:        s,
		progress:       p,
		byID:           make(map[string]*Item),
		startTime:      time.Now(),
		maxLogMessages: 50,
		cancel:         cancel,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetQuery records the search expression of the run
func (m *Model) SetQuery(q string) {
	m.mu.Lock()
	m.query = q
	m.mu.Unlock()

	m.AddLogMessage("INFO", "Searching: "+q)
}

// SetCandidates queues the extracted candidates as pending
func (m *Model) SetCandidates(candidates []candidate.Candidate) {
	m.mu.Lock()
	for _, c := range candidates {
		if _, ok := m.byID[c.ID]; ok {
			continue
		}
		item := &Item{Candidate: c}
		m.items = append(m.items, item)
		m.byID[c.ID] = item
	}
	m.summary.Total = len(m.items)
	m.mu.Unlock()

	m.AddLogMessage("INFO", fmt.Sprintf("%d candidates passed the likes filter", len(candidates)))
}

// RecordOutcome moves a candidate out of the pending state
func (m *Model) RecordOutcome(o fetch.Outcome) {
	m.mu.Lock()
	item, ok := m.byID[o.Candidate.ID]
	if !ok {
		item = &Item{Candidate: o.Candidate}
		m.items = append(m.items, item)
		m.byID[o.Candidate.ID] = item
		m.summary.Total = len(m.items)
	}
	if item.State != ItemPending {
		m.mu.Unlock()
		return
	}

	item.ViewCount = o.ViewCount
	item.Path = o.Path
	item.Reason = o.Reason

	var level, line string
	switch o.Status {
	case fetch.StatusDownloaded:
		item.State = ItemDownloaded
		m.summary.Downloaded++
		level, line = "SUCCESS", fmt.Sprintf("@%s downloaded (%d views)", o.Candidate.Author, o.ViewCount)
	case fetch.StatusSkippedLowViews:
		item.State = ItemSkipped
		m.summary.SkippedLowViews++
		level, line = "WARN", fmt.Sprintf("@%s skipped (%d views)", o.Candidate.Author, o.ViewCount)
	default:
		item.State = ItemFailed
		m.summary.Failed++
		level, line = "ERROR", fmt.Sprintf("@%s failed: %s", o.Candidate.Author, o.Reason)
	}
	m.mu.Unlock()

	m.AddLogMessage(level, line)
}

// Finish marks the run as over
func (m *Model) Finish(err error) {
	m.mu.Lock()
	m.finished = true
	m.runErr = err
	m.mu.Unlock()

	if err != nil {
		m.AddLogMessage("ERROR", "Run failed: "+err.Error())
	} else {
		m.AddLogMessage("SUCCESS", "Run finished")
	}
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = neonRed
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Logs returns a copy of the log panel entries
func (m *Model) Logs() []LogMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]LogMessage(nil), m.logMessages...)
}

// Summary returns the running tally
func (m *Model) Summary() fetch.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// Completed is the fraction of candidates with an outcome
func (m *Model) Completed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.summary.Total == 0 {
		return 0
	}
	done := m.summary.Downloaded + m.summary.SkippedLowViews + m.summary.Failed
	return float64(done) / float64(m.summary.Total)
}

// Pending returns the candidates still waiting for an outcome
func (m *Model) Pending() []*Item {
	return m.itemsIn(ItemPending)
}

// Finished returns the candidates that already have an outcome, in candidate order
func (m *Model) Finished() []*Item {
	return m.itemsIn(ItemDownloaded, ItemSkipped, ItemFailed)
}

func (m *Model) itemsIn(states ...ItemState) []*Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Item
	for _, item := range m.items {
		for _, s := range states {
			if item.State == s {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// IsFinished reports whether Finish was called
func (m *Model) IsFinished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finished
}
