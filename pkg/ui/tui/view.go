package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const logo = `
╦ ╦╔═╗╔═╗╦ ╦╔═╗╦  ╦╔═╗
╠═╣╠═╣╚═╗╠═╣║  ║  ║╠═╝
╩ ╩╩ ╩╚═╝╩ ╩╚═╝╩═╝╩╩  `

// View renders the dashboard
func (m *Model) View() string {
	m.mu.RLock()
	width, height := m.width, m.height
	m.mu.RUnlock()

	if width == 0 || height == 0 {
		return "Initializing..."
	}

	column := (width - 4) / 2

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(column),
		m.renderQueuePanel(column),
	)
	right := m.renderLogsPanel(column, height)

	sections := []string{
		logoStyle.Width(width).Render(logo),
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help, q to quit"))
	}

	return baseStyle.Width(width).Height(height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderStatsPanel(width int) string {
	summary := m.Summary()
	completed := m.Completed()

	m.mu.RLock()
	query := m.query
	elapsed := time.Since(m.startTime)
	finished := m.finished
	m.mu.RUnlock()

	title := titleStyle.Render(" RUN ")

	status := m.spinner.View() + " running"
	if finished {
		status = successStyle.Render("✓ finished")
	}
	if query == "" {
		query = "-"
	}

	bar := m.progress
	bar.Width = max(width-8, 10)

	stats := []string{
		label("Status:", status),
		label("Query:", statsValueStyle.Render(query)),
		label("Elapsed:", statsValueStyle.Render(formatDuration(elapsed))),
		label("Posts found:", statsValueStyle.Render(fmt.Sprintf("%d", summary.Total))),
		label("Downloaded:", successStyle.Render(fmt.Sprintf("%d", summary.Downloaded))),
		label("Skipped (views):", warningStyle.Render(fmt.Sprintf("%d", summary.SkippedLowViews))),
		label("Failed:", errorStyle.Render(fmt.Sprintf("%d", summary.Failed))),
		bar.ViewAs(completed),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

func (m *Model) renderQueuePanel(width int) string {
	title := titleStyle.Render(" QUEUE ")

	pending := m.Pending()
	done := m.Finished()

	var items []string
	if n := len(pending); n > 0 {
		items = append(items, warningStyle.Render(fmt.Sprintf("⏳ %d pending", n)))
		for i := 0; i < 3 && i < n; i++ {
			items = append(items, queueItemStyle.Render("• @"+pending[i].Candidate.Author+" "+pending[i].Candidate.ID))
		}
		if n > 3 {
			items = append(items, lipgloss.NewStyle().Foreground(dimWhite).Render(fmt.Sprintf("  ... and %d more", n-3)))
		}
	}

	if n := len(done); n > 0 {
		items = append(items, "", successStyle.Render(fmt.Sprintf("✓ %d processed", n)))
		for _, item := range done[max(n-5, 0):] {
			items = append(items, queueItemDoneStyle.Render(StateStyle(item.State).Render(stateIcon(item.State))+" @"+item.Candidate.Author+" "+item.Candidate.ID))
		}
	}

	if len(items) == 0 {
		items = append(items, lipgloss.NewStyle().Foreground(dimWhite).Render("Waiting for search results"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...)),
	)
}

func (m *Model) renderLogsPanel(width, height int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" LOG ")

	start := max(len(m.logMessages)-12, 0)
	maxMsgLen := max(width-25, 10)

	var logs []string
	for _, entry := range m.logMessages[start:] {
		msg := entry.Message
		if r := []rune(msg); len(r) > maxMsgLen {
			msg = string(r[:maxMsgLen-3]) + "..."
		}
		logs = append(logs, fmt.Sprintf("%s %s %s",
			logTimestampStyle.Render(entry.Time.Format("15:04:05")),
			lipgloss.NewStyle().Foreground(entry.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", entry.Level)),
			logMessageStyle.Render(msg),
		))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	return panelStyle.Width(width).Height(max(height-15, 5)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp(width int) string {
	help := `
  Keys:
    q/ctrl+c - Cancel the run and quit
    ctrl+l   - Clear the log
    ?        - Toggle this help

  Icons:
    ` + successStyle.Render("✓") + `        - Downloaded
    ` + warningStyle.Render("↓") + `        - Skipped, too few views
    ` + errorStyle.Render("✗") + `        - Failed
`
	return panelStyle.Width(width).Render(help)
}

func label(name, value string) string {
	return statsLabelStyle.Render(name) + " " + value
}

func stateIcon(s ItemState) string {
	switch s {
	case ItemDownloaded:
		return "✓"
	case ItemSkipped:
		return "↓"
	case ItemFailed:
		return "✗"
	default:
		return "•"
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
