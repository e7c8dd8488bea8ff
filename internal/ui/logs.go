package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tabula/internal/logging"
)

// LogOverlayLines is how many log entries the overlay reads.
const LogOverlayLines = 20

type logsMsg struct {
	entries []logging.Entry
	err     error
}

func logsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logging.Tail(path, LogOverlayLines)
		return logsMsg{entries: entries, err: err}
	}
}

// renderLogs renders the most recent log entries as an overlay.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	width := m.width - 8
	if width > 120 {
		width = 120
	}
	if width < 40 {
		width = 40
	}
	inner := width - 6

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Log"))
	if m.logFile != "" {
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(truncateMiddle(m.logFile, inner-4)))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	switch {
	case m.logErr != nil:
		b.WriteString(styles.DangerText.Render(m.logErr.Error()))
	case m.logFile == "":
		b.WriteString(styles.MutedText.Render("Logging to a file is disabled"))
	case len(m.logEntries) == 0:
		b.WriteString(styles.MutedText.Render("No log entries"))
	default:
		for i, e := range m.logEntries {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.renderLogEntry(e, inner))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("r reload · any key to close"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) renderLogEntry(e logging.Entry, width int) string {
	styles := m.theme.Styles()
	if e.Raw != "" {
		return styles.MutedText.Render(truncate(singleLine(e.Raw), width))
	}

	var levelStyle lipgloss.Style
	switch e.Level {
	case "error", "fatal", "panic":
		levelStyle = styles.DangerText
	case "warn":
		levelStyle = styles.WarningText
	case "debug", "trace":
		levelStyle = styles.FaintText
	default:
		levelStyle = styles.InfoText
	}

	stamp := "--:--:--"
	if !e.Time.IsZero() {
		stamp = e.Time.Local().Format("15:04:05")
	}
	text := e.Message
	if e.Component != "" {
		text = fmt.Sprintf("[%s] %s", e.Component, text)
	}
	if e.Err != "" {
		text += ": " + e.Err
	}

	prefix := styles.FaintText.Render(stamp) + " " + levelStyle.Render(fmt.Sprintf("%-5s", strings.ToUpper(e.Level))) + " "
	return prefix + styles.Text.Render(truncate(singleLine(text), width-lipgloss.Width(prefix)))
}
