package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/paging"
)

// syncTable rebuilds the table rows from the list snapshot.
func (m *Model) syncTable() {
	inner := max(m.width-4, 40)
	showBody := m.showBody && m.width >= LayoutBodyWidth

	titleWidth := inner - IDColumnWidth
	bodyWidth := 0
	if showBody {
		titleWidth = (inner - IDColumnWidth) * 2 / 5
		bodyWidth = inner - IDColumnWidth - titleWidth
	}

	cols := []table.Column{
		{Title: "ID", Width: IDColumnWidth - 2},
		{Title: "Title", Width: titleWidth - 2},
	}
	if showBody {
		cols = append(cols, table.Column{Title: "Body", Width: bodyWidth - 2})
	}

	rows := make([]table.Row, 0, len(m.listSnap.Items))
	for _, it := range m.listSnap.Items {
		row := table.Row{
			strconv.FormatInt(it.ID, 10),
			truncate(singleLine(it.Title), titleWidth-2),
		}
		if showBody {
			row = append(row, truncate(singleLine(it.Body), bodyWidth-2))
		}
		rows = append(rows, row)
	}

	// Columns and rows must agree in length before the table renders, and
	// clearing the rows moves the cursor.
	cursor := m.table.Cursor()
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetWidth(inner)
	m.table.SetCursor(min(cursor, max(len(rows)-1, 0)))
}

// renderList renders the table view: records, loading line, error banner and
// the page strip.
func (m Model) renderList() string {
	styles := m.theme.Styles()
	snap := m.listSnap

	var body string
	if len(snap.Items) == 0 && !snap.Loading() {
		body = styles.MutedText.Render("No records")
	} else {
		body = m.table.View()
	}

	lines := []string{m.renderTitledBox("Records", body, m.width, m.table.Height()+4)}
	if snap.Loading() {
		lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render("Loading…"))
	}
	if snap.Status == fetch.StatusError && snap.Err != nil {
		lines = append(lines, m.renderErrorBanner(snap.Err))
	}
	lines = append(lines, m.renderPageStrip())

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderPageStrip renders "‹ Prev  1 [2] 3  Next ›" with the current page
// highlighted and the bound buttons dimmed.
func (m Model) renderPageStrip() string {
	styles := m.theme.Styles()
	cur := m.listSnap.Page.Index
	total := m.listSnap.TotalPages

	current := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(true)

	prev := styles.Text.Render("‹ Prev")
	if cur <= 1 {
		prev = styles.FaintText.Render("‹ Prev")
	}
	next := styles.Text.Render("Next ›")
	if cur >= total {
		next = styles.FaintText.Render("Next ›")
	}

	window := paging.Window(cur, total, PageStripWidth)
	buttons := make([]string, 0, len(window)+2)
	if len(window) > 0 && window[0] > 1 {
		buttons = append(buttons, styles.FaintText.Render("…"))
	}
	for _, n := range window {
		label := fmt.Sprintf(" %d ", n)
		if n == cur {
			buttons = append(buttons, current.Render(label))
		} else {
			buttons = append(buttons, styles.MutedText.Render(label))
		}
	}
	if len(window) > 0 && window[len(window)-1] < total {
		buttons = append(buttons, styles.FaintText.Render("…"))
	}

	strip := prev + "  " + strings.Join(buttons, "") + "  " + next
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strip)
}

func (m Model) renderErrorBanner(err error) string {
	styles := m.theme.Styles()
	return styles.DangerText.Render("Error: ") + styles.Text.Render(truncate(err.Error(), max(m.width-8, 20)))
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int) string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Border))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, len(title)+4)
	leftPad := (innerWidth - len(title) - 2) / 2
	rightPad := innerWidth - len(title) - 2 - leftPad

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(bg.Color())

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, len(contentLines))

	padded := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		padded = append(padded,
			bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(padded, "\n") + "\n" + bottomBorder
}
