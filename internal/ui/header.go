package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/route"
)

// renderHeader renders the status bar: logo, load status, collection URL and
// paging position.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	status, updated := m.currentStatus()

	parts := []string{
		bg.Render("tabula", styles.Logo),
		styles.StatusStyle(status).Render(status.String()),
	}

	if m.location.Name == route.Update {
		parts = append(parts,
			bg.Render("Record", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("#%d", m.detailSnap.ID), styles.Text))
	} else {
		parts = append(parts,
			bg.Render("Page", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", m.listSnap.Page.Index, m.listSnap.TotalPages), styles.Text))
	}

	if !compact && m.baseURL != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.baseURL, 48), styles.FaintText))
	}
	if !updated.IsZero() {
		parts = append(parts, bg.Render(updated.Format("15:04:05"), styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var bindings []key.Binding
	switch {
	case m.location.Name == route.Update || m.modal != nil:
		bindings = m.keys.FormHelp()
	case m.prompt != nil:
		bindings = m.keys.PromptHelp()
	default:
		bindings = m.keys.ShortHelp()
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(bindings)+2)
	if m.prompt != nil && m.location.Name == route.List {
		segments = append(segments,
			bg.Render(fmt.Sprintf("Go to page (1-%d):", max(m.listSnap.TotalPages, 1)), styles.MutedText)+
				bg.Render(" "+m.prompt.view()+"_", styles.AccentText))
	}
	for _, b := range bindings {
		h := b.Help()
		segments = append(segments,
			bg.Render(h.Key, styles.AccentText)+colon+bg.Render(h.Desc, styles.MutedText))
	}

	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		segments = append(segments, bg.Render(truncate(m.flash, 60), style))
	}

	return styles.Footer.Width(m.width).Render(bg.Join(segments, "  "))
}

func (m Model) currentStatus() (fetch.Status, time.Time) {
	if m.location.Name == route.Update {
		return m.detailSnap.Status, m.detailSnap.UpdatedAt
	}
	return m.listSnap.Status, m.listSnap.UpdatedAt
}
