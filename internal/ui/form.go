package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/state"
)

const formBodyHeight = 6

// recordForm holds the title and body inputs shared by the update view and
// the create dialog.
type recordForm struct {
	title  textinput.Model
	body   textarea.Model
	focus  state.Field
	filled bool
}

func newRecordForm(width int) recordForm {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Prompt = ""
	title.Cursor.SetMode(cursor.CursorStatic)

	body := textarea.New()
	body.Placeholder = "Body"
	body.ShowLineNumbers = false
	body.SetHeight(formBodyHeight)
	body.Cursor.SetMode(cursor.CursorStatic)

	f := recordForm{title: title, body: body, focus: state.FieldTitle}
	f.resize(width)
	f.applyFocus()
	return f
}

func (f *recordForm) resize(width int) {
	w := max(width-8, 20)
	f.title.Width = w
	f.body.SetWidth(w)
}

// fill loads rec into the inputs. Until then the form ignores typing.
func (f *recordForm) fill(rec resource.Record) {
	f.title.SetValue(rec.Title)
	f.body.SetValue(rec.Body)
	f.filled = true
	f.applyFocus()
}

func (f *recordForm) toggleFocus() {
	if f.focus == state.FieldTitle {
		f.focus = state.FieldBody
	} else {
		f.focus = state.FieldTitle
	}
	f.applyFocus()
}

func (f *recordForm) applyFocus() {
	if f.focus == state.FieldTitle {
		f.title.Focus()
		f.body.Blur()
		return
	}
	f.body.Focus()
	f.title.Blur()
}

// update feeds msg to the focused input and reports the field's new value.
func (f *recordForm) update(msg tea.Msg) (state.Field, string, bool, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == state.FieldBody {
		before := f.body.Value()
		f.body, cmd = f.body.Update(msg)
		return state.FieldBody, f.body.Value(), f.body.Value() != before, cmd
	}
	before := f.title.Value()
	f.title, cmd = f.title.Update(msg)
	return state.FieldTitle, f.title.Value(), f.title.Value() != before, cmd
}

func (f recordForm) draft() resource.Draft {
	return resource.NewDraft(f.title.Value(), f.body.Value())
}

func (f recordForm) view(theme Theme) string {
	styles := theme.Styles()
	label := func(name string, field state.Field) string {
		if f.focus == field {
			return styles.AccentText.Bold(true).Render(name)
		}
		return styles.MutedText.Render(name)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		label("Title", state.FieldTitle),
		f.title.View(),
		"",
		label("Body", state.FieldBody),
		f.body.View(),
	)
}

// renderRecord renders the update view.
func (m Model) renderRecord() string {
	styles := m.theme.Styles()
	snap := m.detailSnap

	lines := []string{styles.Text.Bold(true).Render(fmt.Sprintf("Update Item #%d", snap.ID)), ""}

	if snap.Status == fetch.StatusError && snap.Err != nil {
		lines = append(lines, m.renderErrorBanner(snap.Err), "")
	}

	switch {
	case snap.Status == fetch.StatusLoading || (!snap.HasRecord && snap.Status != fetch.StatusError):
		lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render("Loading…"))
	case !snap.HasRecord:
		lines = append(lines, styles.MutedText.Render("Press esc to return to the list"))
	default:
		lines = append(lines, m.form.view(m.theme), "")
		switch {
		case snap.Submitting:
			lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render("Saving…"))
		case snap.Dirty:
			lines = append(lines, styles.WarningText.Render("● modified"))
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

// createModal is the dialog for a new record. It submits through the
// mutation façade while the list stays mounted behind it.
type createModal struct {
	form   recordForm
	submit func(resource.Draft) tea.Cmd
}

var _ Modal = (*createModal)(nil)

func newCreateModal(width int, submit func(resource.Draft) tea.Cmd) *createModal {
	f := newRecordForm(min(max(width, 40), 72))
	f.filled = true
	return &createModal{form: f, submit: submit}
}

func (c *createModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Back):
		return c, nil, true
	case key.Matches(km, keys.Submit):
		return c, c.submit(c.form.draft()), true
	case key.Matches(km, keys.NextField), key.Matches(km, keys.PrevField):
		c.form.toggleFocus()
		return c, nil, false
	}
	_, _, _, cmd := c.form.update(km)
	return c, cmd, false
}

func (c *createModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render("New Record"),
		styles.FaintText.Render(strings.Repeat("─", 30)),
		"",
		c.form.view(theme),
		"",
		styles.AccentText.Render("ctrl+s")+styles.MutedText.Render(" create  ")+
			styles.AccentText.Render("esc")+styles.MutedText.Render(" cancel"),
	)

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal.Render(content))
}
