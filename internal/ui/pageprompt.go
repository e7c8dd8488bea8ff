package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const pagePromptDigits = 6

// pagePrompt collects a page number typed digit by digit on the list view.
type pagePrompt struct {
	input textinput.Model
}

func newPagePrompt(seed string) *pagePrompt {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "page"
	input.CharLimit = pagePromptDigits
	input.Width = pagePromptDigits
	input.Cursor.SetMode(cursor.CursorStatic)
	input.Focus()
	input.SetValue(seed)
	input.CursorEnd()
	return &pagePrompt{input: input}
}

// update forwards editing keys to the input. Anything but digits is dropped.
func (p *pagePrompt) update(msg tea.KeyMsg) {
	if msg.Type == tea.KeyRunes && !isDigits(msg.Runes) {
		return
	}
	p.input, _ = p.input.Update(msg)
}

// page returns the typed page number, or false when nothing usable was typed.
func (p *pagePrompt) page() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(p.input.Value()))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *pagePrompt) view() string {
	return p.input.Value()
}

func isDigits(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
