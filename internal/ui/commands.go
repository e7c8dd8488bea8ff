package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/loader"
	"github.com/five82/tabula/internal/mutation"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/route"
)

const (
	opCreate = "create"
	opDelete = "delete"
	opSubmit = "save"
)

// Messages

type loadDoneMsg struct {
	outcome fetch.Outcome
}

type mutationDoneMsg struct {
	op  string
	id  int64
	rec resource.Record
	err error
}

type routeMsg route.Location

// Commands

// loadCmd runs the I/O half of a load. A nil pending load needs no command.
func loadCmd(p loader.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		return loadDoneMsg{outcome: p()}
	}
}

func createCmd(ctx context.Context, f *mutation.Facade, d resource.Draft) tea.Cmd {
	return func() tea.Msg {
		rec, err := f.Create(ctx, d)
		return mutationDoneMsg{op: opCreate, id: rec.ID, rec: rec, err: err}
	}
}

func removeCmd(ctx context.Context, f *mutation.Facade, id int64) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{op: opDelete, id: id, err: f.Remove(ctx, id)}
	}
}

func submitCmd(ctx context.Context, f *mutation.Facade) tea.Cmd {
	return func() tea.Msg {
		rec, err := f.Submit(ctx)
		return mutationDoneMsg{op: opSubmit, id: rec.ID, rec: rec, err: err}
	}
}
