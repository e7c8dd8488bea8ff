package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/tabula/internal/loader"
	"github.com/five82/tabula/internal/logging"
	"github.com/five82/tabula/internal/mutation"
	"github.com/five82/tabula/internal/paging"
	"github.com/five82/tabula/internal/prefs"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/route"
	"github.com/five82/tabula/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   resource.Backend
	BaseURL   string
	PageSize  int
	ThemeName string
	ShowBody  bool
	PrefsPath string
	LogFile   string
	Logger    zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx       context.Context
	list      *loader.ListLoader
	record    *loader.RecordLoader
	facade    *mutation.Facade
	router    *route.Router
	logger    zerolog.Logger
	prefsPath string
	logFile   string
	baseURL   string
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	showLogs bool
	showBody bool
	flash    string
	flashErr bool

	// Route state
	location route.Location

	// Data state
	listSnap   state.Collection
	detailSnap state.Detail
	logEntries []logging.Entry
	logErr     error

	// Widgets
	table   table.Model
	spinner spinner.Model
	form    recordForm
	modal   Modal
	prompt  *pagePrompt
}

// New creates a new Bubble Tea model positioned on the list view.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = paging.DefaultSize
	}

	logger := opts.Logger.With().Str("component", "ui").Logger()
	router := route.NewRouter()
	list := loader.NewListLoader(ctx, opts.Backend, pageSize, opts.Logger)
	record := loader.NewRecordLoader(ctx, opts.Backend, opts.Logger)

	m := Model{
		ctx:       ctx,
		list:      list,
		record:    record,
		facade:    mutation.New(opts.Backend, list, record, router, opts.Logger),
		router:    router,
		logger:    logger,
		prefsPath: prefsPath,
		logFile:   opts.LogFile,
		baseURL:   opts.BaseURL,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		showBody:  opts.ShowBody,
		location:  router.Current(),
		table:     table.New(table.WithFocused(true), table.WithHeight(pageSize+1)),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		form:      newRecordForm(0),
	}
	m.applyTheme()
	m.refresh()
	return m
}

// Init implements tea.Model. It mounts the list view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCmd(m.list.Mount()))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		cmd = m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.form.resize(m.width)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case loadDoneMsg:
		m.logger.Debug().Str("outcome", msg.outcome.String()).Msg("load settled")

	case mutationDoneMsg:
		cmd = m.handleMutation(msg)

	case routeMsg:
		cmd = m.syncRoute()

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
	}

	m.refresh()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showHelp {
		m.showHelp = false
		return nil
	}
	if m.showLogs {
		if key.Matches(msg, m.keys.Reload) {
			return logsCmd(m.logFile)
		}
		m.showLogs = false
		return nil
	}
	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return cmd
	}

	if m.location.Name == route.Update {
		return m.handleFormKey(msg)
	}
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}
	return m.handleListKey(msg)
}

// handleListKey processes keyboard input for the list view.
func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.ShowLogs):
		m.showLogs = true
		return logsCmd(m.logFile)

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.savePrefs()

	case key.Matches(msg, m.keys.ToggleBody):
		m.showBody = !m.showBody
		m.savePrefs()

	case key.Matches(msg, m.keys.PrevPage):
		return loadCmd(m.list.Previous())

	case key.Matches(msg, m.keys.NextPage):
		return loadCmd(m.list.Next())

	case key.Matches(msg, m.keys.GoToPage):
		seed := ""
		if isDigits(msg.Runes) {
			seed = string(msg.Runes)
		}
		m.prompt = newPagePrompt(seed)
		m.flash = ""

	case key.Matches(msg, m.keys.Reload):
		return loadCmd(m.list.Reload())

	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp(1)

	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown(1)

	case key.Matches(msg, m.keys.Edit):
		if rec, ok := m.selectedRecord(); ok {
			return m.navigate(m.facade.EditPath(rec.ID))
		}

	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.selectedRecord(); ok {
			return removeCmd(m.ctx, m.facade, rec.ID)
		}

	case key.Matches(msg, m.keys.Create):
		ctx, facade := m.ctx, m.facade
		m.modal = newCreateModal(m.width, func(d resource.Draft) tea.Cmd {
			return createCmd(ctx, facade, d)
		})
	}
	return nil
}

// handlePromptKey processes keyboard input while the page prompt is open.
func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.prompt = nil

	case key.Matches(msg, m.keys.Confirm):
		target, ok := m.prompt.page()
		m.prompt = nil
		if !ok {
			return nil
		}
		pending, err := m.list.GoTo(target)
		if err != nil {
			m.setFlash(fmt.Sprintf("Page %d is out of range (1-%d)", target, m.listSnap.TotalPages), true)
			return nil
		}
		return loadCmd(pending)

	default:
		m.prompt.update(msg)
	}
	return nil
}

// handleFormKey processes keyboard input for the update view.
func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.navigate(route.ListPath)

	case key.Matches(msg, m.keys.Submit):
		if !m.detailSnap.Editable() {
			m.setFlash("Nothing to save yet", true)
			return nil
		}
		return submitCmd(m.record.Context(), m.facade)

	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		m.form.toggleFocus()
		return nil
	}

	if !m.detailSnap.Editable() || !m.form.filled {
		return nil
	}
	field, value, changed, cmd := m.form.update(msg)
	if changed {
		m.record.Edit(field, value)
	}
	return cmd
}

func (m *Model) handleMutation(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		if errors.Is(msg.err, mutation.ErrNothingToSubmit) {
			m.setFlash("Nothing to save yet", true)
			return nil
		}
		if errors.Is(msg.err, mutation.ErrViewGone) {
			m.logger.Debug().Err(msg.err).Msg("dropping save result")
			return nil
		}
		m.setFlash(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		return nil
	}

	switch msg.op {
	case opCreate:
		m.setFlash(fmt.Sprintf("Created #%d", msg.rec.ID), false)
		m.table.GotoTop()
	case opDelete:
		m.setFlash(fmt.Sprintf("Deleted #%d", msg.id), false)
	case opSubmit:
		m.setFlash(fmt.Sprintf("Saved #%d", msg.rec.ID), false)
		return m.syncRoute()
	}
	return nil
}

// navigate moves the router and mounts the view for the new location.
func (m *Model) navigate(path string) tea.Cmd {
	if err := m.router.Navigate(path); err != nil {
		m.setFlash(err.Error(), true)
		return nil
	}
	return m.syncRoute()
}

// syncRoute mounts the view for the router's location and unmounts the one
// it replaces. Calling it again for the same location does nothing.
func (m *Model) syncRoute() tea.Cmd {
	loc := m.router.Current()
	if loc.Path == m.location.Path {
		return nil
	}
	prev := m.location
	m.location = loc

	switch prev.Name {
	case route.List:
		m.list.Unmount()
	case route.Update:
		m.record.Unmount()
	}

	switch loc.Name {
	case route.Update:
		id, err := loc.ID()
		if err != nil {
			m.setFlash(err.Error(), true)
			return m.navigate(route.ListPath)
		}
		m.form = newRecordForm(m.width)
		return loadCmd(m.record.Mount(id))
	default:
		m.modal = nil
		m.prompt = nil
		m.table.SetCursor(0)
		return loadCmd(m.list.Mount())
	}
}

// refresh copies the latest store snapshots into the model.
func (m *Model) refresh() {
	m.listSnap = m.list.Store().Snapshot()
	m.detailSnap = m.record.Store().Snapshot()
	m.syncTable()

	if m.location.Name == route.Update && !m.form.filled && m.detailSnap.HasRecord {
		m.form.fill(m.detailSnap.Record)
	}
}

func (m *Model) selectedRecord() (resource.Record, bool) {
	if len(m.listSnap.Items) == 0 {
		return resource.Record{}, false
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listSnap.Items) {
		return resource.Record{}, false
	}
	return m.listSnap.Items[idx], true
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, ShowBody: m.showBody}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn().Err(err).Msg("save prefs")
	}
}

func (m *Model) applyTheme() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	m.table.SetStyles(s)
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
}

// renderMain renders header, command bar and the active view.
func (m Model) renderMain() string {
	content := m.renderList()
	if m.location.Name == route.Update {
		content = m.renderRecord()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderCommandBar(),
		content,
	)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)

	// Navigation can happen off the event loop (a submit navigates from its
	// command goroutine), so forward it as a message.
	unsubscribe := m.router.Subscribe(func(loc route.Location) {
		go p.Send(routeMsg(loc))
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
