package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"csvview/internal/loader"
	"csvview/internal/logging"
	"csvview/internal/store"
	csvtable "csvview/internal/table"
)

// Options configure the viewer.
type Options struct {
	Controller *csvtable.Controller
	Loader     *loader.Loader

	// Path is loaded at start. When empty the last saved CSV is restored.
	Path string

	Theme          string
	CopyFeedback   time.Duration
	MaxColumnWidth int

	// SearchDebounce delays filtering while typing; zero filters on every key.
	SearchDebounce time.Duration

	Watch         bool
	WatchDebounce time.Duration
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// Messages
type (
	loadedMsg struct {
		res    *loader.Result
		err    error
		path   string
		reload bool
	}
	restoredMsg struct {
		res *loader.Result
		ok  bool
		err error
	}
	fileChangedMsg struct {
		change  loader.Change
		watcher *loader.Watcher
	}
	watchClosedMsg struct{}
	searchMsg      struct {
		seq  int
		term string
	}
)

// Model is the bubbletea model for the table viewer.
type Model struct {
	ctx    context.Context
	opts   Options
	ctrl   *csvtable.Controller
	loader *loader.Loader

	watcher *loader.Watcher
	path    string

	grid      table.Model
	search    textinput.Model
	searching bool
	searchSeq int
	prompt    textinput.Model
	prompting bool
	spinner   spinner.Model
	loading   bool
	loadingOf string

	help     help.Model
	showHelp bool
	helpView viewport.Model

	detail *DetailModel

	status     string
	statusKind statusKind

	keys   KeyMap
	styles Styles
	width  int
	height int
}

// NewModel builds the viewer. ctx bounds file loads and the watcher.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Controller == nil {
		opts.Controller = csvtable.New(csvtable.Options{})
	}
	if opts.CopyFeedback <= 0 {
		opts.CopyFeedback = 2 * time.Second
	}
	if opts.MaxColumnWidth <= 0 {
		opts.MaxColumnWidth = 32
	}

	styles := NewStyles(ThemeFor(opts.Theme))
	keys := DefaultKeyMap(opts.Controller.Options().FastJump)

	grid := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithKeyMap(gridKeyMap(keys)),
	)
	grid.SetStyles(styles.TableStyles())

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search all columns"
	search.PromptStyle = styles.Prompt

	prompt := textinput.New()
	prompt.Prompt = "Open: "
	prompt.Placeholder = "path/to/file.csv"
	prompt.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	loadingOf := "saved data"
	if opts.Path != "" {
		loadingOf = filepath.Base(opts.Path)
	}

	return Model{
		ctx:       ctx,
		loading:   opts.Loader != nil,
		loadingOf: loadingOf,
		opts:      opts,
		ctrl:      opts.Controller,
		loader:    opts.Loader,
		grid:      grid,
		search:    search,
		prompt:    prompt,
		spinner:   sp,
		help:      help.New(),
		helpView:  viewport.New(80, 20),
		keys:      keys,
		styles:    styles,
		width:     80,
		height:    24,
	}
}

// Init starts the initial load or restore.
func (m Model) Init() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	if m.opts.Path != "" {
		return tea.Batch(m.spinner.Tick, loadFileCmd(m.ctx, m.loader, m.opts.Path, false))
	}
	return tea.Batch(m.spinner.Tick, restoreCmd(m.ctx, m.loader))
}

// Loading reports whether a file read is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Close stops the file watcher.
func (m Model) Close() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func loadFileCmd(ctx context.Context, l *loader.Loader, path string, reload bool) tea.Cmd {
	return func() tea.Msg {
		res, err := l.LoadFile(ctx, path)
		return loadedMsg{res: res, err: err, path: path, reload: reload}
	}
}

func restoreCmd(ctx context.Context, l *loader.Loader) tea.Cmd {
	return func() tea.Msg {
		res, ok, err := l.Restore(ctx)
		return restoredMsg{res: res, ok: ok, err: err}
	}
}

func waitForChange(w *loader.Watcher) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-w.Events()
		if !ok {
			return watchClosedMsg{}
		}
		return fileChangedMsg{change: c, watcher: w}
	}
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m.handleLoaded(msg)

	case restoredMsg:
		m.loading = false
		if msg.err != nil {
			logging.UIWarn("Restore failed: %v", msg.err)
			m.setStatus(statusWarn, fmt.Sprintf("Could not restore saved data: %v", msg.err))
			return m, nil
		}
		if !msg.ok {
			return m, nil
		}
		m.ctrl.Load(msg.res.Dataset)
		m.refresh()
		m.setStatus(statusInfo, msg.res.Summary())
		return m, nil

	case fileChangedMsg:
		if m.watcher == nil || msg.watcher != m.watcher {
			return m, nil
		}
		if msg.change.Removed {
			m.setStatus(statusWarn, fmt.Sprintf("%s was removed; showing the last loaded data", filepath.Base(msg.change.Path)))
			return m, waitForChange(m.watcher)
		}
		logging.UI("Reloading %s after change on disk", msg.change.Path)
		m.loading = true
		m.loadingOf = filepath.Base(msg.change.Path)
		return m, tea.Batch(
			m.spinner.Tick,
			loadFileCmd(m.ctx, m.loader, msg.change.Path, true),
			waitForChange(m.watcher),
		)

	case watchClosedMsg:
		return m, nil

	case searchMsg:
		if msg.seq == m.searchSeq {
			m.applySearch(msg.term)
		}
		return m, nil

	case detailClosedMsg:
		m.detail = nil
		return m, nil

	case copiedMsg, copyResetMsg:
		if m.detail == nil {
			return m, nil
		}
		d, cmd := m.detail.Update(msg)
		m.detail = &d
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.detail != nil:
			d, cmd := m.detail.Update(msg)
			m.detail = &d
			return m, cmd
		case m.showHelp:
			return m.updateHelp(msg)
		case m.prompting:
			return m.updatePrompt(msg)
		case m.searching:
			return m.updateSearch(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		logging.UIWarn("Load of %s failed: %v", msg.path, msg.err)
		if msg.reload {
			m.setStatus(statusWarn, fmt.Sprintf("Reload failed, keeping previous data: %v", msg.err))
		} else {
			m.setStatus(statusError, fmt.Sprintf("Error loading file: %v", msg.err))
		}
		return m, nil
	}

	m.ctrl.Load(msg.res.Dataset)
	// The open row may no longer exist.
	m.detail = nil
	m.searchSeq++
	m.search.SetValue("")
	m.refresh()

	switch {
	case errors.Is(msg.res.SaveErr, store.ErrTooLarge):
		m.setStatus(statusWarn, msg.res.Summary()+". Data too large to save locally; it will not be restored next time.")
	case msg.res.SaveErr != nil:
		m.setStatus(statusWarn, fmt.Sprintf("%s. Could not save locally: %v", msg.res.Summary(), msg.res.SaveErr))
	case msg.reload:
		m.setStatus(statusInfo, "Reloaded: "+msg.res.Summary())
	default:
		m.setStatus(statusInfo, msg.res.Summary())
	}

	if msg.reload || !m.opts.Watch || msg.res.Path == "" || msg.res.Path == m.path {
		m.path = msg.res.Path
		return m, nil
	}
	m.path = msg.res.Path
	return m, m.watch(msg.res.Path)
}

// watch replaces the current watcher with one on path.
func (m *Model) watch(path string) tea.Cmd {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
	w, err := loader.NewWatcher(path, m.opts.WatchDebounce)
	if err != nil {
		logging.UIWarn("Cannot watch %s: %v", path, err)
		return nil
	}
	if err := w.Start(m.ctx); err != nil {
		logging.UIWarn("Cannot watch %s: %v", path, err)
		w.Stop()
		return nil
	}
	m.watcher = w
	return waitForChange(w)
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.renderHelpView()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if m.loading {
			return m, nil
		}
		m.prompting = true
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	}

	if !m.ctrl.HasData() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.ctrl.Query())
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Prev):
		if m.ctrl.Prev() {
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Next):
		if m.ctrl.Next() {
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.FastPrev):
		m.ctrl.FastPrev()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.FastNext):
		m.ctrl.FastNext()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.First):
		m.ctrl.GoTo(1)
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Last):
		m.ctrl.GoTo(m.ctrl.TotalPages())
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Detail):
		return m.openDetail()
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9' {
		slot := int(msg.Runes[0] - '1')
		if msg.Runes[0] == '0' {
			slot = 9
		}
		if nums := m.ctrl.PageNumbers(); slot < len(nums) {
			m.ctrl.GoTo(nums[slot])
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	cursor := m.grid.Cursor()
	fields, ok := m.ctrl.Detail(cursor)
	if !ok {
		return m, nil
	}
	v := m.ctrl.Snapshot()
	d := NewDetailModel(fields, v.FirstIndex+cursor, v.FilteredCount, m.opts.CopyFeedback, m.styles)
	d.SetSize(m.width, m.height-2)
	m.detail = &d
	logging.UIDebug("Opened detail for row %d", v.FirstIndex+cursor)
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.searchSeq++
		m.applySearch("")
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.searchSeq++
		m.applySearch(m.search.Value())
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	term := m.search.Value()
	if term == before {
		return m, cmd
	}

	m.searchSeq++
	if m.opts.SearchDebounce <= 0 {
		m.applySearch(term)
		return m, cmd
	}
	seq := m.searchSeq
	return m, tea.Batch(cmd, tea.Tick(m.opts.SearchDebounce, func(time.Time) tea.Msg {
		return searchMsg{seq: seq, term: term}
	}))
}

func (m *Model) applySearch(term string) {
	if term == m.ctrl.Query() {
		return
	}
	m.ctrl.SetQuery(term)
	m.refresh()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.prompt.Blur()
		return m, nil
	case tea.KeyEnter:
		path := expandPath(m.prompt.Value())
		m.prompting = false
		m.prompt.Blur()
		if path == "" || m.loader == nil {
			return m, nil
		}
		m.loading = true
		m.loadingOf = filepath.Base(path)
		return m, tea.Batch(m.spinner.Tick, loadFileCmd(m.ctx, m.loader, path, false))
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.showHelp = false
		return m, nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m *Model) renderHelpView() {
	out, err := renderHelp(m.helpView.Width, m.ctrl.Options().FastJump, m.styles.Theme.IsDark)
	if err != nil {
		logging.UIWarn("Help render failed: %v", err)
		out = m.help.FullHelpView(m.keys.FullHelp())
	}
	m.helpView.SetContent(out)
	m.helpView.GotoTop()
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// Chrome around the grid: header, search line, grid header, page bar,
// range line, status and key help.
const chromeHeight = 8

func (m *Model) layout() {
	m.grid.SetWidth(m.width)
	m.grid.SetHeight(max(3, m.height-chromeHeight))
	m.search.Width = max(10, m.width-4)
	m.prompt.Width = max(10, m.width-10)
	m.helpView.Width = max(20, m.width)
	m.helpView.Height = max(3, m.height-2)
	m.help.Width = m.width
	if m.detail != nil {
		m.detail.SetSize(m.width, m.height-2)
	}
	if m.showHelp {
		m.renderHelpView()
	}
}

// refresh pushes the controller's current page into the grid.
func (m *Model) refresh() {
	v := m.ctrl.Snapshot()
	m.grid.SetRows(nil)
	m.grid.SetColumns(gridColumns(v, m.opts.MaxColumnWidth))
	m.grid.SetRows(gridRows(v))
	m.grid.SetCursor(0)
}

// View renders the viewer.
func (m Model) View() string {
	if m.showHelp {
		return m.helpView.View()
	}

	v := m.ctrl.Snapshot()
	sections := []string{m.headerView(v)}

	if m.detail != nil {
		sections = append(sections, m.detail.View())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.inputLine(v))

	switch {
	case m.loading && !v.Controls.HasData:
		sections = append(sections, m.loadingLine())
	case !v.Controls.HasData:
		sections = append(sections, m.styles.Muted.Render(
			"No data. Press o to open a CSV file, or run csvview <file>."))
	default:
		sections = append(sections, m.grid.View())
		if bar := renderPageBar(v, m.styles); bar != "" {
			sections = append(sections, bar)
		}
		sections = append(sections, m.styles.Muted.Render(RangeSummary(v)))
	}

	if m.loading && v.Controls.HasData {
		sections = append(sections, m.loadingLine())
	} else if m.status != "" {
		sections = append(sections, m.statusLine())
	}
	sections = append(sections, m.styles.Footer.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView(v csvtable.View) string {
	title := "csvview"
	if v.Source != "" {
		title += " · " + v.Source
		title += " · " + humanize.Comma(int64(v.TotalRecords)) + " rows"
		title += " · " + humanize.Comma(int64(len(v.Headers))) + " columns"
	}
	return m.styles.Header.Width(max(m.width, lipgloss.Width(title)+4)).Render(title)
}

func (m Model) inputLine(v csvtable.View) string {
	switch {
	case m.prompting:
		return m.prompt.View()
	case m.searching:
		return m.search.View()
	case v.Query != "":
		return m.styles.Muted.Render("Filter: ") + m.styles.Bold.Render(v.Query) +
			m.styles.Muted.Render(fmt.Sprintf(" (%s matches)", humanize.Comma(int64(v.FilteredCount))))
	case v.Controls.HasData:
		return m.styles.Muted.Render("/ to search")
	default:
		return m.styles.Muted.Render("search unavailable until a file is loaded")
	}
}

func (m Model) loadingLine() string {
	name := m.loadingOf
	if name == "" {
		name = "file"
	}
	return m.spinner.View() + " " + m.styles.Muted.Render("Loading "+name+"…")
}

func (m Model) statusLine() string {
	switch m.statusKind {
	case statusWarn:
		return m.styles.Warning.Render(m.status)
	case statusError:
		return m.styles.Error.Render(m.status)
	default:
		return m.styles.Success.Render(m.status)
	}
}
