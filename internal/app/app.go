package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"rainbow-csv/internal/config"
	"rainbow-csv/internal/csvview"
	"rainbow-csv/internal/editor"
	"rainbow-csv/internal/table"
	"rainbow-csv/internal/ui"
	"rainbow-csv/internal/watch"
)

// tickMsg is sent to clear expired status messages.
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// autosaveMsg fires after the autosave delay. Only the latest one saves.
type autosaveMsg struct {
	seq int
}

func autosaveCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autosaveMsg{seq: seq}
	})
}

// fileEventMsg carries an on-disk change of the open file.
type fileEventMsg struct {
	watcher *watch.Watcher
	event   watch.Event
}

// fileWatchClosedMsg is sent when a watcher's event channel closes.
type fileWatchClosedMsg struct{}

// Options configure the root model.
type Options struct {
	Config         *config.Config
	Logger         *slog.Logger
	Language       language.Tag
	StartInPreview bool
	Watch          bool
}

// Model is the root Bubble Tea model. It implements the host side of
// csvview: it renders the controller output and persists the document.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   Options
	keys   keyMap
	help   help.Model

	doc     *editor.Document
	sort    *table.SortHolder
	ctrl    *csvview.Controller
	watcher *watch.Watcher

	editor    ui.EditorModel
	preview   ui.PreviewModel
	statusbar ui.StatusBarModel
	modal     ui.FilesModalModel

	width            int
	height           int
	editing          bool
	showHelp         bool
	confirmQuit      bool
	persistRequested bool
	saveSeq          int
}

// NewModel creates the root app model showing doc.
func NewModel(doc *editor.Document, opts Options) *Model {
	if opts.Config == nil {
		opts.Config = config.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	palette := ui.NewPalette(opts.Config.Palette)

	m := &Model{
		cfg:       opts.Config,
		logger:    opts.Logger,
		opts:      opts,
		keys:      newKeyMap(),
		help:      help.New(),
		editor:    ui.NewEditorModel(palette),
		preview:   ui.NewPreviewModel(palette, opts.Config.Preview.MaxColumnWidth),
		statusbar: ui.NewStatusBarModel(),
		modal:     ui.NewFilesModalModel(),
	}
	m.load(doc, opts.StartInPreview)
	return m
}

// load makes doc the open document, replacing any previous one.
func (m *Model) load(doc *editor.Document, preview bool) {
	if m.ctrl != nil {
		m.ctrl.Close()
	}
	m.stopWatcher()

	m.doc = doc
	m.sort = table.NewSortHolder(m.cfg.Preview.ResetSortOnModeExit)
	mode := csvview.EditMode
	if preview {
		mode = csvview.PreviewMode
	}
	m.ctrl = csvview.New(doc, m, m, m.sort,
		csvview.WithLanguage(m.opts.Language),
		csvview.WithLogger(m.logger),
		csvview.WithMode(mode),
	)
	m.ctrl.Open()
	m.startWatcher()
	m.logger.Info("Opened document", "path", doc.Path(), "mode", mode)
	m.syncChrome()
}

// Document returns the open document.
func (m *Model) Document() *editor.Document {
	return m.doc
}

// Mode returns the active view mode.
func (m *Model) Mode() csvview.Mode {
	return m.ctrl.Mode()
}

// ShowPreview implements csvview.RenderTarget.
func (m *Model) ShowPreview(grid table.Grid) {
	m.preview.SetGrid(grid)
	m.preview.SetFocused(true)
}

// ShowEmpty implements csvview.RenderTarget.
func (m *Model) ShowEmpty() {
	m.preview.SetEmpty()
	m.preview.SetFocused(true)
}

// AttachEditor implements csvview.RenderTarget. The textarea is the surface;
// releasing it stops key forwarding to it.
func (m *Model) AttachEditor(text string) csvview.Surface {
	m.preview.SetFocused(false)
	m.editor.SetValue(text)
	m.editor.SetFocused(true)
	m.editing = true
	return editSurface{m: m}
}

// RequestPersist implements csvview.Persister. The save is debounced by the
// configured autosave delay.
func (m *Model) RequestPersist() {
	m.persistRequested = true
}

type editSurface struct {
	m *Model
}

func (s editSurface) Text() string        { return s.m.editor.Value() }
func (s editSurface) SetText(text string) { s.m.editor.SetValue(text) }

func (s editSurface) Close() {
	s.m.editor.SetFocused(false)
	s.m.editing = false
}

func (m *Model) startWatcher() {
	if !m.opts.Watch || m.doc.Path() == "" {
		return
	}
	w, err := watch.New(m.doc.Path(), m.logger)
	if err != nil {
		m.logger.Warn("File watching disabled", "path", m.doc.Path(), "err", err)
		return
	}
	if err := w.Start(); err != nil {
		m.logger.Warn("File watching disabled", "path", m.doc.Path(), "err", err)
		w.Stop()
		return
	}
	m.watcher = w
}

func (m *Model) stopWatcher() {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
}

func (m *Model) waitForFileEvent() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return fileWatchClosedMsg{}
		}
		return fileEventMsg{watcher: w, event: ev}
	}
}

// Init starts the app.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForFileEvent())
}

// Update handles all messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if m.persistRequested {
		m.persistRequested = false
		m.saveSeq++
		cmd = tea.Batch(cmd, autosaveCmd(m.saveSeq, m.cfg.Editor.AutosaveDelay))
	}
	m.syncChrome()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return nil

	case tickMsg:
		m.statusbar.ClearExpiredMessage()
		return tickCmd()

	case autosaveMsg:
		if msg.seq == m.saveSeq && m.doc.Dirty() && m.doc.Path() != "" {
			return m.save(false)
		}
		return nil

	case fileEventMsg:
		if msg.watcher != m.watcher {
			return nil
		}
		m.fileChanged(msg.event)
		return m.waitForFileEvent()

	case fileWatchClosedMsg:
		return nil

	case ui.SortRequestedMsg:
		s := m.ctrl.ActivateHeader(msg.Column)
		m.logger.Debug("Header activated", "column", msg.Column, "direction", s.Direction)
		return nil

	case ui.OpenFileMsg:
		return m.open(msg.Path)

	case ui.SaveAsMsg:
		return m.saveAs(msg.Path)

	case ui.ForgetRecentMsg:
		for i, r := range m.cfg.Recent {
			if r.Path == msg.Path {
				m.cfg.Delete(i)
				break
			}
		}
		m.saveConfig()
		return nil

	case ui.FilesModalClosedMsg:
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blinks and other internal messages
	var cmd tea.Cmd
	switch {
	case m.modal.Visible():
		m.modal, cmd = m.modal.Update(msg)
	case m.editing:
		m.editor, cmd = m.editor.Update(msg)
	}
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.modal.Visible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return cmd
	}

	if m.confirmQuit {
		m.confirmQuit = false
		if msg.String() == "y" || msg.String() == "Y" {
			return tea.Quit
		}
		m.statusbar.SetMessage("Cancelled", ui.MsgInfo)
		return nil
	}

	// Global shortcuts
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Toggle):
		if m.preview.IsSearching() {
			break
		}
		mode := m.ctrl.ToggleMode()
		m.recalcLayout()
		m.logger.Debug("Toggled mode", "mode", mode)
		return nil
	case key.Matches(msg, m.keys.Save):
		return m.save(true)
	case key.Matches(msg, m.keys.Files):
		paths := make([]string, len(m.cfg.Recent))
		for i, r := range m.cfg.Recent {
			paths[i] = r.Path
		}
		return m.modal.Open(paths)
	case key.Matches(msg, m.keys.Reload):
		m.reload()
		return nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.recalcLayout()
		return nil
	}

	// Forward to the active pane
	var cmd tea.Cmd
	if m.editing {
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if after := m.editor.Value(); after != before {
			m.ctrl.Edited(after)
		}
		return cmd
	}
	m.preview, cmd = m.preview.Update(msg)
	m.statusbar.SetSearchMode(m.preview.IsSearching())
	return cmd
}

// save writes the document. An unnamed document opens the save-as prompt
// when the save was requested explicitly.
func (m *Model) save(explicit bool) tea.Cmd {
	err := m.doc.Save()
	switch {
	case errors.Is(err, editor.ErrNoPath):
		if explicit {
			return m.modal.OpenSaveAs()
		}
		return nil
	case err != nil:
		m.logger.Error("Save failed", "path", m.doc.Path(), "err", err)
		m.statusbar.SetMessage("Save failed: "+err.Error(), ui.MsgError)
		return nil
	}
	m.logger.Info("Saved document", "path", m.doc.Path())
	if explicit {
		m.statusbar.SetMessage(fmt.Sprintf("Saved %s", filepath.Base(m.doc.Path())), ui.MsgSuccess)
	}
	return nil
}

func (m *Model) saveAs(path string) tea.Cmd {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	prev := m.doc.Path()
	m.doc.SetPath(path)
	if err := m.doc.Save(); err != nil {
		m.doc.SetPath(prev)
		m.logger.Error("Save failed", "path", path, "err", err)
		m.statusbar.SetMessage("Save failed: "+err.Error(), ui.MsgError)
		return nil
	}
	m.logger.Info("Saved document", "path", path)
	m.statusbar.SetMessage(fmt.Sprintf("Saved %s", filepath.Base(path)), ui.MsgSuccess)
	m.cfg.Touch(path, time.Now())
	m.saveConfig()

	m.stopWatcher()
	m.startWatcher()
	return m.waitForFileEvent()
}

func (m *Model) open(path string) tea.Cmd {
	if m.doc.Dirty() {
		m.statusbar.SetMessage("Unsaved changes: save with Ctrl+S before opening another file", ui.MsgError)
		return nil
	}
	doc, err := editor.Open(path)
	if err != nil {
		m.logger.Error("Open failed", "path", path, "err", err)
		m.statusbar.SetMessage("Open failed: "+err.Error(), ui.MsgError)
		return nil
	}
	m.cfg.Touch(path, time.Now())
	m.saveConfig()
	m.load(doc, m.ctrl.Mode() == csvview.PreviewMode)
	m.statusbar.SetMessage(fmt.Sprintf("Opened %s", filepath.Base(path)), ui.MsgSuccess)
	return m.waitForFileEvent()
}

func (m *Model) reload() {
	if m.doc.Path() == "" {
		m.statusbar.SetMessage("Nothing to reload: file was never saved", ui.MsgInfo)
		return
	}
	if _, err := m.doc.Reload(); err != nil {
		m.logger.Error("Reload failed", "path", m.doc.Path(), "err", err)
		m.statusbar.SetMessage("Reload failed: "+err.Error(), ui.MsgError)
		return
	}
	m.statusbar.SetMessage("Reloaded from disk", ui.MsgSuccess)
}

// fileChanged reloads the document after an external change unless that
// would discard unsaved edits. Events for content we wrote ourselves are
// ignored.
func (m *Model) fileChanged(ev watch.Event) {
	m.logger.Debug("File changed on disk", "path", ev.Path, "op", ev.Op)
	if same, err := m.doc.MatchesDisk(); err == nil && same {
		return
	}
	if m.doc.Dirty() {
		m.statusbar.SetMessage("File changed on disk: Ctrl+R reloads and discards your edits", ui.MsgError)
		return
	}
	changed, err := m.doc.Reload()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.statusbar.SetMessage("File was moved or deleted", ui.MsgError)
			return
		}
		m.logger.Error("Reload failed", "path", m.doc.Path(), "err", err)
		return
	}
	if changed {
		m.statusbar.SetMessage("Reloaded from disk", ui.MsgInfo)
	}
}

func (m *Model) quit() tea.Cmd {
	if !m.doc.Dirty() {
		return tea.Quit
	}
	if m.doc.Path() != "" {
		err := m.doc.Save()
		if err == nil {
			return tea.Quit
		}
		m.logger.Error("Save on quit failed", "path", m.doc.Path(), "err", err)
	}
	m.confirmQuit = true
	m.statusbar.SetMessage("Unsaved changes will be lost. Quit anyway? (y/n)", ui.MsgError)
	return nil
}

func (m *Model) saveConfig() {
	if err := m.cfg.Save(); err != nil {
		m.logger.Warn("Could not save config", "err", err)
	}
}

// Close releases the view and the watcher. Pending edits of a named document
// are flushed.
func (m *Model) Close() error {
	m.ctrl.Close()
	m.stopWatcher()
	if m.doc.Dirty() && m.doc.Path() != "" {
		if err := m.doc.Save(); err != nil {
			return fmt.Errorf("failed to save %s: %w", m.doc.Path(), err)
		}
	}
	return nil
}

// syncChrome copies document and view state into the titles and status bar.
func (m *Model) syncChrome() {
	title := m.doc.Title()
	if m.doc.Dirty() {
		title += " ●"
	}
	m.editor.SetTitle(title)
	m.preview.SetTitle(title)

	m.statusbar.SetMode(m.ctrl.Mode().String())
	m.statusbar.SetDirty(m.doc.Dirty())
	if m.confirmQuit {
		m.statusbar.SetHints("y quit without saving | any other key keeps editing")
	} else {
		m.statusbar.SetHints("")
	}
	s := m.ctrl.SortState()
	label := ""
	if s.Sorted() && s.Column < len(m.preview.Grid().Header) {
		label = m.preview.Grid().Header[s.Column].Text
	}
	m.statusbar.SetSort(s, label)
}

func (m *Model) helpHeight() int {
	if !m.showHelp {
		return 0
	}
	return lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) recalcLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	availH := m.height - 2 - m.helpHeight() // top bar + status bar
	if availH < 6 {
		availH = 6
	}
	m.editor.SetSize(m.width, availH)
	m.preview.SetSize(m.width, availH)
	m.statusbar.SetWidth(m.width)
	m.modal.SetSize(m.width, m.height)
	m.help.Width = m.width
}

// View renders the full layout.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.modal.Visible() {
		return m.modal.View()
	}

	path := m.doc.Path()
	if path == "" {
		path = "[unsaved]"
	}
	topBar := ui.TopBarStyle.Width(m.width).Render(fmt.Sprintf("rainbow-csv │ %s │ %s", path, m.ctrl.Mode().ToggleLabel()+" with Ctrl+P"))

	var pane string
	if m.ctrl.Mode() == csvview.PreviewMode {
		pane = m.preview.View()
	} else {
		pane = m.editor.View()
	}

	parts := []string{topBar, pane, m.statusbar.View()}
	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
