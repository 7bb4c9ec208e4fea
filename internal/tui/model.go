// Package tui implements the terminal frontend: a two-pane browser where
// the left pane lists parameters and the right pane lists the values
// still valid for the highlighted parameter. The model follows the
// bubbletea Elm loop and is single-threaded; rescans run as commands and
// come back as messages.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrison/pscan/internal/history"
	"github.com/harrison/pscan/internal/index"
	"github.com/harrison/pscan/internal/logger"
	"github.com/harrison/pscan/internal/snapshot"
)

// RefreshMsg asks the model to rescan. The watcher sends it from outside
// the event loop via Program.Send.
type RefreshMsg struct{}

// refreshedMsg carries the result of an asynchronous rescan.
type refreshedMsg struct {
	snap *snapshot.Snapshot
	err  error
}

// keyMap defines the TUI keybindings.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Clear   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev value")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next value")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev param")),
		Right:   key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next param")),
		Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose value")),
		Clear:   key.NewBinding(key.WithKeys("backspace", "x"), key.WithHelp("bksp", "clear param")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Select, k.Clear, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is the bubbletea model for the parametric browser.
type Model struct {
	holder *snapshot.Holder
	hist   *history.Store // nil when history is disabled
	log    *logger.Console

	snap      *snapshot.Snapshot
	params    []string
	selection index.Selection

	paramCursor int
	valueCursor int
	values      []string // valid values for the highlighted parameter

	resolved string // path when the selection is complete and unique
	status   string // transient message (errors, scan results)

	recordedSnap string // snapshot id of the last history row written
	recordedPath string // path of the last history row written

	keys keyMap
	help help.Model

	width  int
	height int
}

// NewModel builds the initial model from the holder's current snapshot.
func NewModel(holder *snapshot.Holder, hist *history.Store, log *logger.Console) Model {
	m := Model{
		holder:    holder,
		hist:      hist,
		log:       log,
		selection: index.Selection{},
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
	m.adopt(holder.Current())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// adopt switches the model to a new snapshot, dropping selection entries
// that no longer narrow to anything.
func (m *Model) adopt(snap *snapshot.Snapshot) {
	m.snap = snap
	m.params = snap.Index.Params()
	if m.paramCursor >= len(m.params) {
		m.paramCursor = 0
	}
	for name := range m.selection {
		known := false
		for _, p := range m.params {
			if p == name {
				known = true
				break
			}
		}
		if !known {
			delete(m.selection, name)
		}
	}
	m.recompute()
}

// recompute refreshes the value list for the highlighted parameter and
// re-resolves the selection.
func (m *Model) recompute() {
	m.values = nil
	m.resolved = ""
	if len(m.params) == 0 {
		m.status = "no parameters: the expression matched nothing"
		return
	}

	param := m.params[m.paramCursor]

	// Exclude the highlighted parameter from its own filter so an
	// earlier choice can be revised without clearing it first.
	excl := make(index.Selection, len(m.selection))
	for k, v := range m.selection {
		if k != param {
			excl[k] = v
		}
	}
	opts, err := m.snap.Index.Options(excl)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.values = opts[param]
	if m.valueCursor >= len(m.values) {
		m.valueCursor = 0
	}

	if len(m.selection) == len(m.params) {
		path, err := m.snap.Index.Resolve(m.selection)
		if err != nil {
			m.status = err.Error()
			return
		}
		m.resolved = path
		m.status = ""
		m.recordResolution(path)
	}
}

// recordResolution appends the resolved path to the history store.
// recompute runs on every keypress, so the last written snapshot-id and
// path pair is tracked to keep navigation over an already-resolved
// selection from inserting duplicate rows.
func (m *Model) recordResolution(path string) {
	if m.hist == nil {
		return
	}
	snapID := m.snap.ID.String()
	if snapID == m.recordedSnap && path == m.recordedPath {
		return
	}
	if err := m.hist.Record(context.Background(), snapID, m.selection.Clone(), path); err != nil {
		m.log.Warnf("record history: %v", err)
		return
	}
	m.recordedSnap = snapID
	m.recordedPath = path
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case RefreshMsg:
		return m, m.refreshCmd()

	case refreshedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("rescan failed: %v", msg.err)
			return m, nil
		}
		m.adopt(msg.snap)
		m.status = fmt.Sprintf("rescan: %d records (%d skipped)",
			msg.snap.Index.Len(), msg.snap.Report.Skipped)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshCmd()
		case key.Matches(msg, m.keys.Up):
			if m.valueCursor > 0 {
				m.valueCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.valueCursor < len(m.values)-1 {
				m.valueCursor++
			}
		case key.Matches(msg, m.keys.Left):
			if m.paramCursor > 0 {
				m.paramCursor--
				m.valueCursor = 0
				m.recompute()
			}
		case key.Matches(msg, m.keys.Right):
			if m.paramCursor < len(m.params)-1 {
				m.paramCursor++
				m.valueCursor = 0
				m.recompute()
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.values) > 0 && m.valueCursor < len(m.values) {
				m.selection[m.params[m.paramCursor]] = m.values[m.valueCursor]
				m.recompute()
			}
		case key.Matches(msg, m.keys.Clear):
			delete(m.selection, m.params[m.paramCursor])
			m.recompute()
		}
	}
	return m, nil
}

// refreshCmd runs a rescan off the event loop.
func (m Model) refreshCmd() tea.Cmd {
	holder := m.holder
	return func() tea.Msg {
		snap, err := holder.Refresh(context.Background())
		return refreshedMsg{snap: snap, err: err}
	}
}

// Selection returns a copy of the current selection, for tests and the
// final report on exit.
func (m Model) Selection() index.Selection {
	return m.selection.Clone()
}

// Resolved returns the resolved path, empty until the selection is
// complete and unique.
func (m Model) Resolved() string {
	return m.resolved
}
