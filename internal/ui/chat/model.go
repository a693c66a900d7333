// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aptui/internal/model"
	"github.com/jeranaias/aptui/internal/session"
	"github.com/jeranaias/aptui/internal/ui/components"
	"github.com/jeranaias/aptui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the session screen: the message log,
// the hints table and the chat input.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Session state rendered by this view
	sess   *session.Session
	client Sayer

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	hints    *components.HintsTable

	// Key bindings
	keyMap KeyMap

	// Display options
	showHints      bool
	showTimestamps bool

	// Rendered log lines, one entry per stored line, wrapped to
	// renderedWidth. Rebuilt when the width or options change.
	rendered      []string
	renderedWidth int
	// renderedLast is the ID of the newest rendered line. A mismatch
	// means the log was cleared and refilled since the last Refresh.
	renderedLast string
}

// New creates the session view over sess.
func New(theme *styles.Theme, sess *session.Session) Model {
	vp := viewport.New(80, 20)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Send a message or !command"
	ti.CharLimit = 2048
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.Placeholder
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)
	ti.Focus()

	return Model{
		theme:     theme,
		sess:      sess,
		viewport:  vp,
		input:     ti,
		hints:     components.NewHintsTable(theme),
		keyMap:    DefaultKeyMap(),
		showHints: true,
	}
}

// SetClient sets where chat messages are sent.
func (m *Model) SetClient(client Sayer) {
	m.client = client
}

// SetSelf sets the local slot highlighted in the hints table.
func (m *Model) SetSelf(slot int) {
	m.hints.SetSelf(slot)
}

// SetShowTimestamps toggles arrival times in front of log lines.
func (m *Model) SetShowTimestamps(show bool) {
	if m.showTimestamps == show {
		return
	}
	m.showTimestamps = show
	m.rendered = nil
	m.Refresh()
}

// ShowTimestamps reports whether arrival times are shown.
func (m Model) ShowTimestamps() bool {
	return m.showTimestamps
}

// KeyMap returns the session screen bindings.
func (m Model) KeyMap() KeyMap {
	return m.keyMap
}

// Focus focuses the chat input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// InputValue returns the text in the chat input.
func (m Model) InputValue() string {
	return m.input.Value()
}

// SetSize sets the area available to the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.layout()
	m.Refresh()
}

// layout distributes the height between the log, hints and input.
func (m *Model) layout() {
	avail := m.height - inputHeight
	if avail < 4 {
		avail = 4
	}

	hintsHeight := 0
	if m.showHints {
		hintsHeight = avail / 3
		if hintsHeight < hintsChrome+1 {
			hintsHeight = hintsChrome + 1
		}
		m.hints.SetSize(m.width, hintsHeight-hintsChrome)
	}

	logHeight := avail - hintsHeight
	if logHeight < 3 {
		logHeight = 3
	}

	m.viewport.Width = max(m.width-2, 1)
	m.viewport.Height = max(logHeight-2, 1)
	m.input.Width = max(m.width-8, 10)
}

// Layout constants in terminal rows.
const (
	inputHeight = 3 // bordered single line
	hintsChrome = 4 // table borders and header
)

// Refresh picks up log lines and hints added since the last call and
// scrolls the log to the bottom when lines were appended.
func (m *Model) Refresh() {
	m.hints.SetHints(m.sess.Hints().Rows())

	width := m.viewport.Width
	log := m.sess.Log()
	if width != m.renderedWidth || m.logReplaced(log) {
		m.rendered = nil
		m.renderedWidth = width
		m.renderedLast = ""
	}

	fresh := log.Since(len(m.rendered))
	if len(fresh) == 0 && m.rendered != nil {
		return
	}
	for _, line := range fresh {
		m.rendered = append(m.rendered, renderLine(m.theme, line, width, m.showTimestamps))
	}
	if last, ok := log.Last(); ok {
		m.renderedLast = last.ID
	}

	m.viewport.SetContent(strings.Join(m.rendered, "\n"))
	if len(fresh) > 0 {
		m.viewport.GotoBottom()
	}
}

// logReplaced reports whether the lines already rendered are no longer a
// prefix of log.
func (m *Model) logReplaced(log *model.Log) bool {
	if len(m.rendered) == 0 {
		return false
	}
	if log.IsEmpty() || log.Len() < len(m.rendered) {
		return true
	}
	tail := log.Since(len(m.rendered) - 1)
	return tail[0].ID != m.renderedLast
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init focuses the input.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys, mouse scrolling and send results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case SayResultMsg:
		if msg.Err != nil {
			m.sess.SendFailed(msg.Err)
		}
		m.Refresh()
		return m, nil

	case RefreshMsg:
		m.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.Disconnect):
		return m, func() tea.Msg { return DisconnectRequestMsg{} }

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfPageUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfPageDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.HintsUp):
		m.hints.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.HintsDown):
		m.hints.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleHints):
		m.showHints = !m.showHints
		m.layout()
		m.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput sends the input line. Blank input is ignored.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	return m, SayCmd(m.client, text, DefaultSayTimeout)
}

// HintsSummary returns the found count for the status bar.
func (m Model) HintsSummary() string {
	return m.hints.Summary()
}
