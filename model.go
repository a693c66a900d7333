// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/cli"
	"github.com/jeranaias/aptui/internal/config"
	"github.com/jeranaias/aptui/internal/logging"
	"github.com/jeranaias/aptui/internal/session"
	"github.com/jeranaias/aptui/internal/ui/chat"
	"github.com/jeranaias/aptui/internal/ui/components"
	"github.com/jeranaias/aptui/internal/ui/styles"
)

// DisconnectedNotice is appended when a session ends.
const DisconnectedNotice = "Disconnected from Archipelago"

// connectNoticeLines is how many log lines the connect screen shows.
const connectNoticeLines = 6

// =============================================================================
// MESSAGES
// =============================================================================

// LoginResultMsg reports the end of a login attempt.
type LoginResultMsg struct {
	Gen    int
	Server string
	Slot   string
	Err    error
}

// ApplyMsg carries a session mutation from the client goroutine.
type ApplyMsg struct {
	Gen int
	Fn  func()
}

// DisconnectedMsg reports that the server closed the connection.
type DisconnectedMsg struct {
	Gen int
	Err error
}

// DisconnectDoneMsg reports the end of a user requested disconnect.
type DisconnectDoneMsg struct {
	Err error
}

// ConfigReloadedMsg carries a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// State represents the current application state.
type State int

const (
	StateConnect    State = iota // Connect form
	StateConnecting              // Login in flight
	StateSession                 // Log, hints and chat input
)

// Model is the main Bubble Tea model for the application.
type Model struct {
	// State
	state State

	// Theme and styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Application configuration
	config *config.Config

	// Components
	header    *components.Header
	form      *components.ConnectForm
	spinner   components.Spinner
	statusBar *components.StatusBar
	chatModel chat.Model

	// Session state and the client feeding it
	sess    *session.Session
	client  *archipelago.Client
	discSub *archipelago.Subscription

	// gen identifies the current connection. Events tagged with an older
	// generation arrive after teardown and are dropped.
	gen int

	// send delivers messages from client goroutines to the program
	send func(tea.Msg)

	// newClient builds the client for a login
	newClient func() *archipelago.Client

	loginTimeout time.Duration
	autoConnect  bool
	keys         chat.KeyMap
	logger       *slog.Logger
}

// NewModel creates the application model.
func NewModel(theme *styles.Theme, cfg *config.Config) *Model {
	sess := session.New()

	chatModel := chat.New(theme, sess)
	chatModel.SetShowTimestamps(cfg.UI.ShowTimestamps)

	form := components.NewConnectForm(theme)
	form.SetValues(cfg.Server.URL, cfg.Server.Slot, cfg.Server.Password)

	return &Model{
		state:        StateConnect,
		theme:        theme,
		config:       cfg,
		header:       components.NewHeader(theme),
		form:         form,
		spinner:      components.NewSpinner(theme),
		statusBar:    components.NewStatusBar(theme, form.KeyMap()),
		chatModel:    chatModel,
		sess:         sess,
		send:         sendToProgram,
		newClient:    func() *archipelago.Client { return cli.NewClient(cfg) },
		loginTimeout: time.Duration(cfg.Server.ConnectTimeoutSecs) * time.Second,
		keys:         chat.DefaultKeyMap(),
		logger:       logging.For("ui"),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.form.Focus(components.FieldServer)}
	if m.autoConnect {
		cmds = append(cmds, m.form.Submit())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case components.ConnectRequestMsg:
		return m.startLogin(msg)

	case LoginResultMsg:
		return m.handleLoginResult(msg)

	case ApplyMsg:
		if msg.Gen == m.gen && msg.Fn != nil {
			msg.Fn()
			m.chatModel.Refresh()
		}
		return m, nil

	case DisconnectedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleServerDisconnect(msg.Err)

	case chat.DisconnectRequestMsg:
		return m.disconnect()

	case DisconnectDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("disconnect", "error", msg.Err)
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.logger.Warn("config reload failed", "error", msg.Err)
			return m, nil
		}
		m.config = msg.Config
		m.chatModel.SetShowTimestamps(msg.Config.UI.ShowTimestamps)
		m.logger.Info("config reloaded")
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.state {
	case StateSession:
		return m.updateChat(msg)
	case StateConnect:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.statusBar.ToggleHelp()
		m.layout()
		return m, nil
	}

	switch m.state {
	case StateConnect:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case StateSession:
		return m.updateChat(msg)
	}
	return m, nil
}

func (m *Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.chatModel.Update(msg)
	m.chatModel = next.(chat.Model)
	m.statusBar.SetInfo(m.chatModel.HintsSummary())
	return m, cmd
}

// =============================================================================
// CONNECTION LIFECYCLE
// =============================================================================

// startLogin subscribes a fresh client and logs it in asynchronously.
func (m *Model) startLogin(req components.ConnectRequestMsg) (tea.Model, tea.Cmd) {
	if m.state != StateConnect {
		return m, nil
	}

	m.gen++
	gen := m.gen
	client := m.newClient()
	m.client = client
	m.sess.Attach(client, m.dispatcher(gen))
	m.discSub = client.OnDisconnect(func(ev archipelago.DisconnectEvent) {
		m.send(DisconnectedMsg{Gen: gen, Err: ev.Err})
	})

	m.state = StateConnecting
	m.form.SetError("")
	m.form.SetDisabled(true)
	m.header.SetSession(req.Slot, req.Server)
	m.header.SetState(components.StateConnecting)
	m.spinner.SetMessage("Connecting to " + req.Server)

	return m, tea.Batch(m.spinner.Start(), m.loginCmd(gen, client, req))
}

// dispatcher hands session mutations to the Update goroutine.
func (m *Model) dispatcher(gen int) session.Dispatcher {
	return func(fn func()) {
		m.send(ApplyMsg{Gen: gen, Fn: fn})
	}
}

// loginCmd runs the login off the event loop.
func (m *Model) loginCmd(gen int, client *archipelago.Client, req components.ConnectRequestMsg) tea.Cmd {
	timeout := m.loginTimeout
	return func() tea.Msg {
		err := cli.Login(context.Background(), client, cli.Target{
			Server:   req.Server,
			Slot:     req.Slot,
			Password: req.Password,
			Timeout:  timeout,
		})
		return LoginResultMsg{Gen: gen, Server: req.Server, Slot: req.Slot, Err: err}
	}
}

func (m *Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen || m.state != StateConnecting {
		return m, nil
	}
	m.spinner.Stop()

	if msg.Err != nil {
		needsPassword := m.client != nil && cli.NeedsPassword(m.client, msg.Err)
		m.teardown()
		m.sess.ConnectFailed(msg.Err)
		m.toConnectScreen()
		if needsPassword {
			m.form.SetError("This room requires a password")
			return m, m.form.Focus(components.FieldPassword)
		}
		return m, nil
	}

	m.state = StateSession
	m.header.SetSession(msg.Slot, m.client.Address())
	m.header.SetState(components.StateConnected)
	m.chatModel.SetClient(m.client)
	m.chatModel.SetSelf(m.client.Self().Slot)
	m.statusBar.SetKeys(m.keys)
	m.layout()
	m.logger.Info("session started", "server", m.client.Address(), "slot", msg.Slot)
	return m, m.chatModel.Focus()
}

// disconnect ends the session at the user's request. The close handshake
// runs in a command because the read loop may be waiting on the program.
func (m *Model) disconnect() (tea.Model, tea.Cmd) {
	if m.state != StateSession || m.client == nil {
		return m, nil
	}
	client := m.client
	m.teardown()
	m.sess.Reset()
	m.sess.Notice(DisconnectedNotice)
	m.toConnectScreen()

	return m, func() tea.Msg {
		return DisconnectDoneMsg{Err: client.Disconnect()}
	}
}

// handleServerDisconnect returns to the connect screen after the server
// closed the session. The log is kept so the last messages stay visible.
func (m *Model) handleServerDisconnect(err error) (tea.Model, tea.Cmd) {
	m.teardown()
	m.spinner.Stop()
	notice := DisconnectedNotice
	if err != nil {
		notice += ": " + err.Error()
	}
	m.sess.Notice(notice)
	m.toConnectScreen()
	return m, nil
}

// teardown releases every subscription of the current client.
func (m *Model) teardown() {
	m.gen++
	m.sess.Detach()
	if m.discSub != nil {
		m.discSub.Unsubscribe()
		m.discSub = nil
	}
	m.client = nil
	m.chatModel.SetClient(nil)
}

func (m *Model) toConnectScreen() {
	m.state = StateConnect
	m.form.SetDisabled(false)
	m.header.SetState(components.StateDisconnected)
	m.statusBar.SetKeys(m.form.KeyMap())
	m.statusBar.SetInfo("")
	m.chatModel.Refresh()
	m.layout()
}

// Shutdown closes the connection, if any. Called after the program exits.
func (m *Model) Shutdown() {
	if m.client == nil {
		return
	}
	client := m.client
	m.teardown()
	if err := client.Disconnect(); err != nil {
		m.logger.Warn("disconnect on exit", "error", err)
	}
}

// =============================================================================
// LAYOUT AND VIEW
// =============================================================================

func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	m.header.SetWidth(m.width)
	m.form.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)

	chrome := lipgloss.Height(m.header.View()) + lipgloss.Height(m.statusBar.View())
	m.chatModel.SetSize(m.width, max(m.height-chrome, 6))
}

// View renders the current state.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	var content string
	switch m.state {
	case StateSession:
		content = m.chatModel.View()
	default:
		content = m.connectView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		content,
		m.statusBar.View(),
	)
}

// connectView renders the form, the login spinner and recent notices.
func (m *Model) connectView() string {
	parts := []string{m.theme.FormBox.Render(m.form.View())}

	if m.spinner.IsActive() {
		parts = append(parts, m.spinner.View())
	}

	lines := m.sess.Log().Lines()
	if len(lines) > connectNoticeLines {
		lines = lines[len(lines)-connectNoticeLines:]
	}
	if len(lines) > 0 {
		rendered := make([]string, len(lines))
		for i, line := range lines {
			rendered[i] = styles.RenderLine(line.Text)
		}
		parts = append(parts, m.theme.LogPanel.Width(max(m.width-2, 1)).Render(strings.Join(rendered, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
