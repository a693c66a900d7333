// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aptui/internal/ui/styles"
)

// =============================================================================
// CONNECT FORM
// =============================================================================

// Form field indexes. The Connect button follows the last input.
const (
	FieldServer = iota
	FieldSlot
	FieldPassword
	fieldButton
)

// ConnectRequestMsg is emitted when the user submits the form.
type ConnectRequestMsg struct {
	Server   string
	Slot     string
	Password string
}

// FormKeyMap defines the connect form bindings.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// DefaultFormKeyMap returns the default connect form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-Tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "connect"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Submit, k.Quit}}
}

// ConnectForm collects the server address, slot name and password.
type ConnectForm struct {
	inputs   []textinput.Model
	focus    int
	disabled bool
	err      string
	width    int
	keys     FormKeyMap
	theme    *styles.Theme
}

var fieldLabels = []string{"Server URL", "Slot Name", "Password"}

// NewConnectForm creates the form with the server field focused.
func NewConnectForm(theme *styles.Theme) *ConnectForm {
	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		ti.PlaceholderStyle = theme.Placeholder
		ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)
		inputs[i] = ti
	}
	inputs[FieldServer].Placeholder = "archipelago.gg:38281"
	inputs[FieldSlot].Placeholder = "Player1"
	inputs[FieldPassword].Placeholder = "optional"
	inputs[FieldPassword].EchoMode = textinput.EchoPassword
	inputs[FieldPassword].EchoCharacter = '*'

	f := &ConnectForm{
		inputs: inputs,
		width:  60,
		keys:   DefaultFormKeyMap(),
		theme:  theme,
	}
	f.inputs[FieldServer].Focus()
	return f
}

// KeyMap returns the form bindings for the help view.
func (f *ConnectForm) KeyMap() FormKeyMap {
	return f.keys
}

// SetValues prefills the form.
func (f *ConnectForm) SetValues(server, slot, password string) {
	f.inputs[FieldServer].SetValue(server)
	f.inputs[FieldSlot].SetValue(slot)
	f.inputs[FieldPassword].SetValue(password)
}

// Values returns the current field values, trimmed.
func (f *ConnectForm) Values() ConnectRequestMsg {
	return ConnectRequestMsg{
		Server:   strings.TrimSpace(f.inputs[FieldServer].Value()),
		Slot:     strings.TrimSpace(f.inputs[FieldSlot].Value()),
		Password: f.inputs[FieldPassword].Value(),
	}
}

// SetDisabled blocks input while a login is in flight.
func (f *ConnectForm) SetDisabled(disabled bool) {
	f.disabled = disabled
}

// SetError shows a validation message under the form. Empty clears it.
func (f *ConnectForm) SetError(msg string) {
	f.err = msg
}

// Error returns the current validation message.
func (f *ConnectForm) Error() string {
	return f.err
}

// Focused returns the focused field index.
func (f *ConnectForm) Focused() int {
	return f.focus
}

// SetWidth sets the form width.
func (f *ConnectForm) SetWidth(width int) {
	f.width = width
	inputWidth := width - 24
	if inputWidth < 16 {
		inputWidth = 16
	}
	for i := range f.inputs {
		f.inputs[i].Width = inputWidth
	}
}

// Focus moves focus to field i, wrapping around the button.
func (f *ConnectForm) Focus(i int) tea.Cmd {
	n := len(f.inputs) + 1
	f.focus = ((i % n) + n) % n

	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

// Submit validates the form and returns the request command.
func (f *ConnectForm) Submit() tea.Cmd {
	req := f.Values()
	switch {
	case req.Server == "":
		f.err = "Server URL is required"
		return f.Focus(FieldServer)
	case req.Slot == "":
		f.err = "Slot Name is required"
		return f.Focus(FieldSlot)
	}
	f.err = ""
	return func() tea.Msg { return req }
}

// Update handles form navigation and text entry.
func (f *ConnectForm) Update(msg tea.Msg) (*ConnectForm, tea.Cmd) {
	if f.disabled {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.Next):
			return f, f.Focus(f.focus + 1)
		case key.Matches(msg, f.keys.Prev):
			return f, f.Focus(f.focus - 1)
		case key.Matches(msg, f.keys.Submit):
			if f.focus < FieldPassword {
				return f, f.Focus(f.focus + 1)
			}
			return f, f.Submit()
		}
	}

	if f.focus >= len(f.inputs) {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f *ConnectForm) View() string {
	var b strings.Builder
	b.WriteString(f.theme.FormTitle.Render("Connect to Archipelago"))
	b.WriteString("\n")

	for i, label := range fieldLabels {
		labelStyle := f.theme.FormLabel
		if i == f.focus {
			labelStyle = f.theme.FormLabelFocused
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	button := f.theme.FormButton
	if f.focus == fieldButton {
		button = f.theme.FormButtonFocused
	}
	label := "Connect"
	if f.disabled {
		label = "Connecting"
	}
	b.WriteString("\n")
	b.WriteString(button.Render(label))

	if f.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.RenderError(f.err))
	}

	return f.theme.FormBox.Width(f.width).Render(b.String())
}
