// Package tui provides the interactive terminal console for connector.
// It is built on the bubbletea/lipgloss stack: an address field with a
// connect/disconnect toggle, a message field, the received output and a
// status bar.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emove/connector"
)

// ---------------------------------------------------------------------------
// Shared styles
// ---------------------------------------------------------------------------

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true).
			Width(10)

	// fieldStyle renders an unfocused input field.
	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	focusedFieldStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("236"))

	// readOnlyStyle renders the message field while not connected.
	readOnlyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)

	sentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	receivedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true).
			PaddingLeft(1)
)

// Session is the part of *connector.Client the console drives.
type Session interface {
	Connect(addr string) error
	Disconnect() error
	Send(text string) error
}

// ---------------------------------------------------------------------------
// Tea messages, posted by the client hooks
// ---------------------------------------------------------------------------

// StatusMsg carries a status notification.
type StatusMsg connector.Status

// DataMsg carries a decoded payload.
type DataMsg string

// StateMsg carries the connection after a transition.
type StateMsg connector.Connection

type field int

const (
	fieldAddress field = iota
	fieldMessage
)

const maxLines = 200

// Model is the bubbletea model of the console.
type Model struct {
	session Session

	address string
	message string
	focus   field

	conn   connector.Connection
	status connector.Status
	lines  []string

	width  int
	height int
}

// New returns a Model driving session, with address prefilled.
func New(session Session, address string) Model {
	return Model{
		session: session,
		address: address,
		status:  connector.Status{Message: connector.StatusNotConnected},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update processes messages and returns an updated model plus any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StatusMsg:
		m.status = connector.Status(msg)

	case StateMsg:
		m.conn = connector.Connection(msg)
		if m.conn.State != connector.Connected && m.focus == fieldMessage {
			m.focus = fieldAddress
		}

	case DataMsg:
		m.appendLine(receivedStyle.Render("< " + string(msg)))

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focus == fieldAddress && m.editable() {
			m.focus = fieldMessage
		} else {
			m.focus = fieldAddress
		}
	case "ctrl+d":
		m.toggle()
	case "enter":
		if m.focus == fieldAddress {
			m.toggle()
		} else {
			m.send()
		}
	case "backspace":
		m.edit(func(s string) string {
			r := []rune(s)
			if len(r) == 0 {
				return s
			}
			return string(r[:len(r)-1])
		})
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			text := string(msg.Runes)
			if msg.Type == tea.KeySpace {
				text = " "
			}
			m.edit(func(s string) string { return s + text })
		}
	}
	return m, nil
}

// editable reports whether the message field accepts input.
func (m *Model) editable() bool {
	return m.conn.State == connector.Connected
}

func (m *Model) edit(fn func(string) string) {
	switch m.focus {
	case fieldAddress:
		if m.conn.State == connector.Idle {
			m.address = fn(m.address)
		}
	case fieldMessage:
		if m.editable() {
			m.message = fn(m.message)
		}
	}
}

// toggle connects while idle and disconnects otherwise.
func (m *Model) toggle() {
	var err error
	if m.conn.State == connector.Idle {
		err = m.session.Connect(m.address)
	} else {
		err = m.session.Disconnect()
	}
	if err != nil {
		m.fail(err)
	}
}

func (m *Model) send() {
	if !m.editable() || m.message == "" {
		return
	}
	if err := m.session.Send(m.message); err != nil {
		m.fail(err)
		return
	}
	m.appendLine(sentStyle.Render("> " + m.message))
	m.message = ""
}

func (m *Model) fail(err error) {
	var ve *connector.ValidationError
	if errors.As(err, &ve) {
		m.status = connector.Status{Message: ve.Reason, IsError: true, Err: err}
		return
	}
	m.status = connector.Status{Message: err.Error(), IsError: true, Err: err}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

// View renders the console to a string.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("  connector  "))
	sb.WriteString("\n\n")

	label := "Connect"
	if m.conn.State != connector.Idle {
		label = "Disconnect"
	}
	sb.WriteString(labelStyle.Render("Address"))
	sb.WriteString(m.renderField(m.address, fieldAddress, m.conn.State == connector.Idle))
	sb.WriteString("  ")
	sb.WriteString(buttonStyle.Render(label))
	sb.WriteString("\n")

	sb.WriteString(labelStyle.Render("Message"))
	sb.WriteString(m.renderField(m.message, fieldMessage, m.editable()))
	sb.WriteString("\n\n")

	sb.WriteString(clipLines(strings.Join(m.lines, "\n"), m.outputHeight()))
	sb.WriteString("\n")

	divider := m.width
	if divider <= 0 {
		divider = 40
	}
	sb.WriteString(strings.Repeat("─", divider))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())

	return sb.String()
}

func (m Model) renderField(value string, f field, writable bool) string {
	if !writable {
		if value == "" && f == fieldMessage {
			value = "(connect to send)"
		}
		return readOnlyStyle.Render(value)
	}
	if m.focus == f {
		return focusedFieldStyle.Render(value + "▏")
	}
	return fieldStyle.Render(value)
}

func (m Model) renderStatus() string {
	if m.status.IsError {
		return errorStyle.Render(m.status.Message)
	}
	state := fmt.Sprintf("[%s]", m.conn.State)
	return statusBarStyle.Render(state + " " + m.status.Message + "   tab: switch field · enter: connect/send · ctrl+d: toggle · esc: quit")
}

func (m Model) outputHeight() int {
	// title(2) + fields(3) + divider(1) + status(1)
	h := m.height - 7
	if h < 1 {
		h = 10
	}
	return h
}

// clipLines keeps the last n lines of s.
func clipLines(s string, n int) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
