package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/pkg/client"
)

type loginField int

const (
	fieldUsername loginField = iota
	fieldEmail
	fieldPassword
)

type loginResultMsg struct {
	username string
	err      error
}

type registerResultMsg struct {
	username string
	err      error
}

// loginModel is the unauthenticated entry point. ctrl+r flips between
// sign-in and account creation.
type loginModel struct {
	client    *client.Client
	register  bool
	focus     loginField
	username  string
	email     string
	password  string
	busy      bool
	statusMsg string
	failed    bool
}

func newLoginModel(c *client.Client) loginModel {
	return loginModel{client: c}
}

func (m loginModel) fields() []loginField {
	if m.register {
		return []loginField{fieldUsername, fieldEmail, fieldPassword}
	}
	return []loginField{fieldUsername, fieldPassword}
}

func (m loginModel) next(step int) loginField {
	fs := m.fields()
	for i, f := range fs {
		if f == m.focus {
			return fs[(i+step+len(fs))%len(fs)]
		}
	}
	return fs[0]
}

func (m loginModel) submit() tea.Cmd {
	c := m.client
	username := strings.TrimSpace(m.username)
	password := m.password
	if m.register {
		email := strings.TrimSpace(m.email)
		return func() tea.Msg {
			err := c.Register(context.Background(), username, email, password)
			return registerResultMsg{username: username, err: err}
		}
	}
	return func() tea.Msg {
		_, err := c.Login(context.Background(), username, password)
		return loginResultMsg{username: username, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = true
			m.statusMsg = errText(msg.err)
			m.password = ""
			return m, nil
		}
		m.failed = false
		m.statusMsg = ""
		m.password = ""
		return m, nil

	case registerResultMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = true
			m.statusMsg = errText(msg.err)
			return m, nil
		}
		m.failed = false
		m.register = false
		m.focus = fieldPassword
		m.password = ""
		m.statusMsg = "account created for " + msg.username + ", sign in"
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus = m.next(1)
		case "shift+tab", "up":
			m.focus = m.next(-1)
		case "ctrl+r":
			m.register = !m.register
			m.focus = fieldUsername
			m.statusMsg = ""
		case "enter":
			if m.focus != fieldPassword {
				m.focus = m.next(1)
				return m, nil
			}
			if strings.TrimSpace(m.username) == "" || m.password == "" {
				m.failed = true
				m.statusMsg = "username and password are required"
				return m, nil
			}
			m.busy = true
			m.statusMsg = ""
			return m, m.submit()
		default:
			switch m.focus {
			case fieldUsername:
				m.username = editRune(m.username, msg.String())
			case fieldEmail:
				m.email = editRune(m.email, msg.String())
			case fieldPassword:
				m.password = editRune(m.password, msg.String())
			}
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	title := "Sign in"
	if m.register {
		title = "Create account"
	}
	b.WriteString("\n  " + selectedStyle.Render(title) + "\n\n")
	for _, f := range m.fields() {
		switch f {
		case fieldUsername:
			b.WriteString(renderField("username", m.username, false, m.focus == f) + "\n")
		case fieldEmail:
			b.WriteString(renderField("email", m.email, false, m.focus == f) + "\n")
		case fieldPassword:
			b.WriteString(renderField("password", m.password, true, m.focus == f) + "\n")
		}
	}
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString("  " + dimStyle.Render("contacting server...") + "\n")
	case m.statusMsg != "" && m.failed:
		b.WriteString("  " + errorStyle.Render(m.statusMsg) + "\n")
	case m.statusMsg != "":
		b.WriteString("  " + okStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	toggle := "register"
	if m.register {
		toggle = "sign in"
	}
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("ctrl+r", toggle) + "  " + helpEntry("ctrl+c", "quit")
}
