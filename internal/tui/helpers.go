package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/pkg/client"
)

// sessionEndedMsg tells the app the session was torn down and the user must
// sign in again.
type sessionEndedMsg struct{}

// errorCmd converts a terminal authorization failure into a sessionEndedMsg.
// Every other error stays with the screen that produced it.
func errorCmd(err error) tea.Cmd {
	if err == nil || !client.IsSessionEnded(err) {
		return nil
	}
	return func() tea.Msg { return sessionEndedMsg{} }
}

// errText renders an API error for the status line.
func errText(err error) string {
	if client.IsSessionEnded(err) {
		return "session ended, sign in again"
	}
	return err.Error()
}

// formatDeparture renders a departure time like "Mar 14 09:35".
func formatDeparture(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Local().Format("Jan 02 15:04")
}

// formatAge renders a relative timestamp for order and payment lists.
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
