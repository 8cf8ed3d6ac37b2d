package main

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

var welcomeLines = [...]string{
	"Seatbelts on. Your reservations are where you left them.",
	"Boarding is open. Mind the countdown on unpaid orders.",
	"Cabin crew, arm the doors. We are cleared for booking.",
	"The departures board refreshed while you were away.",
	"Window or aisle? Either way, pay before the timer runs out.",
	"Tray tables up. Orders tab is ready when you are.",
	"Welcome aboard. Checked baggage is not included in this client.",
	"The gate agent remembers you. Sort of.",
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7dd3fc"))

// banner renders the wordmark used by help.
func banner() string {
	return figure.NewFigure("skyport", "small", true).String()
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#38bdf8")).
		Bold(true).
		Render(strings.TrimRight(banner(), "\n"))

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Flights, seats and reservations from your terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"skyport", "Open the interactive TUI"},
		{"skyport login [-u user]", "Sign in"},
		{"skyport register", "Create an account"},
		{"skyport logout", "Clear your session"},
		{"skyport status", "Show who is signed in"},
		{"skyport flights", "List flights (--origin, --destination, --search, --page)"},
		{"skyport airports", "List airports"},
		{"skyport tickets --flight ID", "List seats of a flight"},
		{"skyport book --tickets 1,2", "Reserve seats (--method, --currency)"},
		{"skyport orders [--watch]", "List orders and follow reservation countdowns"},
		{"skyport pay ID", "Open checkout for an order (--copy, --no-browser)"},
		{"skyport payments", "List payments"},
		{"skyport --ephemeral CMD", "Run without touching the saved session"},
		{"skyport --version", "Show version"},
		{"skyport help", "You are here"},
	}

	fmt.Printf("\n%s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-30s", c.cmd)), descStyle.Render(c.desc))
	}
	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("Config: ~/.skyport/config.yaml or SKYPORT_* environment variables")
	fmt.Printf("\n  %s\n\n", env)
}

// printWelcome greets a freshly signed-in user.
func printWelcome(w io.Writer, username string) {
	msg := welcomeLines[rand.Intn(len(welcomeLines))]

	who := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#38bdf8")).
		Bold(true).
		Render("Signed in as " + username)

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("Next: skyport flights, or just skyport")

	fmt.Fprintf(w, "\n%s\n%s\n\n%s\n\n", who, quote, hint) //nolint:errcheck
}
