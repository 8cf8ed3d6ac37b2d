package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

// Shimmer animation for the SKYPORT logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "S K Y P O R T" as a slow wave of light moving
// across the letters, from deep navy (#1e3a5f) to sky blue (#7dd3fc).
func renderShimmerLogo(frame int) string {
	const text = "SKYPORT"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(30 + b*(125-30))
		g := clampByte(58 + b*(211-58))
		bl := clampByte(95 + b*(252-95))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dd3fc")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	// Countdown under two minutes.
	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171")).
			Bold(true)

	countdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#38bdf8")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	statusColors = map[domain.OrderStatus]lipgloss.Color{
		domain.OrderBooked:    lipgloss.Color("#facc15"),
		domain.OrderPaid:      lipgloss.Color("#4ade80"),
		domain.OrderCancelled: lipgloss.Color("#8890a0"),
		domain.OrderExpired:   lipgloss.Color("#b45555"),
	}

	ticketColors = map[string]lipgloss.Color{
		domain.TicketAvailable: lipgloss.Color("#4ade80"),
		domain.TicketBooked:    lipgloss.Color("#facc15"),
		domain.TicketSold:      lipgloss.Color("#606878"),
	}
)

// urgentThreshold is where a countdown switches to the urgent style.
const urgentThreshold = 120

// StatusStyle returns a bold style colored for an order status.
func StatusStyle(s domain.OrderStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// TicketStyle returns a style colored for a ticket status.
func TicketStyle(status string) lipgloss.Style {
	if c, ok := ticketColors[status]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return dimStyle
}

// CountdownStyle picks the countdown color for the remaining seconds.
func CountdownStyle(secs int) lipgloss.Style {
	if secs < urgentThreshold {
		return urgentStyle
	}
	return countdownStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the help overlay.
func helpView(apiURL string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7dd3fc")).
		Bold(true).
		Render("S K Y P O R T")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"skyport", "Open the booking console (this screen)"},
		{"skyport login", "Sign in and store a session"},
		{"skyport logout", "Forget the stored session"},
		{"skyport orders --watch", "Follow reservation countdowns"},
		{"skyport pay ID", "Open checkout for a booked order"},
		{"skyport help", "All commands"},
	}
	keys := []struct{ key, desc string }{
		{"1-4", "Flights, Tickets, Orders, Payments"},
		{"j/k", "Move the cursor"},
		{"/", "Search flights"},
		{"space", "Select a ticket"},
		{"b", "Book selected tickets"},
		{"p", "Pay for the order under the cursor"},
		{"r", "Reload"},
		{"L", "Sign out"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", title, descStyle.Render(apiURL))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}
