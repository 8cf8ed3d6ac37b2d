package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

type flightsLoadedMsg struct {
	page *domain.Page[domain.Flight]
	err  error
}

// openFlightMsg asks the app to show the tickets of a flight.
type openFlightMsg struct {
	flight domain.Flight
}

type flightsModel struct {
	client  *client.Client
	flights []domain.Flight
	count   int
	hasNext bool
	page    int
	cursor  int
	search  string
	editing bool
	loading bool
	err     string
	width   int
	height  int
}

func newFlightsModel(c *client.Client) flightsModel {
	return flightsModel{client: c, page: 1, loading: true}
}

func (m flightsModel) Init() tea.Cmd {
	return m.load()
}

func (m flightsModel) load() tea.Cmd {
	c := m.client
	opts := client.ListOptions{Page: m.page, Search: m.search}
	return func() tea.Msg {
		page, err := c.ListFlights(context.Background(), opts)
		return flightsLoadedMsg{page: page, err: err}
	}
}

func (m flightsModel) Update(msg tea.Msg) (flightsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flightsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, errorCmd(msg.err)
		}
		m.err = ""
		m.flights = msg.page.Results
		m.count = msg.page.Count
		m.hasNext = msg.page.HasNext()
		if m.cursor >= len(m.flights) {
			m.cursor = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m flightsModel) updateSearch(msg tea.KeyMsg) (flightsModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		m.page = 1
		m.loading = true
		return m, m.load()
	case "esc":
		m.editing = false
		m.search = ""
		m.page = 1
		m.loading = true
		return m, m.load()
	default:
		m.search = editRune(m.search, msg.String())
	}
	return m, nil
}

func (m flightsModel) updateList(msg tea.KeyMsg) (flightsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.flights)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.editing = true
		m.search = ""
	case "n", "right":
		if m.hasNext {
			m.page++
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "N", "left":
		if m.page > 1 {
			m.page--
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "enter":
		if m.cursor < len(m.flights) {
			f := m.flights[m.cursor]
			return m, func() tea.Msg { return openFlightMsg{flight: f} }
		}
	}
	return m, nil
}

func (m flightsModel) View() string {
	var b strings.Builder

	if m.editing || m.search != "" {
		cursor := ""
		if m.editing {
			cursor = accentStyle.Render("█")
		}
		b.WriteString(" " + searchStyle.Render("/ ") + normalStyle.Render(m.search) + cursor + "\n")
	}

	switch {
	case m.loading && len(m.flights) == 0:
		b.WriteString(" " + dimStyle.Render("loading flights..."))
		return b.String()
	case m.err != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.err))
		return b.String()
	case len(m.flights) == 0:
		b.WriteString(" " + dimStyle.Render("no flights found"))
		return b.String()
	}

	b.WriteString(" " + sectionHeaderStyle.Render(fmt.Sprintf("%-8s %-13s %-14s %-14s %s", "FLIGHT", "ROUTE", "DEPARTS", "ARRIVES", "STATUS")) + "\n")
	for i, f := range m.flights {
		line := fmt.Sprintf("%-8s %-13s %-14s %-14s %s",
			truncStr(f.Number, 8),
			f.Route(),
			formatDeparture(f.DepartureTime),
			formatDeparture(f.ArrivalTime),
			f.Status,
		)
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(accentStyle.Render("▸") + selectedStyle.Render(line)))
		} else {
			b.WriteString(" " + normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("page %d · %d flights", m.page, m.count)))
	return b.String()
}

func (m flightsModel) helpKeys() string {
	if m.editing {
		return helpEntry("enter", "search") + "  " + helpEntry("esc", "clear")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "tickets") + "  " + helpEntry("/", "search") + "  " + helpEntry("n/N", "page") + "  " + helpEntry("r", "reload")
}
