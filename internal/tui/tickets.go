package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

type ticketsLoadedMsg struct {
	flightID int64
	tickets  []domain.Ticket
	err      error
}

type orderCreatedMsg struct {
	order *domain.Order
	err   error
}

// ticketsModel lists the seats of one flight and books a selection of them.
type ticketsModel struct {
	client        *client.Client
	paymentMethod string
	currency      string

	flight    *domain.Flight
	tickets   []domain.Ticket
	selected  map[int64]bool
	cursor    int
	loading   bool
	booking   bool
	err       string
	statusMsg string
	width     int
	height    int
}

func newTicketsModel(c *client.Client, paymentMethod, currency string) ticketsModel {
	return ticketsModel{
		client:        c,
		paymentMethod: paymentMethod,
		currency:      currency,
		selected:      map[int64]bool{},
	}
}

// open resets the model to show flight's seats.
func (m ticketsModel) open(f domain.Flight) (ticketsModel, tea.Cmd) {
	m.flight = &f
	m.tickets = nil
	m.selected = map[int64]bool{}
	m.cursor = 0
	m.err = ""
	m.statusMsg = ""
	m.loading = true
	return m, m.load()
}

func (m ticketsModel) Init() tea.Cmd {
	if m.flight == nil {
		return nil
	}
	return m.load()
}

func (m ticketsModel) load() tea.Cmd {
	c := m.client
	flightID := m.flight.ID
	opts := client.ListOptions{Filters: map[string]string{"flight": strconv.FormatInt(flightID, 10)}}
	return func() tea.Msg {
		page, err := c.ListTickets(context.Background(), opts)
		if err != nil {
			return ticketsLoadedMsg{flightID: flightID, err: err}
		}
		return ticketsLoadedMsg{flightID: flightID, tickets: page.Results}
	}
}

func (m ticketsModel) book() tea.Cmd {
	ids := m.selectedIDs()
	req := client.CreateOrderRequest{Tickets: ids, PaymentMethod: m.paymentMethod, Currency: m.currency}
	c := m.client
	return func() tea.Msg {
		order, err := c.CreateOrder(context.Background(), req)
		return orderCreatedMsg{order: order, err: err}
	}
}

func (m ticketsModel) selectedIDs() []int64 {
	ids := make([]int64, 0, len(m.selected))
	for id, ok := range m.selected {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m ticketsModel) Update(msg tea.Msg) (ticketsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ticketsLoadedMsg:
		if m.flight == nil || msg.flightID != m.flight.ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, errorCmd(msg.err)
		}
		m.err = ""
		m.tickets = msg.tickets
		if m.cursor >= len(m.tickets) {
			m.cursor = 0
		}
		return m, nil

	case orderCreatedMsg:
		m.booking = false
		if msg.err != nil {
			m.statusMsg = "booking failed: " + errText(msg.err)
			return m, errorCmd(msg.err)
		}
		m.selected = map[int64]bool{}
		m.statusMsg = fmt.Sprintf("order #%d booked", msg.order.ID)
		return m, m.load()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.booking {
			return m, nil
		}
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.tickets)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case " ", "x":
			if m.cursor < len(m.tickets) {
				t := m.tickets[m.cursor]
				if !t.Available() {
					m.statusMsg = "seat " + t.SeatNumber + " is " + t.Status
					return m, nil
				}
				m.selected[t.ID] = !m.selected[t.ID]
			}
		case "b":
			if len(m.selectedIDs()) == 0 {
				m.statusMsg = "select at least one available seat"
				return m, nil
			}
			m.booking = true
			return m, m.book()
		case "r":
			if m.flight != nil {
				m.loading = true
				return m, m.load()
			}
		}
	}
	return m, nil
}

func (m ticketsModel) View() string {
	if m.flight == nil {
		return " " + dimStyle.Render("pick a flight on the Flights tab")
	}
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render(m.flight.Number) + "  " + normalStyle.Render(m.flight.Route()) +
		"  " + dimStyle.Render(formatDeparture(m.flight.DepartureTime)) + "\n\n")

	switch {
	case m.loading && len(m.tickets) == 0:
		b.WriteString(" " + dimStyle.Render("loading seats..."))
		return b.String()
	case m.err != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.err))
		return b.String()
	case len(m.tickets) == 0:
		b.WriteString(" " + dimStyle.Render("no tickets on this flight"))
		return b.String()
	}

	for i, t := range m.tickets {
		mark := "[ ]"
		if m.selected[t.ID] {
			mark = accentStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %-5s %10s  %s", mark, t.SeatNumber, t.Price, TicketStyle(t.Status).Render(t.Status))
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(accentStyle.Render("▸") + line))
		} else {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}

	if n := len(m.selectedIDs()); n > 0 {
		b.WriteString("\n " + normalStyle.Render(fmt.Sprintf("%d selected · %s · %s", n, m.paymentMethod, m.currency)))
	}
	if m.booking {
		b.WriteString("\n " + dimStyle.Render("booking..."))
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m ticketsModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("space", "select") + "  " + helpEntry("b", "book") + "  " + helpEntry("r", "reload")
}
