package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tarasboiko2005/AirportAPI/internal/booking"
	"github.com/tarasboiko2005/AirportAPI/internal/browser"
	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

// ordersLoadedMsg and reconciledMsg carry the gen of the view that asked
// for them, like countdownTickMsg; results for a closed view are dropped.
type ordersLoadedMsg struct {
	gen    int
	orders []domain.Order
	err    error
}

// countdownTickMsg is one countdown step. gen ties it to the orders view
// instance that scheduled it; ticks from a closed view are dropped.
type countdownTickMsg struct {
	gen int
}

type reconciledMsg struct {
	gen    int
	orders []domain.Order
	err    error
}

type checkoutMsg struct {
	orderID int64
	url     string
	err     error
}

type checkoutCopiedMsg struct{ err error }

type ordersModel struct {
	client    *client.Client
	tracker   *booking.Tracker
	openURL   func(string) error
	orders    []domain.Order
	cursor    int
	gen       int
	active    bool
	loading   bool
	paying    bool
	lastURL   string
	err       string
	statusMsg string
	width     int
	height    int
}

func newOrdersModel(c *client.Client, tr *booking.Tracker) ordersModel {
	return ordersModel{
		client:  c,
		tracker: tr,
		openURL: browser.Open,
		loading: true,
	}
}

// start binds a fresh countdown timer to the view and loads orders.
func (m ordersModel) start() (ordersModel, tea.Cmd) {
	m.gen++
	m.active = true
	m.loading = true
	return m, tea.Batch(m.load(), m.tickCmd())
}

// stop detaches the running timer; its pending tick is discarded on arrival.
func (m ordersModel) stop() ordersModel {
	m.gen++
	m.active = false
	return m
}

func (m ordersModel) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tracker.Interval(), func(time.Time) tea.Msg {
		return countdownTickMsg{gen: gen}
	})
}

func (m ordersModel) load() tea.Cmd {
	c := m.client
	gen := m.gen
	return func() tea.Msg {
		orders, err := c.ListAllOrders(context.Background())
		return ordersLoadedMsg{gen: gen, orders: orders, err: err}
	}
}

func (m ordersModel) reconcile() tea.Cmd {
	tr := m.tracker
	gen := m.gen
	return func() tea.Msg {
		orders, err := tr.Reconcile(context.Background())
		return reconciledMsg{gen: gen, orders: orders, err: err}
	}
}

func (m ordersModel) checkout(id int64) tea.Cmd {
	c := m.client
	open := m.openURL
	return func() tea.Msg {
		cs, err := c.CreateCheckoutSession(context.Background(), id)
		if err != nil {
			return checkoutMsg{orderID: id, err: err}
		}
		if err := open(cs.URL); err != nil {
			// The link is still usable by hand.
			return checkoutMsg{orderID: id, url: cs.URL, err: fmt.Errorf("open browser: %w", err)}
		}
		return checkoutMsg{orderID: id, url: cs.URL}
	}
}

func (m ordersModel) Update(msg tea.Msg) (ordersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, errorCmd(msg.err)
		}
		m.err = ""
		m.setOrders(msg.orders)
		return m, nil

	case countdownTickMsg:
		if !m.active || msg.gen != m.gen {
			return m, nil
		}
		cmds := []tea.Cmd{m.tickCmd()}
		if m.tracker.Tick() {
			cmds = append(cmds, m.reconcile())
		}
		return m, tea.Batch(cmds...)

	case reconciledMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			// Pending countdowns retry on the next window; only a
			// terminal failure is surfaced.
			return m, errorCmd(msg.err)
		}
		m.orders = msg.orders
		m.clampCursor()
		return m, nil

	case checkoutMsg:
		m.paying = false
		if msg.url != "" {
			m.lastURL = msg.url
		}
		switch {
		case msg.err != nil && msg.url != "":
			m.statusMsg = "checkout ready, press c to copy the link"
		case msg.err != nil:
			m.statusMsg = "checkout failed: " + errText(msg.err)
			return m, errorCmd(msg.err)
		default:
			m.statusMsg = fmt.Sprintf("checkout for order #%d opened in your browser", msg.orderID)
		}
		return m, nil

	case checkoutCopiedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "checkout link copied"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.orders)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "p", "enter":
			if m.paying || m.cursor >= len(m.orders) {
				return m, nil
			}
			o := m.orders[m.cursor]
			if !o.IsBooked() {
				m.statusMsg = fmt.Sprintf("order #%d is %s", o.ID, o.Status)
				return m, nil
			}
			if m.tracker.State(o.ID) == booking.ExpiredPending {
				m.statusMsg = "reservation time is up"
				return m, nil
			}
			m.paying = true
			return m, m.checkout(o.ID)
		case "c":
			if m.lastURL != "" {
				url := m.lastURL
				return m, func() tea.Msg {
					return checkoutCopiedMsg{err: clipboard.WriteAll(url)}
				}
			}
		}
	}
	return m, nil
}

func (m *ordersModel) setOrders(orders []domain.Order) {
	m.orders = orders
	m.tracker.Observe(orders)
	m.clampCursor()
}

func (m *ordersModel) clampCursor() {
	if m.cursor >= len(m.orders) {
		m.cursor = 0
	}
}

// countdown renders the local remaining time for a booked order.
func (m ordersModel) countdown(o domain.Order) string {
	if !o.IsBooked() {
		return ""
	}
	secs, ok := m.tracker.Remaining(o.ID)
	if !ok {
		return dimStyle.Render("--:--")
	}
	if m.tracker.State(o.ID) == booking.ExpiredPending {
		return urgentStyle.Render("expired")
	}
	return CountdownStyle(secs).Render(booking.FormatRemaining(secs))
}

func (m ordersModel) View() string {
	var b strings.Builder
	switch {
	case m.loading && len(m.orders) == 0:
		return " " + dimStyle.Render("loading orders...")
	case m.err != "":
		return " " + errorStyle.Render("error: "+m.err)
	case len(m.orders) == 0:
		return " " + dimStyle.Render("no orders yet, book seats from the Tickets tab")
	}

	b.WriteString(" " + sectionHeaderStyle.Render(fmt.Sprintf("%-7s %-10s %12s  %-8s %-8s %s", "ORDER", "STATUS", "AMOUNT", "SEATS", "LEFT", "CREATED")) + "\n")
	for i, o := range m.orders {
		status := StatusStyle(o.Status).Render(padRight(string(o.Status), 10))
		line := fmt.Sprintf("%-7s %s %12s  %-8s %s %s",
			fmt.Sprintf("#%d", o.ID),
			status,
			o.Amount+" "+o.Currency,
			fmt.Sprintf("%d", len(o.Tickets)),
			padCountdown(m.countdown(o)),
			dimStyle.Render(formatAge(o.CreatedAt)),
		)
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(accentStyle.Render("▸") + line))
		} else {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}

	if m.cursor < len(m.orders) {
		if o := m.orders[m.cursor]; len(o.Tickets) > 0 {
			b.WriteString("\n")
			for _, t := range o.Tickets {
				route := ""
				if t.FlightInfo != nil {
					route = t.FlightInfo.Number + " " + t.FlightInfo.Route() + " " + formatDeparture(t.FlightInfo.DepartureTime)
				}
				b.WriteString("   " + dimStyle.Render(fmt.Sprintf("seat %-5s %s", t.SeatNumber, route)) + "\n")
			}
		}
	}
	if m.paying {
		b.WriteString("\n " + dimStyle.Render("starting checkout..."))
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg))
	}
	return b.String()
}

// padCountdown pads a styled countdown cell to a fixed visible width.
func padCountdown(s string) string {
	const width = 8
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func (m ordersModel) helpKeys() string {
	keys := helpEntry("j/k", "nav") + "  " + helpEntry("p", "pay") + "  " + helpEntry("r", "reload")
	if m.lastURL != "" {
		keys += "  " + helpEntry("c", "copy link")
	}
	return keys
}
