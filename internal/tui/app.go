package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tarasboiko2005/AirportAPI/internal/booking"
	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

type view int

const (
	viewLogin view = iota
	viewFlights
	viewTickets
	viewOrders
	viewPayments
)

// Options carries the booking defaults and display settings of the app.
type Options struct {
	APIURL        string
	PaymentMethod string
	Currency      string
	TickInterval  time.Duration
}

// App is the root Bubbletea model.
type App struct {
	client   *client.Client
	tracker  *booking.Tracker
	opts     Options
	view     view
	login    loginModel
	flights  flightsModel
	tickets  ticketsModel
	orders   ordersModel
	payments paymentsModel
	helpOpen bool
	notice   string
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application over c.
func NewApp(c *client.Client, opts Options) App {
	if opts.PaymentMethod == "" {
		opts.PaymentMethod = domain.PaymentCard
	}
	if opts.Currency == "" {
		opts.Currency = domain.CurrencyUSD
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	tr := booking.NewTracker(c, booking.WithInterval(opts.TickInterval))
	a := App{
		client:   c,
		tracker:  tr,
		opts:     opts,
		login:    newLoginModel(c),
		flights:  newFlightsModel(c),
		tickets:  newTicketsModel(c, opts.PaymentMethod, opts.Currency),
		orders:   newOrdersModel(c, tr),
		payments: newPaymentsModel(c),
	}
	if a.authenticated() {
		a.view = viewFlights
	}
	return a
}

func (a App) authenticated() bool {
	return a.client != nil && a.client.Session().Authenticated()
}

func (a App) Init() tea.Cmd {
	if a.view == viewLogin {
		return shimmerTickCmd()
	}
	return tea.Batch(shimmerTickCmd(), a.flights.Init())
}

// switchTo moves to v, stopping the orders countdown when leaving it.
func (a App) switchTo(v view) (App, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	if a.view == viewOrders {
		a.orders = a.orders.stop()
	}
	a.view = v
	a.notice = ""
	switch v {
	case viewFlights:
		return a, a.flights.Init()
	case viewTickets:
		return a, a.tickets.Init()
	case viewOrders:
		var cmd tea.Cmd
		a.orders, cmd = a.orders.start()
		return a, cmd
	case viewPayments:
		return a, a.payments.Init()
	}
	return a, nil
}

// signOut drops every per-user screen and returns to the login view.
func (a App) signOut(notice string) App {
	a.orders = a.orders.stop()
	a.tracker.Observe(nil)
	a.login = newLoginModel(a.client)
	a.flights = newFlightsModel(a.client)
	a.tickets = newTicketsModel(a.client, a.opts.PaymentMethod, a.opts.Currency)
	// Keep the generation so ticks scheduled before sign-out stay stale.
	gen := a.orders.gen
	a.orders = newOrdersModel(a.client, a.tracker)
	a.orders.gen = gen
	a.payments = newPaymentsModel(a.client)
	a.view = viewLogin
	a.helpOpen = false
	a.notice = notice
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + notice(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.flights, _ = a.flights.Update(bodyMsg)
		a.tickets, _ = a.tickets.Update(bodyMsg)
		a.orders, _ = a.orders.Update(bodyMsg)
		a.payments, _ = a.payments.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionEndedMsg:
		if a.view == viewLogin {
			return a, nil
		}
		return a.signOut("your session ended, sign in again"), nil

	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err == nil {
			a, cmd = a.switchTo(viewFlights)
			a.notice = "signed in as " + msg.username
		}
		return a, cmd

	case openFlightMsg:
		var cmd tea.Cmd
		a.tickets, cmd = a.tickets.open(msg.flight)
		if a.view == viewOrders {
			a.orders = a.orders.stop()
		}
		a.view = viewTickets
		return a, cmd

	case orderCreatedMsg:
		var cmd tea.Cmd
		a.tickets, cmd = a.tickets.Update(msg)
		if msg.err == nil {
			a.notice = fmt.Sprintf("order #%d booked, pay before the countdown ends", msg.order.ID)
		}
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.view == viewLogin {
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg)
			return a, cmd
		}
		if a.helpOpen {
			switch msg.String() {
			case "h", "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "h", "?":
				a.helpOpen = true
				return a, nil
			case "1":
				return a.switchTo(viewFlights)
			case "2":
				return a.switchTo(viewTickets)
			case "3":
				return a.switchTo(viewOrders)
			case "4":
				return a.switchTo(viewPayments)
			case "L":
				if err := a.client.Logout(); err != nil {
					a.notice = "sign out failed: " + err.Error()
					return a, nil
				}
				return a.signOut("signed out"), nil
			case "esc":
				if a.view == viewTickets {
					return a.switchTo(viewFlights)
				}
			}
		}
	}

	// Results are delivered to the screen that asked for them, whichever is
	// showing.
	var cmd tea.Cmd
	switch msg.(type) {
	case flightsLoadedMsg:
		a.flights, cmd = a.flights.Update(msg)
		return a, cmd
	case ticketsLoadedMsg:
		a.tickets, cmd = a.tickets.Update(msg)
		return a, cmd
	case ordersLoadedMsg, countdownTickMsg, reconciledMsg, checkoutMsg, checkoutCopiedMsg:
		a.orders, cmd = a.orders.Update(msg)
		return a, cmd
	case paymentsLoadedMsg:
		a.payments, cmd = a.payments.Update(msg)
		return a, cmd
	case registerResultMsg:
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewFlights:
		a.flights, cmd = a.flights.Update(msg)
	case viewTickets:
		a.tickets, cmd = a.tickets.Update(msg)
	case viewOrders:
		a.orders, cmd = a.orders.Update(msg)
	case viewPayments:
		a.payments, cmd = a.payments.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	return a.view == viewFlights && a.flights.editing
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"
	if a.client != nil {
		if name := a.client.Session().Username(); name != "" && a.view != viewLogin {
			who := metaStyle.Render(name)
			pad := (a.width - lipgloss.Width(who)) / 2
			if pad < 0 {
				pad = 0
			}
			header = strings.Repeat(" ", logoPad) + logo + "\n" + strings.Repeat(" ", pad) + who
		}
	}

	tabs := a.tabBar()

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		help = " " + a.login.helpKeys()
	case viewFlights:
		body = a.flights.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + a.flights.helpKeys() + "  " + helpEntry("h", "help")
	case viewTickets:
		body = a.tickets.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + a.tickets.helpKeys() + "  " + helpEntry("esc", "flights")
	case viewOrders:
		body = a.orders.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + a.orders.helpKeys() + "  " + helpEntry("h", "help")
	case viewPayments:
		body = a.payments.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("r", "reload") + "  " + helpEntry("h", "help")
	}
	if a.view != viewLogin {
		help += "  " + helpEntry("L", "sign out") + "  " + helpEntry("q", "quit")
	}

	if a.helpOpen {
		body = helpView(a.opts.APIURL)
		help = " " + helpEntry("esc", "close")
	}

	notice := ""
	if a.notice != "" {
		notice = " " + accentStyle.Render(a.notice)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabs, body, notice, help)
}

func (a App) tabBar() string {
	if a.view == viewLogin {
		return ""
	}
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Flights", viewFlights},
		{"2", "Tickets", viewTickets},
		{"3", "Orders", viewOrders},
		{"4", "Payments", viewPayments},
	}

	colWidth := a.width / len(tabs)
	var bar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		// Orders tab: number of running countdowns
		if t.v == viewOrders {
			if n := a.tracker.Len(); n > 0 {
				label += " " + countdownStyle.Render(fmt.Sprintf("●%d", n))
			}
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		bar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	return bar.String()
}
