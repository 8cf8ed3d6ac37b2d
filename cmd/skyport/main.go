package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/internal/booking"
	"github.com/tarasboiko2005/AirportAPI/internal/browser"
	"github.com/tarasboiko2005/AirportAPI/internal/config"
	"github.com/tarasboiko2005/AirportAPI/internal/logging"
	"github.com/tarasboiko2005/AirportAPI/internal/session"
	"github.com/tarasboiko2005/AirportAPI/internal/tui"
	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var errNotSignedIn = errors.New("not signed in, run: skyport login")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries everything a subcommand needs. Tests build one around an
// httptest server and an in-memory session.
type cli struct {
	cfg     *config.Config
	store   *session.Store
	client  *client.Client
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	openURL func(string) error
	copyURL func(string) error
}

func run(args []string) error {
	ephemeral := false
	if len(args) > 0 && args[0] == "--ephemeral" {
		ephemeral = true
		args = args[1:]
	}
	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Println("skyport " + version)
		return nil
	case "help", "--help", "-h":
		printHelp()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	interactive := cmd == "" || cmd == "tui"
	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if interactive {
		// The TUI owns the terminal.
		logCfg.File = cfg.Log.File
	}
	closeLog, err := logging.Init(logCfg)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	var backend session.Backend = &session.MemoryBackend{}
	if !ephemeral {
		if backend, err = session.NewBoltBackend(cfg.SessionPath); err != nil {
			return err
		}
	}
	store, err := session.Open(backend)
	if err != nil {
		return err
	}

	log := logging.With("cli")
	onEnded := func() {
		log.Info().Msg("session ended, credentials cleared")
		if !interactive {
			fmt.Fprintln(os.Stderr, "Your session has ended. Run: skyport login") //nolint:errcheck
		}
	}
	c := client.New(cfg.APIURL, store, client.WithTimeout(cfg.HTTP.Timeout), client.OnSessionEnded(onEnded))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli{
		cfg:     cfg,
		store:   store,
		client:  c,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
		openURL: browser.Open,
		copyURL: clipboard.WriteAll,
	}
	if interactive {
		return app.runTUI()
	}
	return app.dispatch(ctx, cmd, args)
}

func (a *cli) runTUI() error {
	m := tui.NewApp(a.client, tui.Options{
		APIURL:        a.cfg.APIURL,
		PaymentMethod: a.cfg.Booking.PaymentMethod,
		Currency:      a.cfg.Booking.Currency,
		TickInterval:  a.cfg.Booking.TickInterval,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func (a *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		return a.runLogout()
	case "register":
		return a.runRegister(ctx, args)
	case "status":
		return a.runStatus()
	}

	// Everything below talks to protected endpoints.
	if !a.store.Authenticated() {
		return errNotSignedIn
	}
	switch cmd {
	case "flights":
		return a.runFlights(ctx, args)
	case "airports":
		return a.runAirports(ctx, args)
	case "tickets":
		return a.runTickets(ctx, args)
	case "orders":
		return a.runOrders(ctx, args)
	case "book":
		return a.runBook(ctx, args)
	case "pay":
		return a.runPay(ctx, args)
	case "payments":
		return a.runPayments(ctx)
	}
	return fmt.Errorf("unknown command %q, see: skyport help", cmd)
}

func (a *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// prompt reads one line from stdin, trimming the newline.
func (a *cli) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label) //nolint:errcheck
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *cli) runLogin(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *username == "" {
		if *username, err = a.prompt("username: "); err != nil {
			return err
		}
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	if _, err := a.client.Login(ctx, *username, password); err != nil {
		if client.IsUnauthorized(err) {
			return errors.New("login failed: wrong username or password")
		}
		return err
	}
	printWelcome(a.out, *username)
	return nil
}

func (a *cli) runLogout() error {
	if !a.store.Authenticated() {
		fmt.Fprintln(a.out, "Already logged out.") //nolint:errcheck
		return nil
	}
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.") //nolint:errcheck
	return nil
}

func (a *cli) runRegister(ctx context.Context, args []string) error {
	fs := a.flags("register")
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *username == "" {
		if *username, err = a.prompt("username: "); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = a.prompt("email: "); err != nil {
			return err
		}
	}
	password, err := a.prompt("password: ")
	if err != nil {
		return err
	}
	if err := a.client.Register(ctx, *username, *email, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created. Run: skyport login -u %s\n", *username, *username) //nolint:errcheck
	return nil
}

func (a *cli) runStatus() error {
	if !a.store.Authenticated() {
		fmt.Fprintf(a.out, "Not signed in (%s).\n", a.cfg.APIURL) //nolint:errcheck
		return nil
	}
	name := a.store.Username()
	if name == "" {
		name = "(unknown user)"
	}
	fmt.Fprintf(a.out, "Signed in as %s at %s\n", name, a.cfg.APIURL) //nolint:errcheck

	claims, err := a.store.Claims()
	if err != nil {
		fmt.Fprintln(a.out, "  access token: not a readable JWT") //nolint:errcheck
		return nil
	}
	if claims.UserID != "" {
		fmt.Fprintf(a.out, "  user id:      %s\n", claims.UserID) //nolint:errcheck
	}
	if !claims.ExpiresAt.IsZero() {
		state := "valid until"
		if claims.Expired(time.Now()) {
			// The next request refreshes it.
			state = "expired at"
		}
		fmt.Fprintf(a.out, "  access token: %s %s\n", state, claims.ExpiresAt.Local().Format(time.RFC1123)) //nolint:errcheck
	}
	return nil
}

func (a *cli) runFlights(ctx context.Context, args []string) error {
	fs := a.flags("flights")
	origin := fs.String("origin", "", "origin airport id")
	destination := fs.String("destination", "", "destination airport id")
	status := fs.String("status", "", "flight status")
	search := fs.String("search", "", "search text")
	page := fs.Int("page", 0, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.ListFlights(ctx, client.ListOptions{
		Page:    *page,
		Search:  *search,
		Filters: map[string]string{"origin": *origin, "destination": *destination, "status": *status},
	})
	if err != nil {
		return err
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(a.out, "No flights.") //nolint:errcheck
		return nil
	}
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-6s %-8s %-12s %-18s %s", "ID", "FLIGHT", "ROUTE", "DEPARTS", "STATUS"))) //nolint:errcheck
	for _, f := range res.Results {
		fmt.Fprintf(a.out, "%-6d %-8s %-12s %-18s %s\n", f.ID, f.Number, f.Route(), f.DepartureTime.Local().Format("Jan 02 15:04"), f.Status) //nolint:errcheck
	}
	printMore(a.out, res.HasNext(), *page)
	return nil
}

func (a *cli) runAirports(ctx context.Context, args []string) error {
	fs := a.flags("airports")
	search := fs.String("search", "", "search text")
	page := fs.Int("page", 0, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.ListAirports(ctx, client.ListOptions{Page: *page, Search: *search})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-6s %-5s %-32s %s", "ID", "IATA", "NAME", "COUNTRY"))) //nolint:errcheck
	for _, ap := range res.Results {
		country := ""
		if ap.Country != nil {
			country = ap.Country.Name
		}
		fmt.Fprintf(a.out, "%-6d %-5s %-32s %s\n", ap.ID, ap.IATACode, ap.Name, country) //nolint:errcheck
	}
	printMore(a.out, res.HasNext(), *page)
	return nil
}

func (a *cli) runTickets(ctx context.Context, args []string) error {
	fs := a.flags("tickets")
	flight := fs.Int64("flight", 0, "flight id")
	status := fs.String("status", "", "ticket status (available, booked, sold)")
	page := fs.Int("page", 0, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filters := map[string]string{"status": *status}
	if *flight > 0 {
		filters["flight"] = strconv.FormatInt(*flight, 10)
	}
	res, err := a.client.ListTickets(ctx, client.ListOptions{Page: *page, Filters: filters})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-6s %-7s %-6s %10s  %s", "ID", "FLIGHT", "SEAT", "PRICE", "STATUS"))) //nolint:errcheck
	for _, t := range res.Results {
		fmt.Fprintf(a.out, "%-6d %-7d %-6s %10s  %s\n", t.ID, t.Flight, t.SeatNumber, t.Price, t.Status) //nolint:errcheck
	}
	printMore(a.out, res.HasNext(), *page)
	return nil
}

func (a *cli) runOrders(ctx context.Context, args []string) error {
	fs := a.flags("orders")
	watch := fs.Bool("watch", false, "follow reservation countdowns until they are paid or lapse")
	if err := fs.Parse(args); err != nil {
		return err
	}
	orders, err := a.client.ListAllOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders.") //nolint:errcheck
		return nil
	}
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-7s %-10s %14s  %-6s %s", "ORDER", "STATUS", "AMOUNT", "SEATS", "LEFT"))) //nolint:errcheck
	for _, o := range orders {
		left := ""
		if secs, ok := o.Countdown(); ok {
			left = booking.FormatRemaining(secs)
		}
		fmt.Fprintf(a.out, "%-7s %-10s %14s  %-6d %s\n", fmt.Sprintf("#%d", o.ID), o.Status, o.Amount+" "+o.Currency, len(o.Tickets), left) //nolint:errcheck
	}
	if !*watch {
		return nil
	}
	return a.watchOrders(ctx, orders)
}

// watchOrders follows the countdowns of booked orders, reconciling with the
// server as they lapse, until none remain or ctx is cancelled.
func (a *cli) watchOrders(ctx context.Context, orders []domain.Order) error {
	tr := booking.NewTracker(a.client,
		booking.WithInterval(a.cfg.Booking.TickInterval),
		booking.StopWhen(client.IsSessionEnded),
	)
	tr.Observe(orders)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	ticker := time.NewTicker(tr.Interval())
	defer ticker.Stop()
	for {
		if tr.Len() == 0 {
			fmt.Fprintln(a.out, "No reservations awaiting payment.") //nolint:errcheck
			cancel()
			<-done
			return nil
		}
		select {
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-ticker.C:
			fmt.Fprintln(a.out, formatSnapshot(tr.Snapshot())) //nolint:errcheck
		}
	}
}

func formatSnapshot(entries []booking.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		left := booking.FormatRemaining(e.Remaining)
		if e.State == booking.ExpiredPending {
			left = "expired"
		}
		parts = append(parts, fmt.Sprintf("#%d %s", e.OrderID, left))
	}
	return strings.Join(parts, "  ")
}

func (a *cli) runBook(ctx context.Context, args []string) error {
	fs := a.flags("book")
	tickets := fs.String("tickets", "", "comma-separated ticket ids")
	method := fs.String("method", a.cfg.Booking.PaymentMethod, "payment method (card, paypal, cash)")
	currency := fs.String("currency", a.cfg.Booking.Currency, "currency (USD, EUR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(*tickets)
	if err != nil {
		return err
	}
	order, err := a.client.CreateOrder(ctx, client.CreateOrderRequest{
		Tickets:       ids,
		PaymentMethod: *method,
		Currency:      strings.ToUpper(*currency),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order #%d booked: %s %s\n", order.ID, order.Amount, order.Currency) //nolint:errcheck
	if secs, ok := order.Countdown(); ok {
		fmt.Fprintf(a.out, "Pay within %s: skyport pay %d\n", booking.FormatRemaining(secs), order.ID) //nolint:errcheck
	}
	return nil
}

func (a *cli) runPay(ctx context.Context, args []string) error {
	// The order id may come before or after the flags.
	var idArg string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		idArg, args = args[0], args[1:]
	}
	fs := a.flags("pay")
	copyLink := fs.Bool("copy", false, "copy the checkout link to the clipboard")
	noBrowser := fs.Bool("no-browser", false, "print the checkout link without opening it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if idArg == "" {
		idArg = fs.Arg(0)
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("usage: skyport pay ORDER_ID [--copy] [--no-browser]")
	}

	cs, err := a.client.CreateCheckoutSession(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Checkout for order #%d:\n  %s\n", id, cs.URL) //nolint:errcheck
	if *copyLink {
		if err := a.copyURL(cs.URL); err != nil {
			fmt.Fprintf(a.errOut, "Could not copy the link: %v\n", err) //nolint:errcheck
		} else {
			fmt.Fprintln(a.out, "Link copied to clipboard.") //nolint:errcheck
		}
	}
	if !*noBrowser {
		if err := a.openURL(cs.URL); err != nil {
			fmt.Fprintln(a.out, "Could not open browser. Visit the link above manually.") //nolint:errcheck
		}
	}
	return nil
}

func (a *cli) runPayments(ctx context.Context) error {
	res, err := a.client.ListPayments(ctx, client.ListOptions{})
	if err != nil {
		return err
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(a.out, "No payments.") //nolint:errcheck
		return nil
	}
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-8s %-7s %14s  %s", "PAYMENT", "ORDER", "AMOUNT", "STATUS"))) //nolint:errcheck
	for _, p := range res.Results {
		fmt.Fprintf(a.out, "%-8s %-7s %14s  %s\n", fmt.Sprintf("#%d", p.ID), fmt.Sprintf("#%d", p.Order), p.Amount+" "+p.Currency, p.Status) //nolint:errcheck
	}
	return nil
}

// parseIDs parses "3, 4,5" into ticket ids.
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid ticket id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("usage: skyport book --tickets 12,13")
	}
	return ids, nil
}

func printMore(w io.Writer, hasNext bool, page int) {
	if !hasNext {
		return
	}
	if page < 1 {
		page = 1
	}
	fmt.Fprintf(w, "more results: --page %d\n", page+1) //nolint:errcheck
}
