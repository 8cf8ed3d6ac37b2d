package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/internal/booking"
	"github.com/tarasboiko2005/AirportAPI/internal/session"
	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

func newSignedInApp(t *testing.T) App {
	t.Helper()
	store := session.NewMemory()
	if err := store.Save("access", "refresh"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.SetUsername("olena"); err != nil {
		t.Fatalf("SetUsername() error: %v", err)
	}
	c := client.New("http://127.0.0.1:1", store)
	a := NewApp(c, Options{APIURL: "http://127.0.0.1:1"})
	a.width = 100
	a.height = 40
	return a
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func bookedOrder(id int64, secs int) domain.Order {
	return domain.Order{
		ID:            id,
		Status:        domain.OrderBooked,
		Amount:        "240.00",
		Currency:      domain.CurrencyUSD,
		TimeRemaining: &secs,
		CreatedAt:     time.Now(),
	}
}

func TestAppStartsOnLoginWhenSignedOut(t *testing.T) {
	a := NewApp(nil, Options{})
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Errorf("expected sign-in form, got:\n%s", a.View())
	}
}

func TestAppStartsOnFlightsWhenSignedIn(t *testing.T) {
	a := newSignedInApp(t)
	if a.view != viewFlights {
		t.Fatalf("view = %d, want flights", a.view)
	}
	if !strings.Contains(a.View(), "olena") {
		t.Error("expected username in header")
	}
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"2", viewTickets},
		{"3", viewOrders},
		{"4", viewPayments},
		{"1", viewFlights},
	}

	a := newSignedInApp(t)
	for _, tc := range tests {
		model, _ := a.Update(key(tc.key))
		a = model.(App)
		if a.view != tc.wantView {
			t.Errorf("after key %q: view = %d, want %d", tc.key, a.view, tc.wantView)
		}
	}
}

func TestAppLoginKeysDoNotSwitchTabs(t *testing.T) {
	a := NewApp(nil, Options{})
	model, _ := a.Update(key("3"))
	a = model.(App)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	if a.login.username != "3" {
		t.Errorf("username = %q, want the typed key", a.login.username)
	}
}

func TestAppCountdownTicksWhileOrdersOpen(t *testing.T) {
	a := newSignedInApp(t)
	model, _ := a.Update(key("3"))
	a = model.(App)

	model, _ = a.Update(ordersLoadedMsg{gen: a.orders.gen, orders: []domain.Order{bookedOrder(31, 130)}})
	a = model.(App)
	if !strings.Contains(a.View(), "2:10") {
		t.Fatalf("expected 2:10 countdown, got:\n%s", a.View())
	}

	model, cmd := a.Update(countdownTickMsg{gen: a.orders.gen})
	a = model.(App)
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
	if secs, _ := a.tracker.Remaining(31); secs != 129 {
		t.Errorf("remaining = %d, want 129", secs)
	}
	if !strings.Contains(a.View(), "2:09") {
		t.Errorf("expected 2:09 countdown, got:\n%s", a.View())
	}
}

func TestAppCountdownStopsWhenLeavingOrders(t *testing.T) {
	a := newSignedInApp(t)
	model, _ := a.Update(key("3"))
	a = model.(App)
	model, _ = a.Update(ordersLoadedMsg{gen: a.orders.gen, orders: []domain.Order{bookedOrder(31, 130)}})
	a = model.(App)
	staleGen := a.orders.gen

	model, _ = a.Update(key("1"))
	a = model.(App)

	model, cmd := a.Update(countdownTickMsg{gen: staleGen})
	a = model.(App)
	if cmd != nil {
		t.Error("a tick from a closed view must not reschedule")
	}
	if secs, _ := a.tracker.Remaining(31); secs != 130 {
		t.Errorf("remaining = %d, want 130 (no tick applied)", secs)
	}

	// Reopening starts a fresh timer; the old generation stays stale.
	model, _ = a.Update(key("3"))
	a = model.(App)
	if a.orders.gen == staleGen {
		t.Error("reopening reused the old timer generation")
	}
}

func TestAppExpiryStartsReconcile(t *testing.T) {
	a := newSignedInApp(t)
	model, _ := a.Update(key("3"))
	a = model.(App)
	model, _ = a.Update(ordersLoadedMsg{gen: a.orders.gen, orders: []domain.Order{bookedOrder(1, 1), bookedOrder(2, 1)}})
	a = model.(App)

	model, _ = a.Update(countdownTickMsg{gen: a.orders.gen})
	a = model.(App)
	if a.tracker.State(1) != booking.ExpiredPending || a.tracker.State(2) != booking.ExpiredPending {
		t.Fatalf("expected both orders pending reconciliation")
	}
	if !strings.Contains(a.View(), "expired") {
		t.Errorf("expected expired marker, got:\n%s", a.View())
	}

	// Reconciliation result retires both.
	paid := domain.Order{ID: 1, Status: domain.OrderPaid, Amount: "240.00", Currency: "USD"}
	cancelled := domain.Order{ID: 2, Status: domain.OrderCancelled, Amount: "240.00", Currency: "USD"}
	a.tracker.Observe([]domain.Order{paid, cancelled})
	model, _ = a.Update(reconciledMsg{gen: a.orders.gen, orders: []domain.Order{paid, cancelled}})
	a = model.(App)
	if a.tracker.Len() != 0 {
		t.Errorf("tracked = %d, want 0", a.tracker.Len())
	}
	if !strings.Contains(a.View(), "cancelled") {
		t.Errorf("expected refreshed statuses, got:\n%s", a.View())
	}
}

func TestAppSessionEndedReturnsToLogin(t *testing.T) {
	a := newSignedInApp(t)
	model, _ := a.Update(key("3"))
	a = model.(App)
	model, _ = a.Update(ordersLoadedMsg{gen: a.orders.gen, orders: []domain.Order{bookedOrder(31, 600)}})
	a = model.(App)
	gen := a.orders.gen

	model, _ = a.Update(sessionEndedMsg{})
	a = model.(App)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	if a.tracker.Len() != 0 {
		t.Error("tracker should be emptied on sign-out")
	}
	if !strings.Contains(a.View(), "session ended") {
		t.Errorf("expected notice, got:\n%s", a.View())
	}
	if _, cmd := a.Update(countdownTickMsg{gen: gen}); cmd != nil {
		t.Error("tick from before sign-out must be dropped")
	}
}

func TestAppDropsOrderResultsFromBeforeSignOut(t *testing.T) {
	a := newSignedInApp(t)
	model, _ := a.Update(key("3"))
	a = model.(App)
	gen := a.orders.gen

	model, _ = a.Update(key("L"))
	a = model.(App)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}

	model, _ = a.Update(reconciledMsg{gen: gen, orders: []domain.Order{bookedOrder(7, 300)}})
	a = model.(App)
	model, _ = a.Update(ordersLoadedMsg{gen: gen, orders: []domain.Order{bookedOrder(8, 300)}})
	a = model.(App)

	if len(a.orders.orders) != 0 {
		t.Errorf("orders view holds %d orders from the previous session", len(a.orders.orders))
	}
	if a.tracker.Len() != 0 {
		t.Errorf("tracker tracks %d orders from the previous session", a.tracker.Len())
	}
}

func TestOrdersDropsResultsFromClosedView(t *testing.T) {
	m := newOrdersModel(nil, booking.NewTracker(nil))
	m, _ = m.start()
	stale := m.gen
	m = m.stop()
	m, _ = m.start()

	m, _ = m.Update(ordersLoadedMsg{gen: stale, orders: []domain.Order{bookedOrder(8, 300)}})
	if len(m.orders) != 0 || !m.loading {
		t.Error("a load started by a closed view must be ignored")
	}
	m, _ = m.Update(ordersLoadedMsg{gen: m.gen, orders: []domain.Order{bookedOrder(9, 300)}})
	if len(m.orders) != 1 || m.orders[0].ID != 9 {
		t.Errorf("orders = %+v, want the current load", m.orders)
	}
	m, _ = m.Update(reconciledMsg{gen: stale, orders: nil})
	if len(m.orders) != 1 {
		t.Error("a stale reconciliation must not replace the list")
	}
}

func TestErrorCmd(t *testing.T) {
	if errorCmd(nil) != nil {
		t.Error("nil error should produce no command")
	}
	if errorCmd(errors.New("HTTP 500")) != nil {
		t.Error("ordinary errors stay with the screen")
	}
	ended := fmt.Errorf("client.ListAllOrders: %w", fmt.Errorf("%w: %w", client.ErrSessionEnded, &client.HTTPError{StatusCode: 401}))
	cmd := errorCmd(ended)
	if cmd == nil {
		t.Fatal("expected a command for a terminal failure")
	}
	if _, ok := cmd().(sessionEndedMsg); !ok {
		t.Error("expected sessionEndedMsg")
	}
}

func TestAppOpenFlightShowsTickets(t *testing.T) {
	a := newSignedInApp(t)
	f := domain.Flight{ID: 5, Number: "PS101", OriginIATA: "KBP", DestinationIATA: "WAW"}
	model, cmd := a.Update(openFlightMsg{flight: f})
	a = model.(App)
	if a.view != viewTickets {
		t.Fatalf("view = %d, want tickets", a.view)
	}
	if cmd == nil {
		t.Error("expected ticket load command")
	}

	model, _ = a.Update(ticketsLoadedMsg{flightID: 5, tickets: []domain.Ticket{
		{ID: 11, SeatNumber: "1A", Price: "120.00", Status: domain.TicketAvailable},
		{ID: 12, SeatNumber: "1B", Price: "120.00", Status: domain.TicketSold},
	}})
	a = model.(App)
	view := a.View()
	if !strings.Contains(view, "KBP → WAW") || !strings.Contains(view, "1A") {
		t.Errorf("unexpected tickets view:\n%s", view)
	}
}

func TestTicketsSelectionAndBooking(t *testing.T) {
	m := newTicketsModel(nil, domain.PaymentCard, domain.CurrencyEUR)
	m.flight = &domain.Flight{ID: 5}
	m, _ = m.Update(ticketsLoadedMsg{flightID: 5, tickets: []domain.Ticket{
		{ID: 11, SeatNumber: "1A", Status: domain.TicketAvailable},
		{ID: 12, SeatNumber: "1B", Status: domain.TicketSold},
	}})

	m, cmd := m.Update(key("b"))
	if cmd != nil || !strings.Contains(m.statusMsg, "select") {
		t.Errorf("booking with nothing selected: cmd=%v status=%q", cmd != nil, m.statusMsg)
	}

	m, _ = m.Update(key(" "))
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key(" "))
	if got := m.selectedIDs(); len(got) != 1 || got[0] != 11 {
		t.Fatalf("selected = %v, want [11]", got)
	}
	if !strings.Contains(m.statusMsg, "sold") {
		t.Errorf("status = %q, want sold seat notice", m.statusMsg)
	}

	m, cmd = m.Update(key("b"))
	if cmd == nil || !m.booking {
		t.Fatal("expected booking command")
	}

	m, _ = m.Update(orderCreatedMsg{order: &domain.Order{ID: 44}})
	if m.booking || len(m.selectedIDs()) != 0 {
		t.Error("selection should clear after a booking")
	}
	if !strings.Contains(m.statusMsg, "#44") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestTicketsIgnoresStaleFlightResults(t *testing.T) {
	m := newTicketsModel(nil, domain.PaymentCard, domain.CurrencyUSD)
	m.flight = &domain.Flight{ID: 5}
	m.loading = true
	m, _ = m.Update(ticketsLoadedMsg{flightID: 4, tickets: []domain.Ticket{{ID: 1}}})
	if len(m.tickets) != 0 || !m.loading {
		t.Error("results for another flight must be ignored")
	}
}

func TestLoginRequiresFields(t *testing.T) {
	m := newLoginModel(nil)
	m.focus = fieldPassword
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("submit with empty fields should not call the server")
	}
	if !m.failed || !strings.Contains(m.statusMsg, "required") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestLoginToggleRegisterAddsEmail(t *testing.T) {
	m := newLoginModel(nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.register {
		t.Fatal("ctrl+r should switch to account creation")
	}
	if len(m.fields()) != 3 {
		t.Errorf("fields = %d, want 3", len(m.fields()))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldEmail {
		t.Errorf("focus = %d, want email", m.focus)
	}
}

func TestLoginFailureClearsPassword(t *testing.T) {
	m := newLoginModel(nil)
	m.username, m.password, m.busy = "olena", "wrong", true
	m, _ = m.Update(loginResultMsg{username: "olena", err: &client.HTTPError{StatusCode: 401, Message: "No active account found with the given credentials"}})
	if m.busy || m.password != "" {
		t.Error("failed login should unlock the form and clear the password")
	}
	if !strings.Contains(m.View(), "No active account") {
		t.Errorf("expected server message, got:\n%s", m.View())
	}
}

func TestOrdersPayRejectsNonBooked(t *testing.T) {
	tr := booking.NewTracker(nil)
	m := newOrdersModel(nil, tr)
	m, _ = m.Update(ordersLoadedMsg{gen: m.gen, orders: []domain.Order{{ID: 3, Status: domain.OrderPaid}}})
	m, cmd := m.Update(key("p"))
	if cmd != nil {
		t.Error("paid orders cannot be checked out")
	}
	if !strings.Contains(m.statusMsg, "paid") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestOrdersCheckoutOpensBrowser(t *testing.T) {
	tr := booking.NewTracker(nil)
	m := newOrdersModel(nil, tr)
	m, _ = m.Update(ordersLoadedMsg{gen: m.gen, orders: []domain.Order{bookedOrder(7, 600)}})

	m, _ = m.Update(checkoutMsg{orderID: 7, url: "https://checkout.example/cs_1"})
	if m.lastURL != "https://checkout.example/cs_1" || !strings.Contains(m.statusMsg, "#7") {
		t.Errorf("lastURL=%q status=%q", m.lastURL, m.statusMsg)
	}

	m, _ = m.Update(checkoutMsg{orderID: 7, url: "https://checkout.example/cs_2", err: errors.New("open browser: no display")})
	if !strings.Contains(m.statusMsg, "copy") {
		t.Errorf("status = %q, want copy hint", m.statusMsg)
	}
	if !strings.Contains(m.helpKeys(), "copy link") {
		t.Error("help should offer copying the link")
	}
}
