package domain

import "time"

// OrderStatus is the server-side lifecycle state of an order.
type OrderStatus string

const (
	OrderBooked    OrderStatus = "booked"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
	OrderExpired   OrderStatus = "expired"
)

// Payment methods accepted by the orders endpoint.
const (
	PaymentCard   = "card"
	PaymentPayPal = "paypal"
	PaymentCash   = "cash"
)

// Currencies accepted by the orders endpoint.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// Order is a reservation of one or more tickets.
type Order struct {
	ID            int64       `json:"id"`
	User          *User       `json:"user,omitempty"`
	Amount        string      `json:"amount"` // decimal string, e.g. "240.00"
	Currency      string      `json:"currency"`
	PaymentMethod string      `json:"payment_method"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
	Tickets       []Ticket    `json:"tickets_info,omitempty"`
	// TimeRemaining is the number of seconds before the reservation lapses,
	// as computed by the server at response time. Nil unless booked.
	TimeRemaining *int `json:"time_remaining"`
}

// IsBooked reports whether the order is still awaiting payment.
func (o Order) IsBooked() bool {
	return o.Status == OrderBooked
}

// Countdown returns the server-reported seconds remaining and whether the
// value is meaningful (booked and non-null).
func (o Order) Countdown() (int, bool) {
	if !o.IsBooked() || o.TimeRemaining == nil {
		return 0, false
	}
	secs := *o.TimeRemaining
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// ValidPaymentMethod returns true if m is accepted by the orders endpoint.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCard, PaymentPayPal, PaymentCash:
		return true
	}
	return false
}

// ValidCurrency returns true if c is accepted by the orders endpoint.
func ValidCurrency(c string) bool {
	return c == CurrencyUSD || c == CurrencyEUR
}
