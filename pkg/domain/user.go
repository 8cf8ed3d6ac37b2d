package domain

import "time"

// User is the account embedded in order responses and returned by register.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// TokenPair is the credential pair returned by the login endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Payment records a checkout attempt for an order.
type Payment struct {
	ID                  int64     `json:"id"`
	User                int64     `json:"user"`
	Order               int64     `json:"order"`
	StripeSessionID     string    `json:"stripe_session_id"`
	StripePaymentIntent string    `json:"stripe_payment_intent,omitempty"`
	Amount              string    `json:"amount"`
	Currency            string    `json:"currency"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CheckoutSession is the external payment redirect for an order.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
