package domain

// Ticket statuses reported by the backend.
const (
	TicketAvailable = "available"
	TicketBooked    = "booked"
	TicketSold      = "sold"
)

// Ticket is a single seat on a flight. Orders embed ticket snapshots.
type Ticket struct {
	ID         int64          `json:"id"`
	SeatNumber string         `json:"seat_number"`
	Price      string         `json:"price"` // decimal string
	Status     string         `json:"status"`
	Flight     int64          `json:"flight"`
	Order      *int64         `json:"order,omitempty"`
	FlightInfo *FlightSummary `json:"flight_info,omitempty"`
}

// Available reports whether the ticket can be added to a new order.
func (t Ticket) Available() bool {
	return t.Status == TicketAvailable
}
