package domain

import "time"

// Flight is a scheduled flight between two airports.
type Flight struct {
	ID              int64     `json:"id"`
	Number          string    `json:"number"`
	Origin          int64     `json:"origin"`
	Destination     int64     `json:"destination"`
	OriginName      string    `json:"origin_name"`
	OriginIATA      string    `json:"origin_iata"`
	DestinationName string    `json:"destination_name"`
	DestinationIATA string    `json:"destination_iata"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	Airplane        int64     `json:"airplane"`
	Status          string    `json:"status"`
}

// FlightSummary is the compact flight embedded in ticket responses.
type FlightSummary struct {
	ID              int64     `json:"id"`
	Number          string    `json:"number"`
	OriginIATA      string    `json:"origin_iata"`
	DestinationIATA string    `json:"destination_iata"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	Status          string    `json:"status"`
}

// Route renders "KBP → WAW".
func (f FlightSummary) Route() string {
	return f.OriginIATA + " → " + f.DestinationIATA
}

// Route renders "KBP → WAW".
func (f Flight) Route() string {
	return f.OriginIATA + " → " + f.DestinationIATA
}

// Airline operates flights.
type Airline struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Country int64  `json:"country,omitempty"`
}

// Airplane is an aircraft assigned to flights.
type Airplane struct {
	ID       int64  `json:"id"`
	Model    string `json:"model"`
	Capacity int    `json:"capacity"`
	Airline  int64  `json:"airline,omitempty"`
}
