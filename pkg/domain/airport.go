package domain

// Country groups airports.
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Airport is a location flights depart from and arrive at.
type Airport struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	IATACode  string   `json:"iata_code"`
	Country   *Country `json:"country,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}
