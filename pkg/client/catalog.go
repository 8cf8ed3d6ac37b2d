package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

// ListOptions narrows a list call. Zero values are omitted.
type ListOptions struct {
	Page    int
	Search  string
	Filters map[string]string
}

func (o ListOptions) encode(path string) string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	keys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := o.Filters[k]; v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func listPage[T any](ctx context.Context, c *Client, op, path string, opts ListOptions) (*domain.Page[T], error) {
	var page domain.Page[T]
	if err := c.get(ctx, opts.encode(path), &page); err != nil {
		return nil, fmt.Errorf("client.%s: %w", op, err)
	}
	return &page, nil
}

func getOne[T any](ctx context.Context, c *Client, op, path string, id int64) (*T, error) {
	var out T
	if err := c.get(ctx, fmt.Sprintf("%s%d/", path, id), &out); err != nil {
		return nil, fmt.Errorf("client.%s: %w", op, err)
	}
	return &out, nil
}

// ListFlights returns one page of flights. Filters: origin, destination, status, airplane.
func (c *Client) ListFlights(ctx context.Context, opts ListOptions) (*domain.Page[domain.Flight], error) {
	return listPage[domain.Flight](ctx, c, "ListFlights", "/api/flights/", opts)
}

// GetFlight fetches a single flight.
func (c *Client) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	return getOne[domain.Flight](ctx, c, "GetFlight", "/api/flights/", id)
}

// ListAirports returns one page of airports.
func (c *Client) ListAirports(ctx context.Context, opts ListOptions) (*domain.Page[domain.Airport], error) {
	return listPage[domain.Airport](ctx, c, "ListAirports", "/api/airports-generic/", opts)
}

// GetAirport fetches a single airport.
func (c *Client) GetAirport(ctx context.Context, id int64) (*domain.Airport, error) {
	return getOne[domain.Airport](ctx, c, "GetAirport", "/api/airports-generic/", id)
}

func (c *Client) ListCountries(ctx context.Context, opts ListOptions) (*domain.Page[domain.Country], error) {
	return listPage[domain.Country](ctx, c, "ListCountries", "/api/countries-generic/", opts)
}

func (c *Client) ListAirlines(ctx context.Context, opts ListOptions) (*domain.Page[domain.Airline], error) {
	return listPage[domain.Airline](ctx, c, "ListAirlines", "/api/airlines/", opts)
}

func (c *Client) ListAirplanes(ctx context.Context, opts ListOptions) (*domain.Page[domain.Airplane], error) {
	return listPage[domain.Airplane](ctx, c, "ListAirplanes", "/api/airplanes/", opts)
}

// ListTickets returns one page of tickets. Filters: flight, status.
func (c *Client) ListTickets(ctx context.Context, opts ListOptions) (*domain.Page[domain.Ticket], error) {
	return listPage[domain.Ticket](ctx, c, "ListTickets", "/api/tickets/", opts)
}

// GetTicket fetches a single ticket.
func (c *Client) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	return getOne[domain.Ticket](ctx, c, "GetTicket", "/api/tickets/", id)
}
