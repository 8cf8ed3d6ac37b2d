package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

const (
	ordersPath = "/api/orders/"
	// maxOrderPages bounds ListAllOrders against a server that never stops
	// returning a next link.
	maxOrderPages = 200
)

// CreateOrderRequest books tickets into a new order.
type CreateOrderRequest struct {
	Tickets       []int64 `json:"tickets"`
	PaymentMethod string  `json:"payment_method"`
	Currency      string  `json:"currency"`
}

// Validate checks the request before it is sent.
func (r CreateOrderRequest) Validate() error {
	if len(r.Tickets) == 0 {
		return errors.New("at least one ticket is required")
	}
	if !domain.ValidPaymentMethod(r.PaymentMethod) {
		return fmt.Errorf("unsupported payment method %q", r.PaymentMethod)
	}
	if !domain.ValidCurrency(r.Currency) {
		return fmt.Errorf("unsupported currency %q", r.Currency)
	}
	return nil
}

// ListOrders returns one page of the caller's orders.
func (c *Client) ListOrders(ctx context.Context, opts ListOptions) (*domain.Page[domain.Order], error) {
	return listPage[domain.Order](ctx, c, "ListOrders", ordersPath, opts)
}

// ListAllOrders walks every page of the caller's orders. The result is the
// complete set the server holds, which is what countdown reconciliation
// needs.
func (c *Client) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	var all []domain.Order
	path := ordersPath
	for i := 0; i < maxOrderPages; i++ {
		var page domain.Page[domain.Order]
		if err := c.get(ctx, path, &page); err != nil {
			return nil, fmt.Errorf("client.ListAllOrders: %w", err)
		}
		all = append(all, page.Results...)
		if !page.HasNext() {
			return all, nil
		}
		path = page.Next
	}
	return nil, fmt.Errorf("client.ListAllOrders: more than %d pages", maxOrderPages)
}

// GetOrder fetches a single order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return getOne[domain.Order](ctx, c, "GetOrder", ordersPath, id)
}

// CreateOrder books the given tickets.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("client.CreateOrder: %w", err)
	}
	var order domain.Order
	if err := c.post(ctx, ordersPath, req, &order); err != nil {
		return nil, fmt.Errorf("client.CreateOrder: %w", err)
	}
	return &order, nil
}

// ListPayments returns one page of the caller's payments.
func (c *Client) ListPayments(ctx context.Context, opts ListOptions) (*domain.Page[domain.Payment], error) {
	return listPage[domain.Payment](ctx, c, "ListPayments", "/payments/payments/", opts)
}

// CreateCheckoutSession starts an external checkout for a booked order.
func (c *Client) CreateCheckoutSession(ctx context.Context, orderID int64) (*domain.CheckoutSession, error) {
	body := map[string]string{"order_id": strconv.FormatInt(orderID, 10)}
	var out domain.CheckoutSession
	if err := c.post(ctx, "/payments/checkout-session/", body, &out); err != nil {
		return nil, fmt.Errorf("client.CreateCheckoutSession: %w", err)
	}
	if out.URL == "" {
		return nil, errors.New("client.CreateCheckoutSession: response carried no checkout URL")
	}
	return &out, nil
}
