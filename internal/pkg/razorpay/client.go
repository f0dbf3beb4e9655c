package razorpay

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

var ErrOrderCreateFailed = errors.New("razorpay order creation failed")

// Config holds Razorpay credentials
type Config struct {
	KeyID     string
	KeySecret string
}

// Client wraps the Razorpay SDK for order creation
type Client struct {
	api *razorpay.Client
}

// NewClient creates a Razorpay client
func NewClient(cfg Config) *Client {
	return &Client{api: razorpay.NewClient(cfg.KeyID, cfg.KeySecret)}
}

// Order is the subset of the provider order we use
type Order struct {
	ID       string
	Amount   int64 // smallest currency unit (paise for INR)
	Currency string
}

// CreateOrder creates an order at Razorpay. Amount is in the smallest currency
// unit. Notes are attached to the order for reconciliation.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: missing order id in response", ErrOrderCreateFailed)
	}

	order := &Order{ID: id, Amount: amount, Currency: currency}
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}
	return order, nil
}
