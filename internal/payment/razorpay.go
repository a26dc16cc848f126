package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Razorpay Orders API using basic auth with the
// key id and secret.  The base URL is configurable so tests can point
// it at an httptest server.
type Client struct {
	baseURL string
	keyID   string
	secret  string
	http    *http.Client
}

// NewClient constructs a Razorpay client.  baseURL should not carry a
// trailing slash; the production value is "https://api.razorpay.com".
func NewClient(baseURL, keyID, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type orderRequest struct {
	Amount   uint32 `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   uint32 `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder mints an order for the given amount.  Non-2xx responses
// and transport failures are returned as errors with no local side
// effects; callers treat them as retryable by re-initiating checkout.
func (c *Client) CreateOrder(ctx context.Context, amountPaise uint32, currency, receipt string) (Order, error) {
	body, err := json.Marshal(orderRequest{Amount: amountPaise, Currency: currency, Receipt: receipt})
	if err != nil {
		return Order{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay: create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded slice of the body for diagnostics only.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Order{}, fmt.Errorf("razorpay: create order: status %d: %s", resp.StatusCode, snippet)
	}

	var or orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return Order{}, fmt.Errorf("razorpay: decode order response: %w", err)
	}
	if or.ID == "" {
		return Order{}, fmt.Errorf("razorpay: order response missing id")
	}
	return Order{ID: or.ID, AmountPaise: or.Amount, Currency: or.Currency, Receipt: or.Receipt}, nil
}
