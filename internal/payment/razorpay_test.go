package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientCreateOrder(t *testing.T) {
	var gotAuthUser, gotAuthPass string
	var gotBody orderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(orderResponse{
			ID:       "order_test123",
			Amount:   gotBody.Amount,
			Currency: gotBody.Currency,
			Receipt:  gotBody.Receipt,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "rzp_key", "rzp_secret")
	order, err := c.CreateOrder(context.Background(), 75000, "INR", "booking_42")
	assert.NoError(t, err)

	assert.Equal(t, "order_test123", order.ID)
	// amounts pass through as minor units, untouched
	assert.Equal(t, uint32(75000), order.AmountPaise)
	assert.Equal(t, uint32(75000), gotBody.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "booking_42", order.Receipt)
	assert.Equal(t, "rzp_key", gotAuthUser)
	assert.Equal(t, "rzp_secret", gotAuthPass)
}

func TestClientCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad_key", "bad_secret")
	_, err := c.CreateOrder(context.Background(), 1000, "INR", "r1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClientCreateOrderMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "s")
	_, err := c.CreateOrder(context.Background(), 1000, "INR", "r1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}
