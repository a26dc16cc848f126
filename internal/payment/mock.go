package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is a deterministic in-memory Gateway for tests.  Orders
// receive sequential ids and are recorded for later inspection.  Set
// Fail to make CreateOrder return an error without minting anything.
type MockGateway struct {
	mu     sync.Mutex
	seq    int
	orders map[string]Order

	Fail error // when non-nil, CreateOrder returns this error
}

// NewMockGateway returns an empty mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{orders: make(map[string]Order)}
}

// CreateOrder mints a mock order with a sequential id.
func (g *MockGateway) CreateOrder(_ context.Context, amountPaise uint32, currency, receipt string) (Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Fail != nil {
		return Order{}, g.Fail
	}
	g.seq++
	o := Order{
		ID:          fmt.Sprintf("order_mock%06d", g.seq),
		AmountPaise: amountPaise,
		Currency:    currency,
		Receipt:     receipt,
	}
	g.orders[o.ID] = o
	return o, nil
}

// Order returns a previously minted order by id.
func (g *MockGateway) Order(id string) (Order, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	return o, ok
}

// Count reports how many orders were minted.
func (g *MockGateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.orders)
}
