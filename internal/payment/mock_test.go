package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockGateway(t *testing.T) {
	g := NewMockGateway()

	o1, err := g.CreateOrder(context.Background(), 1000, "INR", "r1")
	assert.NoError(t, err)
	o2, err := g.CreateOrder(context.Background(), 2000, "INR", "r2")
	assert.NoError(t, err)

	// sequential, distinct ids
	assert.Equal(t, "order_mock000001", o1.ID)
	assert.Equal(t, "order_mock000002", o2.ID)
	assert.Equal(t, 2, g.Count())

	got, ok := g.Order(o1.ID)
	assert.True(t, ok)
	assert.Equal(t, uint32(1000), got.AmountPaise)
	assert.Equal(t, "r1", got.Receipt)

	_, ok = g.Order("order_unknown")
	assert.False(t, ok)
}

func TestMockGatewayFail(t *testing.T) {
	g := NewMockGateway()
	boom := errors.New("gateway down")
	g.Fail = boom

	_, err := g.CreateOrder(context.Background(), 1000, "INR", "r1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, g.Count())
}
