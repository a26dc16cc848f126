package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sporthub/sporthub-api/internal/model"
)

func TestCanTransition(t *testing.T) {
	// pending can go anywhere but COMPLETED
	assert.True(t, CanTransition(model.BookingPending, model.BookingConfirmed))
	assert.True(t, CanTransition(model.BookingPending, model.BookingCancelled))
	assert.True(t, CanTransition(model.BookingPending, model.BookingRejected))
	assert.False(t, CanTransition(model.BookingPending, model.BookingCompleted))

	// confirmed can be cancelled or consumed
	assert.True(t, CanTransition(model.BookingConfirmed, model.BookingCancelled))
	assert.True(t, CanTransition(model.BookingConfirmed, model.BookingCompleted))
	assert.False(t, CanTransition(model.BookingConfirmed, model.BookingRejected))
	assert.False(t, CanTransition(model.BookingConfirmed, model.BookingPending))

	// terminal states accept nothing
	for _, from := range []model.BookingStatus{model.BookingCancelled, model.BookingRejected, model.BookingCompleted} {
		for _, to := range []model.BookingStatus{model.BookingPending, model.BookingConfirmed, model.BookingCancelled, model.BookingRejected, model.BookingCompleted} {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(model.BookingPending))
	assert.False(t, IsTerminal(model.BookingConfirmed))
	assert.True(t, IsTerminal(model.BookingCancelled))
	assert.True(t, IsTerminal(model.BookingRejected))
	assert.True(t, IsTerminal(model.BookingCompleted))
}

func TestReleasesCapacity(t *testing.T) {
	assert.True(t, ReleasesCapacity(model.BookingPending, model.BookingCancelled))
	assert.True(t, ReleasesCapacity(model.BookingPending, model.BookingRejected))
	assert.True(t, ReleasesCapacity(model.BookingConfirmed, model.BookingCancelled))

	// completing consumes the capacity instead of freeing it
	assert.False(t, ReleasesCapacity(model.BookingConfirmed, model.BookingCompleted))

	// a released booking holds nothing, releasing again is a no-op
	assert.False(t, ReleasesCapacity(model.BookingCancelled, model.BookingCancelled))
}
