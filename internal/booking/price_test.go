package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sporthub/sporthub-api/internal/model"
)

func TestWindowMinutes(t *testing.T) {
	mins, err := WindowMinutes("10:00", "11:30")
	assert.NoError(t, err)
	assert.Equal(t, 90, mins)

	// midnight crossing is a plain duration, not a negative span
	mins, err = WindowMinutes("23:00", "00:30")
	assert.NoError(t, err)
	assert.Equal(t, 90, mins)

	_, err = WindowMinutes("10:00", "10:00")
	assert.ErrorIs(t, err, ErrEmptyWindow)

	_, err = WindowMinutes("25:00", "10:00")
	assert.ErrorIs(t, err, ErrBadTime)

	_, err = WindowMinutes("10:00", "10:60")
	assert.ErrorIs(t, err, ErrBadTime)
}

func TestFacilityAmount(t *testing.T) {
	// 90 minutes at 50000 paise/hour
	amount, err := FacilityAmount(50000, "18:00", "19:30")
	assert.NoError(t, err)
	assert.Equal(t, uint32(75000), amount)

	// midnight-crossing window prices by duration
	amount, err = FacilityAmount(50000, "23:00", "00:30")
	assert.NoError(t, err)
	assert.Equal(t, uint32(75000), amount)

	// division happens last: 40 minutes at 100 paise/hour is 66, not 0
	amount, err = FacilityAmount(100, "10:00", "10:40")
	assert.NoError(t, err)
	assert.Equal(t, uint32(66), amount)
}

func TestEventAmount(t *testing.T) {
	assert.Equal(t, uint32(60000), EventAmount(20000, 3))
	assert.Equal(t, uint32(20000), EventAmount(20000, 1))
}

func TestCoachAmount(t *testing.T) {
	// one hour at 100000 paise with the ELITE discount
	amount, err := CoachAmount(100000, "07:00", "08:00", DiscountForTier(model.TierElite))
	assert.NoError(t, err)
	assert.Equal(t, uint32(75000), amount)

	// PRO tier pays 10% less
	amount, err = CoachAmount(100000, "07:00", "08:00", DiscountForTier(model.TierPro))
	assert.NoError(t, err)
	assert.Equal(t, uint32(90000), amount)

	// no membership pays full rate
	amount, err = CoachAmount(100000, "07:00", "08:00", 0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(100000), amount)

	// discount over 100 clamps instead of underflowing
	amount, err = CoachAmount(100000, "07:00", "08:00", 150)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), amount)
}

func TestDiscountForTier(t *testing.T) {
	assert.Equal(t, uint32(25), DiscountForTier(model.TierElite))
	assert.Equal(t, uint32(10), DiscountForTier(model.TierPro))
	assert.Equal(t, uint32(0), DiscountForTier(model.TierBasic))
	assert.Equal(t, uint32(0), DiscountForTier(""))
}
