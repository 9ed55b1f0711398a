package pnl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/314yush/yolo-backend/internal/models"
)

func TestDefaultTakeProfit_Long(t *testing.T) {
	tp, err := DefaultTakeProfit(60000, true, 100)
	assert.NoError(t, err)
	assert.InDelta(t, 60600, tp, 1e-9, "1% move doubles collateral at 100x")
}

func TestDefaultTakeProfit_Short(t *testing.T) {
	tp, err := DefaultTakeProfit(60000, false, 75)
	assert.NoError(t, err)
	assert.InDelta(t, 59200, tp, 1e-9)
}

func TestDefaultTakeProfit_TightensWithLeverage(t *testing.T) {
	low, err := DefaultTakeProfit(2000, true, 75)
	assert.NoError(t, err)
	high, err := DefaultTakeProfit(2000, true, 250)
	assert.NoError(t, err)
	assert.Less(t, high, low, "higher leverage pulls the target toward entry")
	assert.Greater(t, high, 2000.0)
}

func TestDefaultTakeProfit_InvalidLeverage(t *testing.T) {
	_, err := DefaultTakeProfit(60000, true, 0)
	assert.ErrorIs(t, err, models.ErrInvalidLeverage)
	_, err = DefaultTakeProfit(60000, false, -10)
	assert.ErrorIs(t, err, models.ErrInvalidLeverage)
}
