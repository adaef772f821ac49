package insights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildForecastGrowth(t *testing.T) {
	f := BuildForecast(
		decimal.NewFromInt(1000),
		decimal.NewFromInt(800),
		decimal.NewFromInt(600),
	)

	assert.True(t, f.GrowthRate.Equal(decimal.NewFromFloat(0.25)), "growth rate %s", f.GrowthRate)
	assert.True(t, f.ForecastAmount.Equal(decimal.NewFromInt(1250)), "forecast %s", f.ForecastAmount)
}

func TestBuildForecastShrinking(t *testing.T) {
	f := BuildForecast(
		decimal.NewFromInt(500),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(1000),
	)

	assert.True(t, f.GrowthRate.Equal(decimal.NewFromFloat(-0.5)), "growth rate %s", f.GrowthRate)
	assert.True(t, f.ForecastAmount.Equal(decimal.NewFromInt(250)), "forecast %s", f.ForecastAmount)
}

func TestBuildForecastNoPreviousMonth(t *testing.T) {
	f := BuildForecast(
		decimal.NewFromInt(900),
		decimal.Zero,
		decimal.NewFromInt(600),
	)

	assert.True(t, f.GrowthRate.IsZero())
	assert.True(t, f.ForecastAmount.Equal(decimal.NewFromInt(500)), "forecast %s", f.ForecastAmount)
}

func TestBuildForecastAllZero(t *testing.T) {
	f := BuildForecast(decimal.Zero, decimal.Zero, decimal.Zero)

	assert.True(t, f.GrowthRate.IsZero())
	assert.True(t, f.ForecastAmount.IsZero())
}
