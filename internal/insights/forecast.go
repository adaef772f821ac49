package insights

import "github.com/shopspring/decimal"

// Forecast projects next month's revenue from the three trailing calendar
// months.
type Forecast struct {
	CurrentMonth   decimal.Decimal `json:"current_month"`
	PreviousMonth  decimal.Decimal `json:"previous_month"`
	TwoMonthsAgo   decimal.Decimal `json:"two_months_ago"`
	GrowthRate     decimal.Decimal `json:"growth_rate"`
	ForecastAmount decimal.Decimal `json:"forecast"`
}

// BuildForecast derives growth from the last two closed comparisons. When
// the previous month had no revenue the growth rate is undefined, so the
// projection falls back to the plain three-month average.
func BuildForecast(current, previous, twoAgo decimal.Decimal) Forecast {
	f := Forecast{
		CurrentMonth:  current,
		PreviousMonth: previous,
		TwoMonthsAgo:  twoAgo,
		GrowthRate:    decimal.Zero,
	}

	if previous.IsPositive() {
		f.GrowthRate = current.Sub(previous).Div(previous)
		f.ForecastAmount = current.Mul(decimal.NewFromInt(1).Add(f.GrowthRate)).Round(2)
		return f
	}

	three := decimal.NewFromInt(3)
	f.ForecastAmount = current.Add(previous).Add(twoAgo).Div(three).Round(2)
	return f
}
