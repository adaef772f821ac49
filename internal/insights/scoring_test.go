package insights

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ortnersoft/crm-backend/internal/orders"
	"github.com/ortnersoft/crm-backend/pkg/enums"
)

func TestLifecycleStage(t *testing.T) {
	tests := []struct {
		name         string
		orderCount   int
		contactCount int
		want         enums.LifecycleStage
	}{
		{"no activity", 0, 0, enums.LifecycleStageProspect},
		{"contacted only", 0, 2, enums.LifecycleStageLead},
		{"single order", 1, 0, enums.LifecycleStageActive},
		{"three orders", 3, 10, enums.LifecycleStageActive},
		{"four orders", 4, 0, enums.LifecycleStageVIP},
		{"heavy buyer", 12, 3, enums.LifecycleStageVIP},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LifecycleStage(tc.orderCount, tc.contactCount))
		})
	}
}

func TestDaysSinceOrder(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, neverOrderedDays, DaysSinceOrder(nil, now))

	tenDaysAgo := now.AddDate(0, 0, -10)
	assert.Equal(t, 10, DaysSinceOrder(&tenDaysAgo, now))

	future := now.AddDate(0, 0, 2)
	assert.Equal(t, 0, DaysSinceOrder(&future, now))
}

func TestCompositeScoreBounds(t *testing.T) {
	// Revenue share is skipped entirely when nobody has revenue.
	score := CompositeScore(decimal.Zero, decimal.Zero, 0, 0)
	assert.Equal(t, 30, score) // recency only

	// Best possible customer maxes out every component.
	score = CompositeScore(decimal.NewFromInt(9000), decimal.NewFromInt(9000), 6, 0)
	assert.Equal(t, 100, score)

	// Long-dead customer with no revenue bottoms out at zero.
	score = CompositeScore(decimal.Zero, decimal.NewFromInt(9000), 0, 400)
	assert.Equal(t, 0, score)
}

func TestCompositeScoreComponents(t *testing.T) {
	// rev 20% of max -> 20, freq 2*5 -> 10, recency 30 - 50/10 -> 25.
	score := CompositeScore(decimal.NewFromInt(200), decimal.NewFromInt(1000), 2, 50)
	assert.Equal(t, 55, score)

	// rev part is capped at 40 even when dominating the book.
	score = CompositeScore(decimal.NewFromInt(1000), decimal.NewFromInt(1000), 0, 300)
	assert.Equal(t, 40, score)
}

func TestHealthScore(t *testing.T) {
	assert.Equal(t, 100, HealthScore(0))
	assert.Equal(t, 70, HealthScore(90))
	assert.Equal(t, 0, HealthScore(400))

	// 100 - 181/3 = 39.67; the display score floors, it never rounds up.
	assert.Equal(t, 39, HealthScore(181))
	assert.Equal(t, 40, HealthScore(180))
}

func TestIsAtRisk(t *testing.T) {
	// Quiet and valuable: flagged.
	assert.True(t, IsAtRisk(decimal.NewFromInt(1500), 200))

	// Quiet but low value: ignored.
	assert.False(t, IsAtRisk(decimal.NewFromInt(900), 200))

	// Recent order: never at risk regardless of health.
	assert.False(t, IsAtRisk(decimal.NewFromInt(1500), 50))

	// Health still above the threshold at 120 quiet days.
	assert.False(t, IsAtRisk(decimal.NewFromInt(1500), 120))
}

func TestIsAtRiskHealthBoundary(t *testing.T) {
	// Health crosses 40 between day 180 (exactly 40) and day 181 (39.67);
	// the comparison uses the real value, not the floored score.
	assert.False(t, IsAtRisk(decimal.NewFromInt(5000), 180))
	assert.True(t, IsAtRisk(decimal.NewFromInt(5000), 181))
}

func TestCollectAtRiskHealthBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	quietSince := now.AddDate(0, 0, -181)

	snaps := []orders.CustomerSnapshot{
		{
			CustomerID:  uuid.New(),
			CompanyName: "Borderline AG",
			Revenue:     decimal.NewFromInt(5000),
			OrderCount:  3,
			LastOrderAt: &quietSince,
		},
	}

	atRisk := collectAtRisk(snaps, now)

	if assert.Len(t, atRisk, 1) {
		assert.Equal(t, "Borderline AG", atRisk[0].CompanyName)
		assert.Equal(t, 39, atRisk[0].HealthScore)
		assert.Equal(t, 181, atRisk[0].DaysSince)
	}
}

func TestClassifySegment(t *testing.T) {
	tests := []struct {
		name       string
		revenue    int64
		orderCount int
		daysSince  int
		want       enums.RFMSegment
	}{
		{"champion", 6000, 5, 10, enums.RFMSegmentChampions},
		{"loyal regular", 100, 3, 40, enums.RFMSegmentLoyal},
		{"big spender few orders", 4000, 2, 10, enums.RFMSegmentPotential},
		{"going quiet", 100, 1, 90, enums.RFMSegmentAtRisk},
		{"long gone", 100, 1, 150, enums.RFMSegmentLost},
		{"exactly 120 days", 100, 1, 120, enums.RFMSegmentLost},
		{"new small customer", 50, 1, 10, enums.RFMSegmentPotential},
		{"never ordered", 0, 0, neverOrderedDays, enums.RFMSegmentLost},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifySegment(decimal.NewFromInt(tc.revenue), tc.orderCount, tc.daysSince)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifySegmentFirstMatchWins(t *testing.T) {
	// Matches both the champion rule and the loyal rule; champion wins.
	got := ClassifySegment(decimal.NewFromInt(9000), 8, 5)
	assert.Equal(t, enums.RFMSegmentChampions, got)
}

func TestScoreCustomer(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	lastOrder := now.AddDate(0, 0, -10)

	snap := orders.CustomerSnapshot{
		CustomerID:   uuid.New(),
		CompanyName:  "Acme GmbH",
		Revenue:      decimal.NewFromInt(6000),
		OrderCount:   5,
		ContactCount: 2,
		LastOrderAt:  &lastOrder,
	}

	scored := ScoreCustomer(snap, decimal.NewFromInt(6000), now)

	assert.Equal(t, enums.LifecycleStageVIP, scored.Stage)
	assert.Equal(t, enums.RFMSegmentChampions, scored.Segment)
	if assert.NotNil(t, scored.DaysSinceOrder) {
		assert.Equal(t, 10, *scored.DaysSinceOrder)
	}
	// rev 40 (capped) + freq 25 + recency 29.
	assert.Equal(t, 94, scored.Score)
}

func TestScoreCustomerNeverOrdered(t *testing.T) {
	now := time.Now().UTC()
	snap := orders.CustomerSnapshot{
		CustomerID:  uuid.New(),
		CompanyName: "Fresh Lead AG",
	}

	scored := ScoreCustomer(snap, decimal.NewFromInt(1000), now)

	assert.Equal(t, enums.LifecycleStageProspect, scored.Stage)
	assert.Equal(t, enums.RFMSegmentLost, scored.Segment)
	assert.Nil(t, scored.DaysSinceOrder)
	assert.Equal(t, 0, scored.Score)
}

func TestTopByRevenue(t *testing.T) {
	scored := []ScoredCustomer{
		{CompanyName: "small", Revenue: decimal.NewFromInt(100)},
		{CompanyName: "big", Revenue: decimal.NewFromInt(5000)},
		{CompanyName: "mid", Revenue: decimal.NewFromInt(700)},
	}

	top := TopByRevenue(scored, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "big", top[0].CompanyName)
	assert.Equal(t, "mid", top[1].CompanyName)

	// Input order is untouched.
	assert.Equal(t, "small", scored[0].CompanyName)
}
