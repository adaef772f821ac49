package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/internal/orders"
	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// neverOrderedDays stands in for customers without any order so that the
// "lost" recency rules match them.
const neverOrderedDays = 100000

// ScoredCustomer is one customer enriched with derived classifications.
type ScoredCustomer struct {
	CustomerID     string               `json:"customer_id"`
	CompanyName    string               `json:"company_name"`
	Revenue        decimal.Decimal      `json:"revenue"`
	OrderCount     int                  `json:"order_count"`
	ContactCount   int                  `json:"contact_count"`
	DaysSinceOrder *int                 `json:"days_since_order,omitempty"`
	Stage          enums.LifecycleStage `json:"stage"`
	Segment        enums.RFMSegment     `json:"segment"`
	Score          int                  `json:"score"`
}

// AtRiskCustomer reports a customer whose engagement is decaying.
type AtRiskCustomer struct {
	CustomerID  string          `json:"customer_id"`
	CompanyName string          `json:"company_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	HealthScore int             `json:"health_score"`
	DaysSince   int             `json:"days_since_order"`
}

// LifecycleStage classifies a customer by engagement volume.
func LifecycleStage(orderCount, contactCount int) enums.LifecycleStage {
	switch {
	case orderCount >= 4:
		return enums.LifecycleStageVIP
	case orderCount >= 1:
		return enums.LifecycleStageActive
	case contactCount >= 1:
		return enums.LifecycleStageLead
	default:
		return enums.LifecycleStageProspect
	}
}

// DaysSinceOrder converts the last order date into whole days relative to
// now. Customers without orders get neverOrderedDays.
func DaysSinceOrder(lastOrderAt *time.Time, now time.Time) int {
	if lastOrderAt == nil {
		return neverOrderedDays
	}
	days := int(now.Sub(*lastOrderAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CompositeScore blends revenue share (max 40), order frequency (max 30)
// and recency (max 30) into a 0-100 score.
func CompositeScore(revenue, maxRevenue decimal.Decimal, orderCount, daysSince int) int {
	revPart := decimal.Zero
	if maxRevenue.IsPositive() {
		revPart = revenue.Div(maxRevenue).Mul(decimal.NewFromInt(100))
		if revPart.GreaterThan(decimal.NewFromInt(40)) {
			revPart = decimal.NewFromInt(40)
		}
	}

	freqPart := decimal.NewFromInt(int64(orderCount) * 5)
	if freqPart.GreaterThan(decimal.NewFromInt(30)) {
		freqPart = decimal.NewFromInt(30)
	}

	recPart := decimal.NewFromInt(30).Sub(decimal.NewFromInt(int64(daysSince)).Div(decimal.NewFromInt(10)))
	if recPart.IsNegative() {
		recPart = decimal.Zero
	}

	score := int(revPart.Add(freqPart).Add(recPart).Floor().IntPart())
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// healthValue decays from 100 with a third of a point per day without an
// order. The un-truncated value is what the at-risk threshold compares
// against; HealthScore floors it for display only.
func healthValue(daysSince int) decimal.Decimal {
	health := decimal.NewFromInt(100).Sub(decimal.NewFromInt(int64(daysSince)).Div(decimal.NewFromInt(3)))
	if health.IsNegative() {
		return decimal.Zero
	}
	return health
}

// HealthScore reports the engagement health as a whole number.
func HealthScore(daysSince int) int {
	return int(healthValue(daysSince).Floor().IntPart())
}

// atRiskRevenueFloor is the lifetime revenue below which a quiet customer
// is not worth a reactivation push.
var atRiskRevenueFloor = decimal.NewFromInt(1000)

// atRiskHealthCeiling is compared against the real-valued health, not the
// floored display score, so the boundary lands where the decay crosses 40.
var atRiskHealthCeiling = decimal.NewFromInt(40)

// IsAtRisk flags customers that were valuable but have gone quiet.
func IsAtRisk(revenue decimal.Decimal, daysSince int) bool {
	if daysSince <= 60 {
		return false
	}
	return healthValue(daysSince).LessThan(atRiskHealthCeiling) && revenue.GreaterThan(atRiskRevenueFloor)
}

var (
	championsRevenue = decimal.NewFromInt(5000)
	potentialRevenue = decimal.NewFromInt(3000)
)

// ClassifySegment assigns exactly one RFM segment; rules are evaluated in
// order and the first match wins. Customers matching nothing are treated as
// potential (recent, low frequency, low revenue).
func ClassifySegment(revenue decimal.Decimal, orderCount, daysSince int) enums.RFMSegment {
	switch {
	case daysSince < 30 && orderCount >= 5 && revenue.GreaterThan(championsRevenue):
		return enums.RFMSegmentChampions
	case daysSince < 60 && orderCount >= 3:
		return enums.RFMSegmentLoyal
	case revenue.GreaterThan(potentialRevenue) && orderCount < 3:
		return enums.RFMSegmentPotential
	case daysSince > 60 && daysSince < 120:
		return enums.RFMSegmentAtRisk
	case daysSince >= 120:
		return enums.RFMSegmentLost
	default:
		return enums.RFMSegmentPotential
	}
}

// ScoreCustomer derives every classification for one snapshot.
func ScoreCustomer(snap orders.CustomerSnapshot, maxRevenue decimal.Decimal, now time.Time) ScoredCustomer {
	days := DaysSinceOrder(snap.LastOrderAt, now)

	scored := ScoredCustomer{
		CustomerID:   snap.CustomerID.String(),
		CompanyName:  snap.CompanyName,
		Revenue:      snap.Revenue,
		OrderCount:   snap.OrderCount,
		ContactCount: snap.ContactCount,
		Stage:        LifecycleStage(snap.OrderCount, snap.ContactCount),
		Segment:      ClassifySegment(snap.Revenue, snap.OrderCount, days),
		Score:        CompositeScore(snap.Revenue, maxRevenue, snap.OrderCount, days),
	}
	if snap.LastOrderAt != nil {
		scored.DaysSinceOrder = &days
	}
	return scored
}

// TopByRevenue returns the n highest-revenue entries, ranked descending.
func TopByRevenue(scored []ScoredCustomer, n int) []ScoredCustomer {
	sorted := make([]ScoredCustomer, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
