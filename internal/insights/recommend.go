package insights

import (
	"fmt"

	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// Recommendation is one suggested next action for the sales team.
type Recommendation struct {
	Icon        string                       `json:"icon"`
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Priority    enums.RecommendationPriority `json:"priority"`
	Target      string                       `json:"target"`
}

// RecommendationInput aggregates the trigger counts the rules inspect.
type RecommendationInput struct {
	OpenOrders int
	AtRisk     int
	Champions  int
	Potential  int
}

// BuildRecommendations evaluates the action rules in fixed order. A rule
// with a zero trigger count contributes nothing.
func BuildRecommendations(input RecommendationInput) []Recommendation {
	recs := []Recommendation{}

	if input.OpenOrders > 0 {
		recs = append(recs, Recommendation{
			Icon:        "📋",
			Title:       "Follow up on open orders",
			Description: fmt.Sprintf("%d open orders are waiting on payment or confirmation.", input.OpenOrders),
			Priority:    enums.RecommendationPriorityHigh,
			Target:      "orders",
		})
	}

	if input.AtRisk > 0 {
		recs = append(recs, Recommendation{
			Icon:        "⚠️",
			Title:       "Reactivate at-risk customers",
			Description: fmt.Sprintf("%d valuable customers have gone quiet. Reach out before they churn.", input.AtRisk),
			Priority:    enums.RecommendationPriorityHigh,
			Target:      "customers",
		})
	}

	if input.Champions > 0 {
		recs = append(recs, Recommendation{
			Icon:        "🏆",
			Title:       "Reward your champions",
			Description: fmt.Sprintf("%d top customers deserve a loyalty gesture.", input.Champions),
			Priority:    enums.RecommendationPriorityMedium,
			Target:      "customers",
		})
	}

	if input.Potential > 0 {
		recs = append(recs, Recommendation{
			Icon:        "📈",
			Title:       "Upsell potential customers",
			Description: fmt.Sprintf("%d customers show room for larger orders.", input.Potential),
			Priority:    enums.RecommendationPriorityMedium,
			Target:      "customers",
		})
	}

	return recs
}
