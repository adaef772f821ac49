package enums

// RecommendationPriority ranks a suggested next action.
type RecommendationPriority string

const (
	RecommendationPriorityHigh   RecommendationPriority = "high"
	RecommendationPriorityMedium RecommendationPriority = "medium"
)

// String implements fmt.Stringer.
func (p RecommendationPriority) String() string {
	return string(p)
}
