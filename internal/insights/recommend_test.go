package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortnersoft/crm-backend/pkg/enums"
)

func TestBuildRecommendationsAllTriggers(t *testing.T) {
	recs := BuildRecommendations(RecommendationInput{
		OpenOrders: 3,
		AtRisk:     2,
		Champions:  1,
		Potential:  4,
	})

	require.Len(t, recs, 4)

	assert.Equal(t, "Follow up on open orders", recs[0].Title)
	assert.Equal(t, enums.RecommendationPriorityHigh, recs[0].Priority)
	assert.Equal(t, "orders", recs[0].Target)

	assert.Equal(t, "Reactivate at-risk customers", recs[1].Title)
	assert.Equal(t, enums.RecommendationPriorityHigh, recs[1].Priority)

	assert.Equal(t, "Reward your champions", recs[2].Title)
	assert.Equal(t, enums.RecommendationPriorityMedium, recs[2].Priority)

	assert.Equal(t, "Upsell potential customers", recs[3].Title)
	assert.Equal(t, enums.RecommendationPriorityMedium, recs[3].Priority)
	assert.Equal(t, "customers", recs[3].Target)
}

func TestBuildRecommendationsSkipsZeroTriggers(t *testing.T) {
	recs := BuildRecommendations(RecommendationInput{AtRisk: 1})

	require.Len(t, recs, 1)
	assert.Equal(t, "Reactivate at-risk customers", recs[0].Title)
}

func TestBuildRecommendationsEmpty(t *testing.T) {
	recs := BuildRecommendations(RecommendationInput{})
	assert.Empty(t, recs)
}
