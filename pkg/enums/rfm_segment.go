package enums

// RFMSegment is the recency/frequency/monetary bucket of a customer.
type RFMSegment string

const (
	RFMSegmentChampions RFMSegment = "champions"
	RFMSegmentLoyal     RFMSegment = "loyal"
	RFMSegmentPotential RFMSegment = "potential"
	RFMSegmentAtRisk    RFMSegment = "at_risk"
	RFMSegmentLost      RFMSegment = "lost"
)

// AllRFMSegments lists every segment in display order.
var AllRFMSegments = []RFMSegment{
	RFMSegmentChampions,
	RFMSegmentLoyal,
	RFMSegmentPotential,
	RFMSegmentAtRisk,
	RFMSegmentLost,
}

// String implements fmt.Stringer.
func (s RFMSegment) String() string {
	return string(s)
}
