package scoring

import "github.com/nettalink/insights-backend/internal/types"

// Segment labels. Every customer receives exactly one.
const (
	SegmentChampions = "Champions"
	SegmentLoyal     = "Loyal"
	SegmentPotential = "Potential"
	SegmentAtRisk    = "At Risk"
	SegmentChurned   = "Churned"
	SegmentNew       = "New"
)

// Segments lists all labels in display order.
var Segments = []string{
	SegmentChampions, SegmentLoyal, SegmentPotential,
	SegmentAtRisk, SegmentChurned, SegmentNew,
}

// AssignSegment applies the priority-ordered segmentation rules. Inactive
// customers land in Churned or At Risk depending on churn score; active
// ones are split by tenure, RFM sum and churn score.
func AssignSegment(status string, tenureDays int, rfm int, churn float64) string {
	if status == types.StatusOff {
		if churn > 70 {
			return SegmentChurned
		}
		return SegmentAtRisk
	}
	switch {
	case tenureDays < 30:
		return SegmentNew
	case rfm >= 13 && churn < 30:
		return SegmentChampions
	case rfm >= 10 && churn < 50:
		return SegmentLoyal
	case rfm >= 7 || churn < 50:
		return SegmentPotential
	default:
		return SegmentAtRisk
	}
}

// SimpleSegment is the coarser classification the profitability report
// uses; it looks only at status, tenure and payment recency.
func SimpleSegment(status string, tenureDays, daysSincePayment int) string {
	switch {
	case status == types.StatusOff:
		return SegmentChurned
	case tenureDays < 30:
		return SegmentNew
	case daysSincePayment > 180:
		return SegmentAtRisk
	case daysSincePayment > 90:
		return SegmentPotential
	default:
		return SegmentLoyal
	}
}
