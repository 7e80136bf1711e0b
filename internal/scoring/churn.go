// Package scoring derives per-customer business metrics: churn risk, RFM
// scores, segment labels and profitability. Everything here is pure
// computation over already-normalized values; nothing is persisted.
package scoring

// Churn risk weights. Payment recency dominates; status and tenure adjust.
const (
	weightPaymentCritical = 40 // > 180 days since payment
	weightPaymentHigh     = 25 // 90-180 days
	weightPaymentMedium   = 10 // 30-90 days
	weightStatusOff       = 30
	creditNewCustomer     = 10 // tenure < 30 days
	creditLoyal           = 5  // tenure > 365 days
)

// ChurnScore accumulates the weighted risk rules and clamps to [0,100].
func ChurnScore(daysSincePayment, tenureDays int, statusOff bool) float64 {
	score := 0.0
	switch {
	case daysSincePayment > 180:
		score += weightPaymentCritical
	case daysSincePayment > 90:
		score += weightPaymentHigh
	case daysSincePayment > 30:
		score += weightPaymentMedium
	}
	if statusOff {
		score += weightStatusOff
	}
	if tenureDays < 30 {
		score -= creditNewCustomer
	}
	if tenureDays > 365 {
		score -= creditLoyal
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// RiskCategory maps a churn score to the five-band report view. The
// segmentation rules use coarser 70/50 thresholds on purpose; the two views
// are independent.
func RiskCategory(score float64) string {
	switch {
	case score >= 80:
		return "Critical"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Medium"
	case score >= 20:
		return "Low"
	default:
		return "Very Low"
	}
}
