package scoring

// CostModel is the operational cost estimate applied per active customer.
type CostModel struct {
	FixedCost   int     // per customer per month
	VariablePct float64 // fraction of revenue
}

type ProfitMetrics struct {
	Revenue   int     `json:"revenue"`
	Cost      int     `json:"cost"`
	Profit    int     `json:"profit"`
	MarginPct float64 `json:"margin_percentage"`
}

// Profit computes the per-customer profitability estimate. Zero revenue
// zeroes everything; the margin percentage is floored at 0.
func Profit(revenue int, model CostModel) ProfitMetrics {
	if revenue <= 0 {
		return ProfitMetrics{}
	}
	variable := int(float64(revenue) * model.VariablePct)
	cost := model.FixedCost + variable
	profit := revenue - cost
	margin := float64(profit) / float64(revenue) * 100
	if margin < 0 {
		margin = 0
	}
	return ProfitMetrics{Revenue: revenue, Cost: cost, Profit: profit, MarginPct: margin}
}
