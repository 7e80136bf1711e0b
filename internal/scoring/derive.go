package scoring

import (
	"time"

	"github.com/nettalink/insights-backend/internal/normalize"
	"github.com/nettalink/insights-backend/internal/types"
)

// NoPaymentDays is the sentinel substituted when a customer has no parseable
// last-payment date: it pushes payment recency past every scoring threshold.
const NoPaymentDays = 999

// Derived carries every per-request computed metric for one customer.
// Nothing in here is ever written back to the canonical dataset.
type Derived struct {
	Customer *types.Customer

	Price int

	RegDate    time.Time
	HasRegDate bool
	PayDate    time.Time
	HasPayDate bool

	TenureDays       int
	DaysSincePayment int

	ChurnScore   float64
	RiskCategory string
	RFM          RFMResult
	Segment      string
}

// Derive normalizes and scores the full population in one pass. RFM uses
// quantile bins over the whole population, so it cannot be computed
// row-by-row.
func Derive(customers []types.Customer, now time.Time) []Derived {
	out := make([]Derived, len(customers))
	days := make([]float64, len(customers))
	tenure := make([]float64, len(customers))
	prices := make([]float64, len(customers))

	for i := range customers {
		c := &customers[i]
		d := Derived{Customer: c}

		d.Price = normalize.CleanPrice(c.Price)
		d.RegDate, d.HasRegDate = normalize.ParseFlexibleDate(c.Registration)
		d.PayDate, d.HasPayDate = normalize.ParseFlexibleDate(c.LastPayment)

		if d.HasRegDate {
			d.TenureDays = normalize.DaysSince(d.RegDate, now)
		}
		if d.HasPayDate {
			d.DaysSincePayment = normalize.DaysSince(d.PayDate, now)
		} else {
			d.DaysSincePayment = NoPaymentDays
		}

		d.ChurnScore = ChurnScore(d.DaysSincePayment, d.TenureDays, c.Status == types.StatusOff)
		d.RiskCategory = RiskCategory(d.ChurnScore)

		days[i] = float64(d.DaysSincePayment)
		tenure[i] = float64(d.TenureDays)
		prices[i] = float64(d.Price)
		out[i] = d
	}

	rfm := RFMScores(days, tenure, prices)
	for i := range out {
		out[i].RFM = rfm[i]
		out[i].Segment = AssignSegment(out[i].Customer.Status, out[i].TenureDays, rfm[i].Sum(), out[i].ChurnScore)
	}
	return out
}
