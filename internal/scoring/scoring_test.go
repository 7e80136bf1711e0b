package scoring

import (
	"testing"
	"time"

	"github.com/nettalink/insights-backend/internal/types"
)

func TestChurnScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		days      int
		tenure    int
		statusOff bool
		want      float64
	}{
		{"fresh payer", 10, 100, false, 0},
		{"late 30-90", 45, 100, false, 10},
		{"late 90-180", 120, 100, false, 25},
		{"critical", 200, 100, false, 40},
		{"off adds 30", 200, 100, true, 70},
		{"new customer credit", 200, 10, false, 30},
		{"loyal credit", 200, 400, false, 35},
		{"floor at zero", 10, 10, false, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ChurnScore(tc.days, tc.tenure, tc.statusOff); got != tc.want {
				t.Fatalf("ChurnScore(%d,%d,%v): got=%v want=%v", tc.days, tc.tenure, tc.statusOff, got, tc.want)
			}
		})
	}
}

func TestRiskCategoryBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  string
	}{
		{85, "Critical"},
		{80, "Critical"},
		{79.9, "High"},
		{60, "High"},
		{59, "Medium"},
		{40, "Medium"},
		{39, "Low"},
		{20, "Low"},
		{19, "Very Low"},
		{0, "Very Low"},
	}
	for _, tc := range cases {
		if got := RiskCategory(tc.score); got != tc.want {
			t.Fatalf("RiskCategory(%v): got=%q want=%q", tc.score, got, tc.want)
		}
	}
}

func TestAssignSegment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status string
		tenure int
		rfm    int
		churn  float64
		want   string
	}{
		{"off high churn", types.StatusOff, 400, 5, 75, SegmentChurned},
		{"off low churn", types.StatusOff, 400, 5, 40, SegmentAtRisk},
		{"new before rfm", types.StatusOn, 10, 15, 0, SegmentNew},
		{"champion", types.StatusOn, 400, 13, 20, SegmentChampions},
		{"loyal", types.StatusOn, 400, 10, 40, SegmentLoyal},
		{"potential by rfm", types.StatusOn, 400, 7, 90, SegmentPotential},
		{"potential by churn", types.StatusOn, 400, 3, 40, SegmentPotential},
		{"at risk", types.StatusOn, 400, 3, 60, SegmentAtRisk},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := AssignSegment(tc.status, tc.tenure, tc.rfm, tc.churn)
			if got != tc.want {
				t.Fatalf("AssignSegment: got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestSimpleSegment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status string
		tenure int
		days   int
		want   string
	}{
		{types.StatusOff, 400, 10, SegmentChurned},
		{types.StatusOn, 10, 10, SegmentNew},
		{types.StatusOn, 400, 200, SegmentAtRisk},
		{types.StatusOn, 400, 120, SegmentPotential},
		{types.StatusOn, 400, 10, SegmentLoyal},
	}
	for _, tc := range cases {
		got := SimpleSegment(tc.status, tc.tenure, tc.days)
		if got != tc.want {
			t.Fatalf("SimpleSegment(%q,%d,%d): got=%q want=%q", tc.status, tc.tenure, tc.days, got, tc.want)
		}
	}
}

func TestProfit(t *testing.T) {
	t.Parallel()

	model := CostModel{FixedCost: 50000, VariablePct: 0.20}

	p := Profit(150000, model)
	if p.Cost != 80000 {
		t.Fatalf("cost: got=%d want=80000", p.Cost)
	}
	if p.Profit != 70000 {
		t.Fatalf("profit: got=%d want=70000", p.Profit)
	}
	if p.MarginPct < 46.6 || p.MarginPct > 46.7 {
		t.Fatalf("margin: got=%v want~46.67", p.MarginPct)
	}

	// Below break-even the margin floors at 0 but the loss stays visible.
	p = Profit(50000, model)
	if p.Profit >= 0 {
		t.Fatalf("profit below break-even should be negative, got=%d", p.Profit)
	}
	if p.MarginPct != 0 {
		t.Fatalf("margin floor: got=%v want=0", p.MarginPct)
	}

	if p := Profit(0, model); p != (ProfitMetrics{}) {
		t.Fatalf("zero revenue should zero all metrics, got=%+v", p)
	}
}

func TestRFMScoresQuantiles(t *testing.T) {
	t.Parallel()

	n := 10
	days := make([]float64, n)
	tenure := make([]float64, n)
	prices := make([]float64, n)
	for i := 0; i < n; i++ {
		days[i] = float64((i + 1) * 10)
		tenure[i] = float64((i + 1) * 50)
		prices[i] = float64((i + 1) * 100000)
	}

	scores := RFMScores(days, tenure, prices)
	if len(scores) != n {
		t.Fatalf("length: got=%d want=%d", len(scores), n)
	}
	// Recency is reversed: most recent payer scores highest R.
	if scores[0].R <= scores[n-1].R {
		t.Fatalf("recency not reversed: first=%d last=%d", scores[0].R, scores[n-1].R)
	}
	// Frequency and monetary score with the value.
	if scores[0].F >= scores[n-1].F {
		t.Fatalf("frequency not increasing: first=%d last=%d", scores[0].F, scores[n-1].F)
	}
	if scores[0].M >= scores[n-1].M {
		t.Fatalf("monetary not increasing: first=%d last=%d", scores[0].M, scores[n-1].M)
	}
	for i, s := range scores {
		for _, v := range []int{s.R, s.F, s.M} {
			if v < 1 || v > 5 {
				t.Fatalf("score out of range at %d: %+v", i, s)
			}
		}
	}
}

func TestRFMScoresDegenerate(t *testing.T) {
	t.Parallel()

	// All-equal values cannot form quantile bins; everyone lands mid-scale.
	days := []float64{30, 30, 30}
	tenure := []float64{100, 100, 100}
	prices := []float64{150000, 150000, 150000}
	for _, s := range RFMScores(days, tenure, prices) {
		if s.R != 3 || s.F != 3 || s.M != 3 {
			t.Fatalf("degenerate input should score 3s, got=%+v", s)
		}
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	customers := []types.Customer{
		{
			CustomerID:   "C001",
			Price:        "Rp 150.000",
			Status:       types.StatusOn,
			Registration: "2024-01-01",
			LastPayment:  "2025-05-20",
		},
		{
			CustomerID:   "C002",
			Price:        "Rp 100.000",
			Status:       types.StatusOff,
			Registration: "2024-01-01",
			LastPayment:  types.NoPaymentSentinel,
		},
	}

	derived := Derive(customers, now)
	if len(derived) != 2 {
		t.Fatalf("length: got=%d want=2", len(derived))
	}

	d := derived[0]
	if d.Price != 150000 {
		t.Fatalf("price: got=%d want=150000", d.Price)
	}
	if d.DaysSincePayment != 12 {
		t.Fatalf("days since payment: got=%d want=12", d.DaysSincePayment)
	}

	// No payment date substitutes the sentinel, which pushes every score
	// past critical.
	d = derived[1]
	if d.DaysSincePayment != NoPaymentDays {
		t.Fatalf("sentinel days: got=%d want=%d", d.DaysSincePayment, NoPaymentDays)
	}
	if d.ChurnScore != 65 {
		t.Fatalf("churn for off + never paid: got=%v want=65", d.ChurnScore)
	}
	if d.Segment != SegmentAtRisk {
		t.Fatalf("segment: got=%q want=%q", d.Segment, SegmentAtRisk)
	}
}
