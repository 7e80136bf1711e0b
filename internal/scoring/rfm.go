package scoring

import "sort"

// quantile returns the p-quantile (0..1) of sorted values using linear
// interpolation between closest ranks.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// scoreQuantiles buckets values into 5 quantile bins and scores each value
// 1..5 by bin. When ties collapse the quantile edges, it falls back to
// equal-width bins over the value range. reverse flips the scale so the
// lowest bucket scores 5 (used for recency, where fewer days is better).
func scoreQuantiles(values []float64, reverse bool) []int {
	scores := make([]int, len(values))
	if len(values) == 0 {
		return scores
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	bounds := []float64{
		quantile(sorted, 0.2),
		quantile(sorted, 0.4),
		quantile(sorted, 0.6),
		quantile(sorted, 0.8),
	}
	distinct := bounds[0] < bounds[1] && bounds[1] < bounds[2] && bounds[2] < bounds[3]

	if !distinct {
		// Equal-width fallback.
		min, max := sorted[0], sorted[len(sorted)-1]
		if min == max {
			// Indistinguishable population, everyone is mid-scale.
			for i := range scores {
				scores[i] = 3
			}
			return scores
		}
		width := (max - min) / 5
		bounds = []float64{min + width, min + 2*width, min + 3*width, min + 4*width}
	}

	for i, v := range values {
		bin := 4
		for b, edge := range bounds {
			if v <= edge {
				bin = b
				break
			}
		}
		if reverse {
			scores[i] = 5 - bin
		} else {
			scores[i] = bin + 1
		}
	}
	return scores
}

// RFMResult holds the per-customer component scores. Combined range is
// 3..15.
type RFMResult struct {
	R, F, M int
}

func (r RFMResult) Sum() int { return r.R + r.F + r.M }

// RFMScores scores the whole population at once: recency from days since
// last payment (recent = 5), frequency from tenure days, monetary from
// normalized price. Inputs must be index-aligned.
func RFMScores(daysSincePayment, tenureDays, prices []float64) []RFMResult {
	r := scoreQuantiles(daysSincePayment, true)
	f := scoreQuantiles(tenureDays, false)
	m := scoreQuantiles(prices, false)
	out := make([]RFMResult, len(r))
	for i := range out {
		out[i] = RFMResult{R: r[i], F: f[i], M: m[i]}
	}
	return out
}
