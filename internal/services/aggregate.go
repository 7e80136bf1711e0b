package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// bucket accumulates per-group revenue/count/score sums for the report
// endpoints.
type bucket struct {
	Name    string
	Count   int
	Revenue int
	Cost    int
	Profit  int
	Score   float64 // churn or margin accumulator, meaning depends on caller
}

type bucketMap map[string]*bucket

func (m bucketMap) get(name string) *bucket {
	b, ok := m[name]
	if !ok {
		b = &bucket{Name: name}
		m[name] = b
	}
	return b
}

// sortedBy returns the buckets ordered by the given less function, capped
// at limit when limit > 0.
func (m bucketMap) sortedBy(less func(a, b *bucket) bool, limit int) []*bucket {
	out := make([]*bucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func byRevenueDesc(a, b *bucket) bool { return a.Revenue > b.Revenue }
func byProfitDesc(a, b *bucket) bool  { return a.Profit > b.Profit }
func byCountDesc(a, b *bucket) bool   { return a.Count > b.Count }

// avgScoreDesc orders by mean score (Score / Count), highest first.
func avgScoreDesc(a, b *bucket) bool {
	return a.Score/float64(maxInt(a.Count, 1)) > b.Score/float64(maxInt(b.Count, 1))
}

// ratio returns a/b*100, NaN when b is zero. The response layer coerces
// NaN to null uniformly, matching the empty-group contract.
func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b * 100
}

// mean returns sum/count, NaN when count is zero.
func mean(sum float64, count int) float64 {
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// meanOrZero is mean with the NaN edge collapsed to 0, for callers that
// report 0 instead of null for empty groups.
func meanOrZero(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// formatRupiah renders "Rp 1,234,567" the way the dashboard shows money.
func formatRupiah(v int) string {
	s := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "Rp " + strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// topCounts returns the top-n value counts of the given values as a map.
func topCounts(values []string, n int) map[string]int {
	counts := map[string]int{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		counts[v]++
	}
	return topNCounts(counts, n)
}

// topNCounts keeps the n largest entries of a count map.
func topNCounts(counts map[string]int, n int) map[string]int {
	if n <= 0 || len(counts) <= n {
		return counts
	}
	type kv struct {
		k string
		v int
	}
	ordered := make([]kv, 0, len(counts))
	for k, v := range counts {
		ordered = append(ordered, kv{k, v})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].v > ordered[j].v })
	out := make(map[string]int, n)
	for _, e := range ordered[:n] {
		out[e.k] = e.v
	}
	return out
}
