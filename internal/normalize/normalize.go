// Package normalize holds the pure field-level parsers and data-quality
// checks for raw billing-export values. Every function is total: bad input
// yields a zero value or a "missing" verdict, never an error.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/nettalink/insights-backend/internal/types"
)

// Explicit layouts tried in order before the permissive fallback. The
// exports mix ISO dates with long-form Indonesian-locale exports rendered
// in English month names ("16-October-2025").
var dateLayouts = []string{
	"2006-01-02",
	"2-January-2006",
}

// Permissive fallback layouts, best effort only.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	"2 January 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"02-01-2006",
	time.RFC3339,
}

// ParseFlexibleDate parses a free-form date string. The empty string, the
// no-payment sentinel and the literal "nan" all mean "no date".
func ParseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "nan" || s == types.NoPaymentSentinel {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysSince returns whole days between d and ref. A zero d yields 0, so
// callers must treat 0 as "unknown" rather than "today".
func DaysSince(d time.Time, ref time.Time) int {
	if d.IsZero() {
		return 0
	}
	return int(ref.Sub(d).Hours() / 24)
}

// CleanPrice parses price strings like "Rp 150.000" to 150000. Unparseable
// input yields 0.
func CleanPrice(s string) int {
	cleaned := strings.NewReplacer("Rp.", "", "Rp", "", ".", "", ",", "").Replace(s)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "nan" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// CleanIncentive parses incentive strings with the same stripping rule as
// prices.
func CleanIncentive(s string) int {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(s)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "nan" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// IsKTPMissing reports whether an ID-photo URL carries no actual file. The
// path-separator count is a heuristic for "base URL with no filename".
func IsKTPMissing(url string, baseURL string) bool {
	s := strings.TrimSpace(url)
	if s == "" || s == "nan" {
		return true
	}
	if s == baseURL || strings.HasSuffix(s, "/") {
		return true
	}
	return strings.Count(s, "/") <= 4
}

// Exact values that show up in the exports where a phone number should be.
var phoneAnomalies = map[string]bool{
	"0": true, "00": true, "01": true, "1": true, "11": true,
}

// IsPhoneInvalid reports whether a phone number is unusable. minDigits is
// the required count of digit characters after stripping everything else.
func IsPhoneInvalid(phone string, minDigits int) bool {
	s := strings.TrimSpace(phone)
	if s == "" || s == "nan" {
		return true
	}
	if len(s) <= 2 {
		return true
	}
	if phoneAnomalies[s] {
		return true
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits < minDigits
}

// ParseCoordinate splits a "lat,lng" string into floats.
func ParseCoordinate(coord string) (lat float64, lng float64, ok bool) {
	s := strings.TrimSpace(coord)
	if s == "" || s == "nan" || !strings.Contains(s, ",") {
		return 0, 0, false
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// IsCoordinateMissing reports whether a coordinate is absent or unusable.
// "0,0" counts as missing: nothing in the service area sits on Null Island.
func IsCoordinateMissing(coord string) bool {
	lat, lng, ok := ParseCoordinate(coord)
	if !ok {
		return true
	}
	return lat == 0 && lng == 0
}
