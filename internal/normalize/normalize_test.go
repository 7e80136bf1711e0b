package normalize

import (
	"testing"
	"time"
)

func TestParseFlexibleDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{"16-October-2025", "2025-10-16", true},
		{"2-January-2024", "2024-01-02", true},
		{"15/03/2024", "2024-03-15", true},
		{"Data Belum Ada", "", false},
		{"nan", "", false},
		{"", "", false},
		{"not a date", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseFlexibleDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseFlexibleDate(%q) ok: got=%v want=%v", tc.in, ok, tc.ok)
		}
		if ok && got.Format("2006-01-02") != tc.want {
			t.Fatalf("ParseFlexibleDate(%q): got=%s want=%s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysSince(d, ref); got != 31 {
		t.Fatalf("DaysSince: got=%d want=31", got)
	}
	if got := DaysSince(time.Time{}, ref); got != 0 {
		t.Fatalf("DaysSince zero time: got=%d want=0", got)
	}
}

func TestCleanPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"Rp 150.000", 150000},
		{"Rp. 150.000", 150000},
		{"150000", 150000},
		{"1,250,000", 1250000},
		{"", 0},
		{"nan", 0},
		{"gratis", 0},
	}
	for _, tc := range cases {
		if got := CleanPrice(tc.in); got != tc.want {
			t.Fatalf("CleanPrice(%q): got=%d want=%d", tc.in, got, tc.want)
		}
	}
}

func TestIsPhoneInvalid(t *testing.T) {
	t.Parallel()

	const minDigits = 8
	valid := []string{"081234567890", "0812-3456-789", "+62 812 3456 789"}
	for _, p := range valid {
		if IsPhoneInvalid(p, minDigits) {
			t.Fatalf("IsPhoneInvalid(%q): got=true want=false", p)
		}
	}
	invalid := []string{"", "nan", "0", "00", "11", "0812345"}
	for _, p := range invalid {
		if !IsPhoneInvalid(p, minDigits) {
			t.Fatalf("IsPhoneInvalid(%q): got=false want=true", p)
		}
	}
}

func TestIsKTPMissing(t *testing.T) {
	t.Parallel()

	const base = "https://e.ebilling.id:2096/img/ktp/"
	if !IsKTPMissing(base, base) {
		t.Fatalf("bare base URL should count as missing")
	}
	if !IsKTPMissing("", base) {
		t.Fatalf("empty URL should count as missing")
	}
	if IsKTPMissing(base+"foto123.jpg", base) {
		t.Fatalf("full photo URL should not count as missing")
	}
}

func TestCoordinates(t *testing.T) {
	t.Parallel()

	lat, lng, ok := ParseCoordinate("-6.2088, 106.8456")
	if !ok || lat != -6.2088 || lng != 106.8456 {
		t.Fatalf("ParseCoordinate: got=(%v,%v,%v)", lat, lng, ok)
	}
	if _, _, ok := ParseCoordinate("abc,def"); ok {
		t.Fatalf("ParseCoordinate should reject non-numeric input")
	}
	if !IsCoordinateMissing("0,0") {
		t.Fatalf("0,0 should count as missing")
	}
	if IsCoordinateMissing("-6.2,106.8") {
		t.Fatalf("real coordinate should not count as missing")
	}
}
