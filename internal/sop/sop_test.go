package sop

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return NewStore(filepath.Join(t.TempDir(), "sop_rules.json"), log)
}

func TestStoreCRUD(t *testing.T) {
	t.Parallel()

	s := testStore(t)

	// Missing file reads as zero rules.
	rules, err := s.Load()
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("expected no rules, got=%d", len(rules))
	}

	if err := s.Create("Andi", 15, []int{30000, 20000, 20000}, []string{"Cicurug"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rules, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rule, ok := rules["Andi"]
	if !ok {
		t.Fatalf("rule not persisted")
	}
	if !rule.Active {
		t.Fatalf("new rule should be active")
	}
	// Incentives are deduped and sorted on the way in.
	if len(rule.Incentive) != 2 || rule.Incentive[0] != 20000 || rule.Incentive[1] != 30000 {
		t.Fatalf("incentives: got=%v", rule.Incentive)
	}

	if err := s.Create("Andi", 10, []int{20000}, []string{"Cicurug"}); !errors.Is(err, ErrRuleExists) {
		t.Fatalf("duplicate create: got=%v want ErrRuleExists", err)
	}

	day := 10
	inactive := false
	if err := s.Update("Andi", RuleUpdate{DueDay: &day, Active: &inactive}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rules, _ = s.Load()
	rule = rules["Andi"]
	if rule.DueDay != 10 || rule.Active {
		t.Fatalf("update not applied: %+v", rule)
	}
	// Untouched fields survive a partial update.
	if len(rule.Incentive) != 2 {
		t.Fatalf("partial update clobbered incentives: %v", rule.Incentive)
	}

	if err := s.Update("Budi", RuleUpdate{DueDay: &day}); !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("update missing: got=%v want ErrRuleNotFound", err)
	}

	if err := s.Delete("Andi"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("Andi"); !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("delete missing: got=%v want ErrRuleNotFound", err)
	}
}

func TestStoreValidation(t *testing.T) {
	t.Parallel()

	s := testStore(t)

	cases := []struct {
		name       string
		dueDay     int
		incentives []int
		locations  []string
	}{
		{"due day too low", 0, []int{20000}, []string{"Cicurug"}},
		{"due day too high", 32, []int{20000}, []string{"Cicurug"}},
		{"negative incentive", 15, []int{-1}, []string{"Cicurug"}},
		{"no incentives", 15, nil, []string{"Cicurug"}},
		{"no locations", 15, []int{20000}, nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := s.Create("Sales "+tc.name, tc.dueDay, tc.incentives, tc.locations)
			if !errors.Is(err, ErrInvalidRule) {
				t.Fatalf("got=%v want ErrInvalidRule", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	rules := map[string]types.SOPRule{
		"Andi": {
			DueDay:    15,
			Incentive: []int{20000, 30000},
			Locations: []string{"Cicurug", "Parungkuda"},
			Active:    true,
		},
		"Budi": {
			DueDay:    10,
			Incentive: []int{20000},
			Locations: []string{"Cibadak"},
			Active:    false,
		},
	}

	customers := []types.Customer{
		// Wrong due day only.
		{CustomerID: "C001", Name: "Pelanggan Satu", Sales: "Andi", DueDay: "10",
			Incentive: "20000", Location: "Cicurug"},
		// Fully compliant.
		{CustomerID: "C002", Name: "Pelanggan Dua", Sales: "Andi", DueDay: "15",
			Incentive: "30000", Location: "Parungkuda"},
		// Salesperson with an inactive rule is skipped entirely.
		{CustomerID: "C003", Name: "Pelanggan Tiga", Sales: "Budi", DueDay: "1",
			Incentive: "999", Location: "Nowhere"},
		// No rule for this salesperson.
		{CustomerID: "C004", Name: "Pelanggan Empat", Sales: "Citra", DueDay: "1",
			Incentive: "0", Location: "Nowhere"},
		// Unparseable due day suppresses that check but not the others.
		{CustomerID: "C005", Name: "Pelanggan Lima", Sales: "Andi", DueDay: "nan",
			Incentive: "5000", Location: "Cicurug"},
	}

	result := Validate(customers, rules)

	if result.TotalViolations != 2 {
		t.Fatalf("total violations: got=%d want=2", result.TotalViolations)
	}
	if got := result.ViolationsByType[types.ViolationDueDay]; got != 1 {
		t.Fatalf("due day count: got=%d want=1", got)
	}
	if got := result.ViolationsByType[types.ViolationIncentive]; got != 1 {
		t.Fatalf("incentive count: got=%d want=1", got)
	}
	if got := result.ViolationsByType[types.ViolationLocation]; got != 0 {
		t.Fatalf("location count: got=%d want=0", got)
	}

	first := result.Violations[0]
	if first.CustomerID != "C001" || len(first.Violations) != 1 {
		t.Fatalf("first violation: %+v", first)
	}
	v := first.Violations[0]
	if v.Type != types.ViolationDueDay || v.Severity != types.SeverityHigh {
		t.Fatalf("violation detail: %+v", v)
	}
	if v.Expected != "15" || v.Actual != "10" {
		t.Fatalf("violation values: %+v", v)
	}

	second := result.Violations[1]
	if second.CustomerID != "C005" {
		t.Fatalf("second violation: %+v", second)
	}
	iv := second.Violations[0]
	if iv.Type != types.ViolationIncentive {
		t.Fatalf("expected incentive violation, got %+v", iv)
	}
	if iv.Expected != "Rp 20,000 / Rp 30,000" {
		t.Fatalf("expected formatting: got=%q", iv.Expected)
	}
}
