package sop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nettalink/insights-backend/internal/normalize"
	"github.com/nettalink/insights-backend/internal/types"
)

// ValidationResult is the violations report over the full dataset.
type ValidationResult struct {
	TotalViolations  int                        `json:"total_violations"`
	ViolationsByType map[string]int             `json:"violations_by_type"`
	Violations       []types.CustomerViolations `json:"violations"`
}

// Validate checks every customer whose salesperson has an active rule.
// The three checks are independent; a field that fails to parse suppresses
// only its own check. Customers without violations are omitted.
func Validate(customers []types.Customer, rules map[string]types.SOPRule) *ValidationResult {
	result := &ValidationResult{
		ViolationsByType: map[string]int{
			types.ViolationDueDay:    0,
			types.ViolationIncentive: 0,
			types.ViolationLocation:  0,
		},
		Violations: []types.CustomerViolations{},
	}

	active := make(map[string]types.SOPRule, len(rules))
	for name, rule := range rules {
		if rule.Active {
			active[name] = rule
		}
	}
	if len(active) == 0 {
		return result
	}

	for i := range customers {
		c := &customers[i]
		rule, ok := active[strings.TrimSpace(c.Sales)]
		if !ok {
			continue
		}

		var violations []types.Violation
		if v, bad := checkDueDay(c, rule); bad {
			violations = append(violations, v)
		}
		if v, bad := checkIncentive(c, rule); bad {
			violations = append(violations, v)
		}
		if v, bad := checkLocation(c, rule); bad {
			violations = append(violations, v)
		}
		if len(violations) == 0 {
			continue
		}

		for _, v := range violations {
			result.ViolationsByType[v.Type]++
		}
		result.Violations = append(result.Violations, types.CustomerViolations{
			CustomerID: c.CustomerID,
			Name:       c.Name,
			Sales:      strings.TrimSpace(c.Sales),
			Phone:      c.Phone,
			Package:    c.Package,
			Violations: violations,
		})
	}

	result.TotalViolations = len(result.Violations)
	return result
}

func checkDueDay(c *types.Customer, rule types.SOPRule) (types.Violation, bool) {
	actual, err := strconv.Atoi(strings.TrimSpace(c.DueDay))
	if err != nil {
		// Unparseable due day: no opinion, best effort only.
		return types.Violation{}, false
	}
	if actual == rule.DueDay {
		return types.Violation{}, false
	}
	return types.Violation{
		Type:     types.ViolationDueDay,
		Field:    types.ColDueDay,
		Expected: strconv.Itoa(rule.DueDay),
		Actual:   strconv.Itoa(actual),
		Severity: types.SeverityHigh,
	}, true
}

func checkIncentive(c *types.Customer, rule types.SOPRule) (types.Violation, bool) {
	actual := normalize.CleanIncentive(c.Incentive)
	for _, allowed := range rule.Incentive {
		if actual == allowed {
			return types.Violation{}, false
		}
	}
	expected := make([]string, len(rule.Incentive))
	for i, v := range rule.Incentive {
		expected[i] = formatRupiah(v)
	}
	return types.Violation{
		Type:     types.ViolationIncentive,
		Field:    types.ColIncentive,
		Expected: strings.Join(expected, " / "),
		Actual:   formatRupiah(actual),
		Severity: types.SeverityMedium,
	}, true
}

func checkLocation(c *types.Customer, rule types.SOPRule) (types.Violation, bool) {
	actual := strings.TrimSpace(c.Location)
	for _, allowed := range rule.Locations {
		if actual == allowed {
			return types.Violation{}, false
		}
	}
	return types.Violation{
		Type:     types.ViolationLocation,
		Field:    types.ColLocation,
		Expected: strings.Join(rule.Locations, ", "),
		Actual:   actual,
		Severity: types.SeverityLow,
	}, true
}

// formatRupiah renders an amount the way the dashboard displays it,
// e.g. "Rp 20,000".
func formatRupiah(v int) string {
	s := strconv.Itoa(v)
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
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return fmt.Sprintf("Rp %s", out)
}
