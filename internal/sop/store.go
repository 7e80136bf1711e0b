// Package sop manages the per-salesperson business rules and validates the
// canonical dataset against them.
package sop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

// Sentinel errors so the API layer can pick the right status code.
var (
	ErrRuleExists   = errors.New("sop rule already exists")
	ErrRuleNotFound = errors.New("sop rule not found")
	ErrInvalidRule  = errors.New("invalid sop rule")
)

// Store persists SOP rules as a JSON document keyed by salesperson name.
// Writes go through a temp file + rename so the document is never half
// written.
type Store struct {
	path string
	log  *logger.Logger
}

func NewStore(path string, log *logger.Logger) *Store {
	return &Store{path: path, log: log.With("component", "sop.Store")}
}

// Load reads all rules. A missing file means no rules yet.
func (s *Store) Load() (map[string]types.SOPRule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]types.SOPRule{}, nil
		}
		return nil, fmt.Errorf("loading sop rules: %w", err)
	}
	rules := map[string]types.SOPRule{}
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing sop rules: %w", err)
	}
	return rules, nil
}

func (s *Store) save(rules map[string]types.SOPRule) error {
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sop_rules_*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// ValidateDueDay checks the due-date day-of-month input.
func ValidateDueDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidRule)
	}
	return nil
}

// ValidateIncentives dedupes, sorts and checks the allowed incentive set.
func ValidateIncentives(values []int) ([]int, error) {
	seen := map[int]bool{}
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("%w: all incentive values must be non-negative", ErrInvalidRule)
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one incentive value is required", ErrInvalidRule)
	}
	sort.Ints(out)
	return out, nil
}

// ValidateLocations checks the allowed location set.
func ValidateLocations(locations []string) error {
	if len(locations) == 0 {
		return fmt.Errorf("%w: at least one location is required", ErrInvalidRule)
	}
	return nil
}

// Create adds a rule for a salesperson that does not have one yet.
func (s *Store) Create(sales string, dueDay int, incentives []int, locations []string) error {
	if sales == "" {
		return fmt.Errorf("%w: sales name must not be empty", ErrInvalidRule)
	}
	rules, err := s.Load()
	if err != nil {
		return err
	}
	if _, exists := rules[sales]; exists {
		return fmt.Errorf("%w: rule for %s, use update instead", ErrRuleExists, sales)
	}
	if err := ValidateDueDay(dueDay); err != nil {
		return err
	}
	cleaned, err := ValidateIncentives(incentives)
	if err != nil {
		return err
	}
	if err := ValidateLocations(locations); err != nil {
		return err
	}
	today := time.Now().Format("2006-01-02")
	rules[sales] = types.SOPRule{
		DueDay:    dueDay,
		Incentive: cleaned,
		Locations: locations,
		Active:    true,
		CreatedAt: today,
		UpdatedAt: today,
	}
	if err := s.save(rules); err != nil {
		return err
	}
	s.log.Info("sop rule created", "sales", sales)
	return nil
}

// RuleUpdate carries the optional fields of an update; nil means leave
// unchanged.
type RuleUpdate struct {
	DueDay     *int
	Incentives []int
	Locations  []string
	Active     *bool
}

// Update applies a partial update to an existing rule.
func (s *Store) Update(sales string, upd RuleUpdate) error {
	rules, err := s.Load()
	if err != nil {
		return err
	}
	rule, exists := rules[sales]
	if !exists {
		return fmt.Errorf("%w: no rule for %s", ErrRuleNotFound, sales)
	}
	if upd.DueDay != nil {
		if err := ValidateDueDay(*upd.DueDay); err != nil {
			return err
		}
		rule.DueDay = *upd.DueDay
	}
	if upd.Incentives != nil {
		cleaned, err := ValidateIncentives(upd.Incentives)
		if err != nil {
			return err
		}
		rule.Incentive = cleaned
	}
	if upd.Locations != nil {
		if err := ValidateLocations(upd.Locations); err != nil {
			return err
		}
		rule.Locations = upd.Locations
	}
	if upd.Active != nil {
		rule.Active = *upd.Active
	}
	rule.UpdatedAt = time.Now().Format("2006-01-02")
	rules[sales] = rule
	if err := s.save(rules); err != nil {
		return err
	}
	s.log.Info("sop rule updated", "sales", sales)
	return nil
}

// Delete removes a rule. Deleting a missing rule is an error so the API
// can answer 404.
func (s *Store) Delete(sales string) error {
	rules, err := s.Load()
	if err != nil {
		return err
	}
	if _, exists := rules[sales]; !exists {
		return fmt.Errorf("%w: no rule for %s", ErrRuleNotFound, sales)
	}
	delete(rules, sales)
	if err := s.save(rules); err != nil {
		return err
	}
	s.log.Info("sop rule deleted", "sales", sales)
	return nil
}
