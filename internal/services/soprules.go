package services

import (
	"errors"
	"net/http"

	"github.com/nettalink/insights-backend/internal/ingest"
	"github.com/nettalink/insights-backend/internal/platform/apierr"
	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/sop"
	"github.com/nettalink/insights-backend/internal/types"
)

// SOPService fronts the rule store and runs the compliance sweep against
// the current dataset.
type SOPService struct {
	log     *logger.Logger
	store   *sop.Store
	dataset *ingest.Dataset
}

func NewSOPService(store *sop.Store, dataset *ingest.Dataset, baseLog *logger.Logger) *SOPService {
	return &SOPService{
		log:     baseLog.With("service", "SOPService"),
		store:   store,
		dataset: dataset,
	}
}

func (s *SOPService) Rules() (map[string]types.SOPRule, error) {
	return s.store.Load()
}

func (s *SOPService) Create(sales string, dueDay int, incentives []int, locations []string) error {
	return ruleErr(s.store.Create(sales, dueDay, incentives, locations))
}

func (s *SOPService) Update(sales string, upd sop.RuleUpdate) error {
	return ruleErr(s.store.Update(sales, upd))
}

func (s *SOPService) Delete(sales string) error {
	return ruleErr(s.store.Delete(sales))
}

// ruleErr maps store sentinels onto API statuses.
func ruleErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sop.ErrRuleExists):
		return apierr.New(http.StatusConflict, "RULE_EXISTS", err)
	case errors.Is(err, sop.ErrRuleNotFound):
		return apierr.New(http.StatusNotFound, "RULE_NOT_FOUND", err)
	case errors.Is(err, sop.ErrInvalidRule):
		return apierr.New(http.StatusBadRequest, "INVALID_RULE", err)
	default:
		return err
	}
}

// Validate sweeps every customer against the active rules for their
// salesperson.
func (s *SOPService) Validate() (*sop.ValidationResult, error) {
	rules, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}
	result := sop.Validate(customers, rules)
	s.log.Info("sop validation run", "customers", len(customers), "violations", result.TotalViolations)
	return result, nil
}
