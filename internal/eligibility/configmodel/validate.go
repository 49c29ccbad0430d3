package configmodel

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/comparator"
)

// ConfigInvalid reports a structural or semantic defect found while
// validating a CampaignConfig. Evaluation must not proceed against a
// campaign that fails validation; the calculator treats it as fail-closed.
type ConfigInvalid struct {
	CampaignID string
	Errors     []string
}

func (e *ConfigInvalid) Error() string {
	return fmt.Sprintf("campaign %s is invalid: %s", e.CampaignID, strings.Join(e.Errors, "; "))
}

// ValidationResult collects the errors and warnings found by Validate, in
// the style of a lint report: errors block use, warnings don't.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a CampaignConfig for the defects that would make
// evaluation unsafe or meaningless: inverted date ranges, duplicate
// iteration dates, unknown enum codes, and an empty iteration list.
func Validate(c *CampaignConfig) *ValidationResult {
	r := &ValidationResult{Valid: true}

	if !c.Type.valid() {
		r.addError("campaign %s: unknown Type %q", c.ID, c.Type)
	}
	if c.IterationFrequency != "" && !c.IterationFrequency.valid() {
		r.addError("campaign %s: unknown IterationFrequency %q", c.ID, c.IterationFrequency)
	}
	if c.IterationType != "" && !c.IterationType.valid() {
		r.addError("campaign %s: unknown IterationType %q", c.ID, c.IterationType)
	}
	if c.StartDate.After(c.EndDate.Time) {
		r.addError("campaign %s: StartDate %s is after EndDate %s", c.ID, c.StartDate.Format(wireDateLayout), c.EndDate.Format(wireDateLayout))
	}
	if len(c.Iterations) == 0 {
		r.addError("campaign %s: must declare at least one iteration", c.ID)
	}
	if !approvalBoundsValid(c.ApprovalMinimum, c.ApprovalMaximum) {
		r.addError("campaign %s: ApprovalMinimum %d is after ApprovalMaximum %d", c.ID, *c.ApprovalMinimum, *c.ApprovalMaximum)
	}

	seenDates := map[string]int{}
	for _, it := range c.Iterations {
		seenDates[it.IterationDate.Format(wireDateLayout)]++
	}
	var dupes []string
	for d, n := range seenDates {
		if n > 1 {
			dupes = append(dupes, d)
		}
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		r.addError("campaign %s: overlapping iterations on date(s) %s", c.ID, strings.Join(dupes, ", "))
	}

	for _, it := range c.Iterations {
		validateIteration(c.ID, it, r)
	}

	return r
}

func validateIteration(campaignID string, it Iteration, r *ValidationResult) {
	if !it.Type.valid() {
		r.addError("campaign %s iteration %s: unknown Type %q", campaignID, it.ID, it.Type)
	}
	if !approvalBoundsValid(it.ApprovalMinimum, it.ApprovalMaximum) {
		r.addError("campaign %s iteration %s: ApprovalMinimum %d is after ApprovalMaximum %d", campaignID, it.ID, *it.ApprovalMinimum, *it.ApprovalMaximum)
	}

	for key, av := range it.ActionsMapper {
		if err := validURLLink(av.URLLink); err != nil {
			r.addError("campaign %s iteration %s action %q: invalid UrlLink %q: %v", campaignID, it.ID, key, av.URLLink, err)
		}
	}

	cohortLabels := map[string]bool{}
	for _, c := range it.IterationCohorts {
		if c.CohortLabel == "" {
			r.addError("campaign %s iteration %s: cohort with empty CohortLabel", campaignID, it.ID)
			continue
		}
		if !validVirtualFlag(c.RawVirtual) {
			r.addError("campaign %s iteration %s cohort %s: unknown Virtual flag %q", campaignID, it.ID, c.CohortLabel, c.RawVirtual)
		}
		cohortLabels[c.CohortLabel] = true
	}

	for _, rule := range it.IterationRules {
		if !rule.Type.valid() {
			r.addError("campaign %s iteration %s rule %s: unknown Type %q", campaignID, it.ID, rule.Name, rule.Type)
		}
		if !rule.AttributeLevel.valid() {
			r.addError("campaign %s iteration %s rule %s: unknown AttributeLevel %q", campaignID, it.ID, rule.Name, rule.AttributeLevel)
		}
		if !comparator.Known(comparator.Operator(rule.Operator)) {
			r.addError("campaign %s iteration %s rule %s: unknown Operator %q", campaignID, it.ID, rule.Name, rule.Operator)
		}
		if rule.AttributeLevel == AttributeLevelTarget && rule.AttributeTarget == "" {
			r.addError("campaign %s iteration %s rule %s: TARGET-level rule missing AttributeTarget", campaignID, it.ID, rule.Name)
		}
		if rule.CohortLabel != "" && !cohortLabels[rule.CohortLabel] {
			r.addWarning("campaign %s iteration %s rule %s: references undeclared cohort %q", campaignID, it.ID, rule.Name, rule.CohortLabel)
		}
		if rule.RuleCode != "" {
			if _, ok := it.RulesMapper[rule.RuleCode]; !ok {
				r.addWarning("campaign %s iteration %s rule %s: RuleCode %q has no RulesMapper entry", campaignID, it.ID, rule.Name, rule.RuleCode)
			}
		}
	}
}

// approvalBoundsValid reports whether a min/max approval-count pair is
// internally consistent: true when either bound is absent, or min ≤ max
// when both are present.
func approvalBoundsValid(min, max *int) bool {
	if min == nil || max == nil {
		return true
	}
	return *min <= *max
}

// validURLLink parses a non-empty AvailableAction.UrlLink as a URL and
// requires an http/https scheme; an empty UrlLink is valid (the action
// carries no link).
func validURLLink(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q is not http/https", u.Scheme)
	}
	return nil
}

// MustValidate returns a *ConfigInvalid joining every validation error, or
// nil when the campaign is valid. Warnings never block evaluation.
func MustValidate(c *CampaignConfig) error {
	result := Validate(c)
	if result.Valid {
		return nil
	}
	return &ConfigInvalid{CampaignID: c.ID, Errors: result.Errors}
}

// IsConfigInvalid reports whether err is, or wraps, a *ConfigInvalid.
func IsConfigInvalid(err error) bool {
	var ci *ConfigInvalid
	return errors.As(err, &ci)
}
