// Package cohort reconciles an iteration's declared cohorts against a
// person's cohort membership, producing the set of CohortWorkItem values
// the Rule Evaluator iterates over.
package cohort

import (
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
)

// BaseEligibilityRuleName is the synthetic reason recorded when an
// iteration's cohort list resolves to an empty working set.
const BaseEligibilityRuleName = "BASE_ELIGIBILITY"

// Resolve builds the working set for one iteration: every virtual cohort
// unconditionally, plus every non-virtual cohort the person belongs to.
func Resolve(it configmodel.Iteration, view *person.View) []domain.CohortWorkItem {
	var items []domain.CohortWorkItem
	for _, c := range it.IterationCohorts {
		switch {
		case c.IsVirtual():
			items = append(items, toWorkItem(c, domain.MembershipVirtual))
		case view.HasCohort(c.CohortLabel):
			items = append(items, toWorkItem(c, domain.MembershipPerson))
		}
	}
	return items
}

func toWorkItem(c configmodel.IterationCohort, source domain.MembershipSource) domain.CohortWorkItem {
	priority := 1<<31 - 1
	if c.Priority != nil {
		priority = *c.Priority
	}
	return domain.CohortWorkItem{
		CohortLabel:         c.CohortLabel,
		CohortGroup:         c.CohortGroup,
		Priority:            priority,
		PositiveDescription: c.PositiveDescription,
		NegativeDescription: c.NegativeDescription,
		MembershipSource:    source,
	}
}

// EmptyWorkingSetReason builds the synthetic BASE_ELIGIBILITY NotEligible
// result used when an iteration's working set is empty: one reason, and
// the negative description of the highest-priority declared cohort (if
// the iteration declared any cohorts at all).
func EmptyWorkingSetReason(it configmodel.Iteration) (domain.Reason, string) {
	reason := domain.Reason{
		RuleType:       "F",
		RuleName:       BaseEligibilityRuleName,
		RulePriority:   0,
		MatcherMatched: true,
	}
	sorted := it.SortedCohorts()
	if len(sorted) == 0 {
		return reason, ""
	}
	return reason, sorted[0].NegativeDescription
}
