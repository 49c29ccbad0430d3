// Package aggregator collapses the per-cohort verdicts produced by
// ruleeval into a single campaign status, picks the winning description
// per cohort group, and deduplicates reasons for presentation.
package aggregator

import (
	"sort"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
)

// CampaignStatus returns max(Actionable, NotActionable, NotEligible) over
// the given cohort results — Actionable if any cohort is Actionable,
// else NotActionable if any is NotActionable, else NotEligible. An empty
// slice defaults to NotEligible.
func CampaignStatus(results []domain.CohortResult) domain.Status {
	status := domain.StatusNotEligible
	for _, r := range results {
		if r.Status > status {
			status = r.Status
		}
	}
	return status
}

// Aggregate collapses cohort results for one campaign's current iteration
// into the cohort-group rows and deduplicated reasons that make up a
// Condition, per the winning campaign status.
func Aggregate(results []domain.CohortResult) (status domain.Status, groups []domain.CohortGroupResult, reasons []domain.Reason) {
	status = CampaignStatus(results)

	sorted := make([]domain.CohortResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CohortGroup != sorted[j].CohortGroup {
			return sorted[i].CohortGroup < sorted[j].CohortGroup
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].CohortLabel < sorted[j].CohortLabel
	})

	byGroup := map[string][]domain.CohortResult{}
	var groupOrder []string
	for _, r := range sorted {
		if _, seen := byGroup[r.CohortGroup]; !seen {
			groupOrder = append(groupOrder, r.CohortGroup)
		}
		byGroup[r.CohortGroup] = append(byGroup[r.CohortGroup], r)
	}

	seenReason := map[[3]any]bool{}
	for _, groupName := range groupOrder {
		surviving := survivingRows(byGroup[groupName], status)
		if len(surviving) == 0 {
			continue
		}
		description := pickDescription(surviving)
		routingKey := pickRoutingKey(surviving)

		groupReasons := dedupeReasons(surviving, seenReason)
		reasons = append(reasons, groupReasons...)

		groups = append(groups, domain.CohortGroupResult{
			CohortGroup: groupName,
			Status:      status,
			Reasons:     groupReasons,
			Description: description,
			RoutingKey:  routingKey,
		})
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		if reasons[i].RulePriority != reasons[j].RulePriority {
			return reasons[i].RulePriority < reasons[j].RulePriority
		}
		return reasons[i].RuleName < reasons[j].RuleName
	})

	return status, groups, reasons
}

// survivingRows returns the rows within a cohort group whose own status
// matches the campaign's winning status; lower-status rows are discarded.
func survivingRows(rows []domain.CohortResult, winning domain.Status) []domain.CohortResult {
	var out []domain.CohortResult
	for _, r := range rows {
		if r.Status == winning {
			out = append(out, r)
		}
	}
	return out
}

// pickDescription returns the lowest-priority non-empty description among
// the surviving rows (rows are already priority-ascending).
func pickDescription(surviving []domain.CohortResult) string {
	for _, r := range surviving {
		if d := r.Description(); d != "" {
			return d
		}
	}
	return ""
}

// pickRoutingKey returns the first non-empty routing key override among
// the surviving rows (priority ascending).
func pickRoutingKey(surviving []domain.CohortResult) string {
	for _, r := range surviving {
		if r.RoutingKey != "" {
			return r.RoutingKey
		}
	}
	return ""
}

// dedupeReasons merges the reasons from the surviving rows of one cohort
// group into the caller-provided dedup set, keyed by
// (RuleType, RuleName, RulePriority); the first description seen for a
// key wins.
func dedupeReasons(surviving []domain.CohortResult, seen map[[3]any]bool) []domain.Reason {
	var out []domain.Reason
	for _, r := range surviving {
		for _, reason := range r.Reasons {
			key := reason.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, reason)
		}
	}
	return out
}
