package configmodel

import "sort"

// CampaignLive reports whether today falls within [StartDate, EndDate]
// inclusive.
func (c *CampaignConfig) CampaignLive(today Date) bool {
	return !today.Before(c.StartDate.Time) && !today.After(c.EndDate.Time)
}

// CurrentIteration returns the iteration with the greatest IterationDate
// that is not after today, mirroring the "most recent iteration so far"
// selection the original campaign model performs via a cached property.
// ok is false when no iteration qualifies (today precedes every iteration).
func (c *CampaignConfig) CurrentIteration(today Date) (Iteration, bool) {
	candidates := make([]Iteration, len(c.Iterations))
	copy(candidates, c.Iterations)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].IterationDate.After(candidates[j].IterationDate.Time)
	})
	for _, it := range candidates {
		if !it.IterationDate.After(today.Time) {
			return it, true
		}
	}
	return Iteration{}, false
}

// SortedCohorts returns the iteration's cohorts ordered by ascending
// Priority (unset priorities sort last), the order used whenever a
// "highest-priority cohort" tie needs breaking.
func (it Iteration) SortedCohorts() []IterationCohort {
	cohorts := make([]IterationCohort, len(it.IterationCohorts))
	copy(cohorts, it.IterationCohorts)
	sort.SliceStable(cohorts, func(i, j int) bool {
		return cohorts[i].priorityOrMax() < cohorts[j].priorityOrMax()
	})
	return cohorts
}

// CohortByLabel finds a declared cohort by its label.
func (it Iteration) CohortByLabel(label string) (IterationCohort, bool) {
	for _, c := range it.IterationCohorts {
		if c.CohortLabel == label {
			return c, true
		}
	}
	return IterationCohort{}, false
}

// CohortsByGroup groups the iteration's cohorts by CohortGroup,
// preserving the iteration's declaration order within each group.
func (it Iteration) CohortsByGroup() map[string][]IterationCohort {
	groups := map[string][]IterationCohort{}
	for _, c := range it.IterationCohorts {
		groups[c.CohortGroup] = append(groups[c.CohortGroup], c)
	}
	return groups
}
