// Package action resolves the routing keys chosen by rule evaluation (or
// an iteration's defaults) into concrete AvailableAction entries via an
// iteration's ActionsMapper.
package action

import (
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
)

// Select chooses the routing key(s) for a campaign's resolved status and
// resolves each through the iteration's ActionsMapper. A routing key with
// no ActionsMapper entry contributes no action (not an error). Duplicate
// routing keys collapse to a single action, keeping first-seen order.
func Select(it configmodel.Iteration, status domain.Status, groups []domain.CohortGroupResult) []configmodel.AvailableAction {
	defaultKey := defaultRoutingKey(it, status)

	var keys []string
	seen := map[string]bool{}
	addKey := func(key string) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	for _, g := range groups {
		if g.Status != status {
			continue
		}
		if g.RoutingKey != "" {
			addKey(g.RoutingKey)
		} else {
			addKey(defaultKey)
		}
	}
	if len(keys) == 0 {
		addKey(defaultKey)
	}

	var resolved []configmodel.AvailableAction
	for _, key := range keys {
		if av, ok := it.ActionsMapper[key]; ok {
			resolved = append(resolved, av)
		}
	}
	return resolved
}

func defaultRoutingKey(it configmodel.Iteration, status domain.Status) string {
	switch status {
	case domain.StatusActionable:
		return it.DefaultCommsRouting
	case domain.StatusNotActionable:
		return it.DefaultNotActionableRouting
	case domain.StatusNotEligible:
		return it.DefaultNotEligibleRouting
	default:
		return ""
	}
}
