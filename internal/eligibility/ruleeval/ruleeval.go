// Package ruleeval applies an iteration's filter, suppression, redirect,
// and action rules to one cohort work item, producing a verdict with its
// supporting reasons. This is the core precedence algorithm of the
// eligibility calculator.
package ruleeval

import (
	"sort"
	"time"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/comparator"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
)

// Evaluate runs the per-cohort verdict algorithm: filter rules first
// (NotEligible on fire), then suppression rules (NotActionable on fire),
// then the redirect/action rule type matching the winning status, purely
// for routing. today is the UTC calendar date used by date-arithmetic
// operators. rulesMapper resolves a rule's RuleCode to display text that
// overrides the rule's own Name/Description wherever an entry exists.
func Evaluate(work domain.CohortWorkItem, rules []configmodel.IterationRule, rulesMapper map[string]configmodel.RuleEntry, view *person.View, today time.Time) domain.CohortResult {
	applicable := applicableRules(work.CohortLabel, rules)

	status := domain.StatusActionable
	var reasons []domain.Reason

	filterRules := byType(applicable, configmodel.RuleTypeFilter)
	filterFired, filterReasons := evaluateRuleType(filterRules, rulesMapper, view, today)
	reasons = append(reasons, filterReasons...)
	if filterFired {
		status = domain.StatusNotEligible
	}

	if status == domain.StatusActionable {
		suppressionRules := byType(applicable, configmodel.RuleTypeSuppression)
		suppressionFired, suppressionReasons := evaluateRuleType(suppressionRules, rulesMapper, view, today)
		reasons = append(reasons, suppressionReasons...)
		if suppressionFired {
			status = domain.StatusNotActionable
		}
	}

	var routingKeys []string
	switch status {
	case domain.StatusActionable:
		redirectRules := byType(applicable, configmodel.RuleTypeRedirect)
		_, redirectReasons := evaluateRuleType(redirectRules, rulesMapper, view, today)
		reasons = append(reasons, redirectReasons...)
		routingKeys = firedRoutingKeys(redirectRules, view, today)
	case domain.StatusNotEligible:
		actionRules := byType(applicable, configmodel.RuleTypeNotEligibleAction)
		_, actionReasons := evaluateRuleType(actionRules, rulesMapper, view, today)
		reasons = append(reasons, actionReasons...)
		routingKeys = firedRoutingKeys(actionRules, view, today)
	case domain.StatusNotActionable:
		actionRules := byType(applicable, configmodel.RuleTypeNotActionableAction)
		_, actionReasons := evaluateRuleType(actionRules, rulesMapper, view, today)
		reasons = append(reasons, actionReasons...)
		routingKeys = firedRoutingKeys(actionRules, view, today)
	}

	routingKey := ""
	if len(routingKeys) > 0 {
		routingKey = routingKeys[0]
	}

	return domain.CohortResult{
		CohortLabel:         work.CohortLabel,
		CohortGroup:         work.CohortGroup,
		Priority:            work.Priority,
		Status:              status,
		Reasons:             reasons,
		PositiveDescription: work.PositiveDescription,
		NegativeDescription: work.NegativeDescription,
		RoutingKey:          routingKey,
	}
}

// applicableRules returns the rules that apply to a cohort: those with no
// CohortLabel restriction, plus those whose CohortLabel matches.
func applicableRules(cohortLabel string, rules []configmodel.IterationRule) []configmodel.IterationRule {
	var out []configmodel.IterationRule
	for _, r := range rules {
		if r.CohortLabel == "" || r.CohortLabel == cohortLabel {
			out = append(out, r)
		}
	}
	return out
}

func byType(rules []configmodel.IterationRule, t configmodel.RuleType) []configmodel.IterationRule {
	var out []configmodel.IterationRule
	for _, r := range rules {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// groupByPriority partitions rules into ascending-priority groups; each
// group is evaluated as a conjunction.
func groupByPriority(rules []configmodel.IterationRule) [][]configmodel.IterationRule {
	byPriority := map[int][]configmodel.IterationRule{}
	var priorities []int
	for _, r := range rules {
		if _, seen := byPriority[r.Priority]; !seen {
			priorities = append(priorities, r.Priority)
		}
		byPriority[r.Priority] = append(byPriority[r.Priority], r)
	}
	sort.Ints(priorities)
	groups := make([][]configmodel.IterationRule, 0, len(priorities))
	for _, p := range priorities {
		groups = append(groups, byPriority[p])
	}
	return groups
}

// evaluateRuleType evaluates every priority group for one rule type in
// ascending priority order. A group fires iff every rule in it matches;
// its rules are then recorded with MatcherMatched=true, otherwise false
// (audit only). A fired rule with RuleStop halts evaluation of any
// remaining groups for this type. A rule's RuleCode, when it resolves
// against rulesMapper, supplies the reason's RuleName/RuleDescription in
// place of the rule's own fields.
func evaluateRuleType(rules []configmodel.IterationRule, rulesMapper map[string]configmodel.RuleEntry, view *person.View, today time.Time) (fired bool, reasons []domain.Reason) {
	for _, group := range groupByPriority(rules) {
		groupFired := true
		for _, r := range group {
			if !matchRule(r, view, today) {
				groupFired = false
				break
			}
		}
		for _, r := range group {
			name, description := resolvedRuleText(r, rulesMapper)
			reasons = append(reasons, domain.Reason{
				RuleType:        string(r.Type),
				RuleName:        name,
				RulePriority:    r.Priority,
				RuleDescription: description,
				MatcherMatched:  groupFired,
			})
		}
		if groupFired {
			fired = true
			if anyRuleStop(group) {
				break
			}
		}
	}
	return fired, reasons
}

// resolvedRuleText returns the rule's own Name/Description, unless its
// RuleCode resolves against rulesMapper, in which case the mapped
// RuleEntry's RuleName/RuleDescription is used instead — letting one rule
// definition be reused under different display text per iteration.
func resolvedRuleText(r configmodel.IterationRule, rulesMapper map[string]configmodel.RuleEntry) (name, description string) {
	if r.RuleCode != "" {
		if entry, ok := rulesMapper[r.RuleCode]; ok {
			return entry.RuleName, entry.RuleDescription
		}
	}
	return r.Name, r.Description
}

func anyRuleStop(group []configmodel.IterationRule) bool {
	for _, r := range group {
		if r.RuleStop {
			return true
		}
	}
	return false
}

// firedRoutingKeys returns the CommsRouting values of every rule in a
// fired group for this rule type, in declaration order, deduplicated.
// Evaluation stops at the first RuleStop group exactly as
// evaluateRuleType does, so the keys returned reflect the same groups
// that contributed MatcherMatched=true reasons.
func firedRoutingKeys(rules []configmodel.IterationRule, view *person.View, today time.Time) []string {
	var keys []string
	seen := map[string]bool{}
	for _, group := range groupByPriority(rules) {
		groupFired := true
		for _, r := range group {
			if !matchRule(r, view, today) {
				groupFired = false
				break
			}
		}
		if groupFired {
			for _, r := range group {
				if r.CommsRouting != "" && !seen[r.CommsRouting] {
					seen[r.CommsRouting] = true
					keys = append(keys, r.CommsRouting)
				}
			}
			if anyRuleStop(group) {
				break
			}
		}
	}
	return keys
}

// matchRule resolves one rule's attribute from the Person View and
// evaluates its operator/comparator pair.
func matchRule(r configmodel.IterationRule, view *person.View, today time.Time) bool {
	if !comparator.Known(comparator.Operator(r.Operator)) {
		return false
	}

	attr := comparator.Attribute{Cohorts: view.Cohorts()}
	switch r.AttributeLevel {
	case configmodel.AttributeLevelPerson:
		attr.Value, attr.Present = view.PersonAttr(r.AttributeName)
	case configmodel.AttributeLevelTarget:
		attr.Value, attr.Present = view.TargetAttr(r.AttributeTarget, r.AttributeName)
	case configmodel.AttributeLevelCohort:
		// Cohort-level rules evaluate membership directly; MemberOf/
		// NotaMemberOf read attr.Cohorts regardless of attr.Value.
	}

	return comparator.Match(comparator.Operator(r.Operator), r.Comparator, attr, today)
}
