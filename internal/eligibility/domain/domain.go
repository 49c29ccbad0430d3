// Package domain holds the value types shared across the evaluation
// pipeline — cohort resolution, rule evaluation, status aggregation,
// action selection — that exist only for the lifetime of one request.
// The Rule Config Model is the read-only input; everything in this
// package is created and discarded per Calculator Facade call.
package domain

// Status is the per-cohort or per-campaign verdict, ordered so the
// aggregator's precedence rule reduces to a single max over the enum.
type Status int

const (
	StatusNotEligible Status = iota
	StatusNotActionable
	StatusActionable
)

// String renders the wire name of a Status.
func (s Status) String() string {
	switch s {
	case StatusNotEligible:
		return "NotEligible"
	case StatusNotActionable:
		return "NotActionable"
	case StatusActionable:
		return "Actionable"
	default:
		return "Unknown"
	}
}

// MembershipSource records how a person came to be considered for a
// cohort: through an explicit cohort membership, or because the cohort
// is virtual and therefore always present.
type MembershipSource string

const (
	MembershipPerson  MembershipSource = "person"
	MembershipVirtual MembershipSource = "virtual"
)

// CohortWorkItem is one cohort seeded into rule evaluation for the
// current request: an iteration cohort reconciled against the person's
// cohort membership (or admitted unconditionally because it is virtual).
type CohortWorkItem struct {
	CohortLabel         string
	CohortGroup         string
	Priority            int
	PositiveDescription string
	NegativeDescription string
	MembershipSource    MembershipSource
}

// Reason is the audit/display record of one rule evaluated against one
// cohort. Identity for deduplication purposes is the tuple
// (RuleType, RuleName, RulePriority); MatcherMatched distinguishes a
// fired rule from one recorded for audit only.
type Reason struct {
	RuleType        string
	RuleName        string
	RulePriority    int
	RuleDescription string
	MatcherMatched  bool
}

// Key returns the deduplication identity of a Reason.
func (r Reason) Key() [3]any {
	return [3]any{r.RuleType, r.RuleName, r.RulePriority}
}

// CohortResult is one cohort's verdict after rule evaluation: its status,
// every reason recorded against it (fired and audit-only), the iteration
// cohort's raw descriptions (the aggregator picks between them per
// surviving status), and the routing key selected for this cohort's
// status (consumed by the Action Selector).
type CohortResult struct {
	CohortLabel         string
	CohortGroup         string
	Priority            int
	Status              Status
	Reasons             []Reason
	PositiveDescription string
	NegativeDescription string
	RoutingKey          string
}

// Description returns the presentation text for this cohort result given
// its own status: PositiveDescription for surviving statuses Actionable/
// NotActionable, NegativeDescription otherwise.
func (c CohortResult) Description() string {
	if c.Status == StatusActionable || c.Status == StatusNotActionable {
		return c.PositiveDescription
	}
	return c.NegativeDescription
}

// CohortGroupResult is the presentation-layer surviving row for one
// cohort_group: the merge of every cohort result (within the group) whose
// status matches the campaign's winning status, with their reasons
// deduplicated.
type CohortGroupResult struct {
	CohortGroup string
	Status      Status
	Reasons     []Reason
	Description string
	RoutingKey  string
}

// Condition is one campaign's contribution to the response.
type Condition struct {
	ConditionName      string
	Status             Status
	StatusText         string
	CohortGroupResults []CohortGroupResult
	SuitabilityRules   []Reason
	Actions            []ResolvedAction
}

// ResolvedAction is an AvailableAction after token expansion, ready for
// the response.
type ResolvedAction struct {
	ActionType        string
	ActionCode        string
	ActionDescription string
	URLLink           string
	URLLabel          string
}

// EligibilityStatus is the Calculator Facade's output: zero or more
// conditions, one per campaign that produced a result.
type EligibilityStatus struct {
	Conditions []Condition
}
