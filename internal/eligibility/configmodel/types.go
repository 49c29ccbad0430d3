// Package configmodel is the typed, validated representation of campaign
// configuration: campaigns, their iterations, cohorts, rules, available
// actions and status text. It mirrors the wire JSON shape described in the
// campaign configuration external interface almost verbatim — PascalCase
// JSON aliases, YYYYMMDD dates — and performs the validation a loader must
// run before the Eligibility Calculator can trust a document.
//
// Values produced by Parse are read-only: once built, a CampaignConfig is
// safe to share by reference across concurrent requests.
package configmodel

import (
	"strings"
	"time"
)

// RuleType classifies an IterationRule by the effect it has on a cohort's
// verdict when it fires.
type RuleType string

const (
	RuleTypeFilter               RuleType = "F"
	RuleTypeSuppression          RuleType = "S"
	RuleTypeRedirect             RuleType = "R"
	RuleTypeNotEligibleAction    RuleType = "X"
	RuleTypeNotActionableAction  RuleType = "Y"
)

func (t RuleType) valid() bool {
	switch t {
	case RuleTypeFilter, RuleTypeSuppression, RuleTypeRedirect, RuleTypeNotEligibleAction, RuleTypeNotActionableAction:
		return true
	default:
		return false
	}
}

// AttributeLevel identifies which part of the Person View an IterationRule
// reads its attribute from.
type AttributeLevel string

const (
	AttributeLevelPerson AttributeLevel = "PERSON"
	AttributeLevelTarget AttributeLevel = "TARGET"
	AttributeLevelCohort AttributeLevel = "COHORT"
)

func (l AttributeLevel) valid() bool {
	switch l {
	case AttributeLevelPerson, AttributeLevelTarget, AttributeLevelCohort:
		return true
	default:
		return false
	}
}

// IterationType is one of the production iteration classifications. It is
// carried through for audit/governance purposes; the calculator does not
// branch on it.
type IterationType string

const (
	IterationTypeAutomatic IterationType = "A"
	IterationTypeManual    IterationType = "M"
	IterationTypeScheduled IterationType = "S"
	IterationTypeOther     IterationType = "O"
)

func (t IterationType) valid() bool {
	switch t {
	case IterationTypeAutomatic, IterationTypeManual, IterationTypeScheduled, IterationTypeOther:
		return true
	default:
		return false
	}
}

// CampaignCategory is the campaign's category: Variable (data-driven
// iterations) or Static (fixed ruleset).
type CampaignCategory string

const (
	CampaignCategoryVariable CampaignCategory = "V"
	CampaignCategoryStatic   CampaignCategory = "S"
)

func (c CampaignCategory) valid() bool {
	return c == CampaignCategoryVariable || c == CampaignCategoryStatic
}

// IterationFrequency is a governance hint describing how often a campaign's
// iterations are authored. It has no effect on evaluation.
type IterationFrequency string

const (
	IterationFrequencyAdHoc     IterationFrequency = "X"
	IterationFrequencyDaily     IterationFrequency = "D"
	IterationFrequencyWeekly    IterationFrequency = "W"
	IterationFrequencyMonthly   IterationFrequency = "M"
	IterationFrequencyQuarterly IterationFrequency = "Q"
	IterationFrequencyAnnual    IterationFrequency = "A"
)

func (f IterationFrequency) valid() bool {
	switch f {
	case IterationFrequencyAdHoc, IterationFrequencyDaily, IterationFrequencyWeekly,
		IterationFrequencyMonthly, IterationFrequencyQuarterly, IterationFrequencyAnnual:
		return true
	default:
		return false
	}
}

// Date wraps a calendar date parsed from the YYYYMMDD wire format.
type Date struct {
	time.Time
}

const wireDateLayout = "20060102"

// ParseDate parses a YYYYMMDD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(wireDateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// MarshalJSON renders the date back to YYYYMMDD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(wireDateLayout) + `"`), nil
}

// UnmarshalJSON parses a YYYYMMDD-quoted string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IterationCohort declares one cohort a person may belong to for the
// purposes of one iteration.
type IterationCohort struct {
	CohortLabel         string  `json:"CohortLabel"`
	CohortGroup         string  `json:"CohortGroup"`
	PositiveDescription string  `json:"PositiveDescription,omitempty"`
	NegativeDescription string  `json:"NegativeDescription,omitempty"`
	Priority            *int    `json:"Priority,omitempty"`
	Virtual             bool    `json:"-"`
	RawVirtual          string  `json:"Virtual,omitempty"`
}

// priorityOrMax returns Priority, or a very large sentinel when unset, so
// cohorts without an explicit priority sort last.
func (c IterationCohort) priorityOrMax() int {
	if c.Priority == nil {
		return 1<<31 - 1
	}
	return *c.Priority
}

// RuleEntry is display text looked up indirectly through an Iteration's
// RulesMapper via an IterationRule's RuleCode, letting one rule
// definition be reused under different display text per iteration.
type RuleEntry struct {
	RuleName        string `json:"RuleName"`
	RuleDescription string `json:"RuleDescription"`
}

// IterationRule is one condition evaluated against the Person View for a
// given cohort (or, with no CohortLabel, every cohort).
type IterationRule struct {
	Type            RuleType       `json:"Type"`
	Name            string         `json:"Name"`
	Description     string         `json:"Description"`
	Priority        int            `json:"Priority"`
	AttributeLevel  AttributeLevel `json:"AttributeLevel"`
	AttributeName   string         `json:"AttributeName,omitempty"`
	AttributeTarget string         `json:"AttributeTarget,omitempty"`
	CohortLabel     string         `json:"CohortLabel,omitempty"`
	Operator        string         `json:"Operator"`
	Comparator      string         `json:"Comparator"`
	RuleStop        bool           `json:"-"`
	RawRuleStop     rawBool        `json:"RuleStop,omitempty"`
	CommsRouting    string         `json:"CommsRouting,omitempty"`
	RuleCode        string         `json:"RuleCode,omitempty"`
}

// AvailableAction is one action a campaign can route a person to.
type AvailableAction struct {
	ActionType         string `json:"ActionType"`
	ActionCode         string `json:"ExternalRoutingCode"`
	ActionDescription  string `json:"ActionDescription,omitempty"`
	URLLink            string `json:"UrlLink,omitempty"`
	URLLabel           string `json:"UrlLabel,omitempty"`
}

// ActionsMapper maps a comms routing key to the action it resolves to.
type ActionsMapper map[string]AvailableAction

// StatusText carries per-status override text for an iteration.
type StatusText struct {
	NotEligible   string `json:"NotEligible,omitempty"`
	NotActionable string `json:"NotActionable,omitempty"`
	Actionable    string `json:"Actionable,omitempty"`
}

// Iteration is the active ruleset of a campaign effective from
// IterationDate.
type Iteration struct {
	ID                          string                `json:"ID"`
	Version                     int                   `json:"Version"`
	Name                        string                `json:"Name"`
	IterationDate               Date                  `json:"IterationDate"`
	IterationNumber             *int                  `json:"IterationNumber,omitempty"`
	ApprovalMinimum             *int                  `json:"ApprovalMinimum,omitempty"`
	ApprovalMaximum             *int                  `json:"ApprovalMaximum,omitempty"`
	Type                        IterationType         `json:"Type"`
	DefaultCommsRouting         string                `json:"DefaultCommsRouting"`
	DefaultNotEligibleRouting   string                `json:"DefaultNotEligibleRouting"`
	DefaultNotActionableRouting string                `json:"DefaultNotActionableRouting"`
	IterationCohorts            []IterationCohort     `json:"IterationCohorts"`
	IterationRules              []IterationRule       `json:"IterationRules"`
	ActionsMapper               ActionsMapper         `json:"ActionsMapper"`
	StatusText                  *StatusText           `json:"StatusText,omitempty"`
	RulesMapper                 map[string]RuleEntry  `json:"RulesMapper,omitempty"`
}

// CampaignConfig is a time-bounded recommendation programme, versioned,
// with a sequence of iterations.
type CampaignConfig struct {
	ID                  string              `json:"ID"`
	Version             int                 `json:"Version"`
	Name                string              `json:"Name"`
	Type                CampaignCategory    `json:"Type"`
	Target              string              `json:"Target"`
	Manager             []string            `json:"Manager,omitempty"`
	Approver            []string            `json:"Approver,omitempty"`
	Reviewer            []string            `json:"Reviewer,omitempty"`
	IterationFrequency  IterationFrequency  `json:"IterationFrequency"`
	IterationType       IterationType       `json:"IterationType"`
	IterationTime       string              `json:"IterationTime,omitempty"`
	DefaultCommsRouting string              `json:"DefaultCommsRouting,omitempty"`
	StartDate           Date                `json:"StartDate"`
	EndDate             Date                `json:"EndDate"`
	ApprovalMinimum     *int                `json:"ApprovalMinimum,omitempty"`
	ApprovalMaximum     *int                `json:"ApprovalMaximum,omitempty"`
	Iterations          []Iteration         `json:"Iterations"`
}

// rawBool decodes either a JSON boolean or the "Y"/"N" string convention
// used throughout the wire format.
type rawBool struct {
	set   bool
	value bool
}

func (r *rawBool) UnmarshalJSON(b []byte) error {
	s := string(b)
	switch s {
	case "true":
		r.set, r.value = true, true
	case "false":
		r.set, r.value = true, false
	default:
		trimmed := strings.Trim(s, `"`)
		r.set = true
		r.value = strings.EqualFold(strings.TrimSpace(trimmed), "Y")
	}
	return nil
}

// IsVirtual reports the cohort's normalized Virtual flag.
func (c IterationCohort) IsVirtual() bool { return c.Virtual }
