// Package calculator implements the Calculator Facade: it orchestrates
// cohort resolution, rule evaluation, status aggregation, action
// selection and token expansion across every campaign configuration
// supplied for a request, and assembles the audit record alongside the
// response.
package calculator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/action"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/aggregator"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/audit"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/cohort"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/metrics"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/ruleeval"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/telemetry"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/token"
)

const allFilter = "ALL"

// Input is one get_eligibility_status call's parameters.
type Input struct {
	Person           *person.View
	Campaigns        []configmodel.CampaignConfig
	Today            time.Time
	IncludeActions   bool
	ConditionsFilter []string
	CategoryFilter   string
}

// Facade evaluates campaigns for a person and assembles the response and
// audit record. It holds no request-scoped state; Evaluate is safe to
// call concurrently from multiple goroutines.
type Facade struct {
	Logger logr.Logger
}

// New returns a ready-to-use Facade.
func New(logger logr.Logger) *Facade {
	return &Facade{Logger: logger}
}

// Evaluate runs every applicable campaign for in.Person and returns the
// assembled EligibilityStatus alongside the audit record describing how
// it was reached. It returns an error only for ConfigInvalid or
// InvalidToken — both fail the whole request; any other rule-evaluation
// anomaly is tolerated and treated as a non-match.
func (f *Facade) Evaluate(ctx context.Context, in Input) (domain.EligibilityStatus, audit.Record, error) {
	start := time.Now()
	ctx, span := telemetry.StartEvaluationSpan(ctx)
	defer span.End()

	builder := audit.NewBuilder()
	var conditions []domain.Condition

	for _, campaign := range in.Campaigns {
		if !includesCampaign(campaign, in.CategoryFilter, in.ConditionsFilter) {
			continue
		}
		if err := configmodel.MustValidate(&campaign); err != nil {
			metrics.RecordRequest("config_invalid")
			return domain.EligibilityStatus{}, builder.Build(), err
		}

		condition, auditRules, considered, err := f.evaluateCampaign(ctx, campaign, in)
		if err != nil {
			metrics.RecordRequest("invalid_token")
			return domain.EligibilityStatus{}, builder.Build(), err
		}
		if !considered {
			builder.SkipCampaign(campaign.ID)
			continue
		}

		builder.RecordCampaign(campaignAuditEntry(campaign, condition, auditRules))
		metrics.RecordCampaignEvaluation(campaign.ID, condition.Status.String())
		conditions = append(conditions, condition)
	}

	metrics.RecordRequest("ok")
	metrics.ObserveEvaluationDuration(time.Since(start).Seconds())

	return domain.EligibilityStatus{Conditions: conditions}, builder.Build(), nil
}

// includesCampaign applies the category and condition-name filters
// before any evaluation work is done.
func includesCampaign(campaign configmodel.CampaignConfig, categoryFilter string, conditionsFilter []string) bool {
	if categoryFilter != "" && categoryFilter != allFilter && string(campaign.Type) != categoryFilter {
		return false
	}
	if len(conditionsFilter) == 0 || conditionsFilter[0] == allFilter {
		return true
	}
	for _, name := range conditionsFilter {
		if name == campaign.Target {
			return true
		}
	}
	return false
}

// evaluateCampaign runs one campaign to completion. considered is false
// when the campaign is skipped (not live today, or no active iteration);
// a skipped campaign contributes no condition. The second return value is
// every rule recorded against every cohort considered for this campaign
// — fired and non-fired alike, before aggregation discards the cohorts
// that don't share the campaign's winning status — for the audit record;
// condition.SuitabilityRules is the narrower, deduplicated set the
// caller-facing response carries.
func (f *Facade) evaluateCampaign(ctx context.Context, campaign configmodel.CampaignConfig, in Input) (domain.Condition, []audit.RuleEntry, bool, error) {
	today := configmodel.Date{Time: in.Today}
	if !campaign.CampaignLive(today) {
		return domain.Condition{}, nil, false, nil
	}

	iteration, ok := campaign.CurrentIteration(today)
	if !ok {
		return domain.Condition{}, nil, false, nil
	}

	_, span := telemetry.StartCampaignSpan(ctx, campaign.ID)

	work := cohort.Resolve(iteration, in.Person)

	var cohortResults []domain.CohortResult
	if len(work) == 0 {
		reason, negativeDescription := cohort.EmptyWorkingSetReason(iteration)
		cohortResults = append(cohortResults, domain.CohortResult{
			CohortLabel:         "",
			CohortGroup:         "",
			Status:              domain.StatusNotEligible,
			Reasons:             []domain.Reason{reason},
			NegativeDescription: negativeDescription,
		})
	} else {
		for _, item := range work {
			cohortResults = append(cohortResults, ruleeval.Evaluate(item, iteration.IterationRules, iteration.RulesMapper, in.Person, in.Today))
		}
	}

	var auditRules []audit.RuleEntry
	for _, cr := range cohortResults {
		for _, r := range cr.Reasons {
			auditRules = append(auditRules, audit.RuleEntry{
				CohortLabel: cr.CohortLabel,
				RuleType:    r.RuleType,
				RuleName:    r.RuleName,
				Priority:    r.RulePriority,
				Fired:       r.MatcherMatched,
				Description: r.RuleDescription,
			})
		}
	}

	status, groups, reasons := aggregator.Aggregate(cohortResults)
	sort.Slice(groups, func(i, j int) bool { return groups[i].CohortGroup < groups[j].CohortGroup })

	var actions []domain.ResolvedAction
	if in.IncludeActions {
		raw := action.Select(iteration, status, groups)
		for _, av := range raw {
			resolved, err := expandAction(av, in.Person)
			if err != nil {
				telemetry.EndCampaignSpan(span, status.String())
				return domain.Condition{}, nil, false, err
			}
			actions = append(actions, resolved)
		}
	}

	statusText, err := resolveStatusText(iteration, status, campaign.Target, in.Person)
	if err != nil {
		telemetry.EndCampaignSpan(span, status.String())
		return domain.Condition{}, nil, false, err
	}

	expandedGroups, err := expandGroupDescriptions(groups, in.Person)
	if err != nil {
		telemetry.EndCampaignSpan(span, status.String())
		return domain.Condition{}, nil, false, err
	}

	telemetry.EndCampaignSpan(span, status.String())

	return domain.Condition{
		ConditionName:      campaign.Target,
		Status:             status,
		StatusText:         statusText,
		CohortGroupResults: expandedGroups,
		SuitabilityRules:   reasons,
		Actions:            actions,
	}, auditRules, true, nil
}

func expandGroupDescriptions(groups []domain.CohortGroupResult, view *person.View) ([]domain.CohortGroupResult, error) {
	out := make([]domain.CohortGroupResult, len(groups))
	for i, g := range groups {
		expanded, err := token.Expand(g.Description, view)
		if err != nil {
			return nil, err
		}
		g.Description = expanded
		out[i] = g
	}
	return out, nil
}

func expandAction(av configmodel.AvailableAction, view *person.View) (domain.ResolvedAction, error) {
	description, err := token.Expand(av.ActionDescription, view)
	if err != nil {
		return domain.ResolvedAction{}, err
	}
	urlLink, err := token.Expand(av.URLLink, view)
	if err != nil {
		return domain.ResolvedAction{}, err
	}
	urlLabel, err := token.Expand(av.URLLabel, view)
	if err != nil {
		return domain.ResolvedAction{}, err
	}
	return domain.ResolvedAction{
		ActionType:        av.ActionType,
		ActionCode:        av.ActionCode,
		ActionDescription: description,
		URLLink:           urlLink,
		URLLabel:          urlLabel,
	}, nil
}

// resolveStatusText picks the iteration's StatusText override for status,
// falling back to the default wording when absent or empty, then expands
// any tokens it contains.
func resolveStatusText(it configmodel.Iteration, status domain.Status, conditionName string, view *person.View) (string, error) {
	raw := defaultStatusText(status, conditionName)
	if it.StatusText != nil {
		switch status {
		case domain.StatusActionable:
			if it.StatusText.Actionable != "" {
				raw = it.StatusText.Actionable
			}
		case domain.StatusNotActionable:
			if it.StatusText.NotActionable != "" {
				raw = it.StatusText.NotActionable
			}
		case domain.StatusNotEligible:
			if it.StatusText.NotEligible != "" {
				raw = it.StatusText.NotEligible
			}
		}
	}
	return token.Expand(raw, view)
}

func defaultStatusText(status domain.Status, conditionName string) string {
	switch status {
	case domain.StatusActionable, domain.StatusNotActionable:
		return fmt.Sprintf("You should have the %s vaccine", conditionName)
	default:
		return "We do not believe you can have it"
	}
}

// campaignAuditEntry assembles the audit record for one considered
// campaign. auditRules is the full, unfiltered set of rule evidence
// recorded against every cohort evaluated for this campaign — not
// condition.SuitabilityRules, which aggregator.Aggregate has already
// narrowed to the cohorts sharing the campaign's winning status and
// deduplicated — so a cohort that lost out to the winning verdict still
// has its fired and non-fired rules captured in the audit trail.
func campaignAuditEntry(campaign configmodel.CampaignConfig, condition domain.Condition, auditRules []audit.RuleEntry) audit.CampaignEntry {
	entry := audit.CampaignEntry{
		CampaignID: campaign.ID,
		Status:     condition.Status.String(),
		StatusText: condition.StatusText,
		Rules:      auditRules,
	}
	for _, a := range condition.Actions {
		entry.Actions = append(entry.Actions, audit.ActionEntry{
			ActionCode:        a.ActionCode,
			ActionDescription: a.ActionDescription,
			URLLink:           a.URLLink,
		})
	}
	return entry
}
