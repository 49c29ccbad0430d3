package calculator

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return tm
}

func cfgDate(t *testing.T, s string) configmodel.Date {
	return configmodel.Date{Time: mustDate(t, s)}
}

func rsvCampaign(t *testing.T, rule configmodel.IterationRule) configmodel.CampaignConfig {
	return configmodel.CampaignConfig{
		ID:      "RSV-2025",
		Name:    "RSV 2025",
		Type:    configmodel.CampaignCategoryVariable,
		Target:  "RSV",
		StartDate: cfgDate(t, "20250101"),
		EndDate:   cfgDate(t, "20251231"),
		Iterations: []configmodel.Iteration{
			{
				ID:            "iter-1",
				IterationDate: cfgDate(t, "20250101"),
				Type:          configmodel.IterationTypeAutomatic,
				IterationCohorts: []configmodel.IterationCohort{
					{CohortLabel: "vc", CohortGroup: "g", Virtual: true, PositiveDescription: "eligible", NegativeDescription: "not eligible"},
				},
				IterationRules: []configmodel.IterationRule{rule},
				ActionsMapper:  configmodel.ActionsMapper{},
			},
		},
	}
}

func onePersonView(attrs map[string]string) *person.View {
	return person.New([]person.Record{{Type: person.RowTypePerson, Attributes: attrs}})
}

// TestS3_TargetDateWindow mirrors seed scenario S3: a D>= -365 rule against
// a TARGET.RSV.LAST_SUCCESSFUL_DATE attribute.
func TestS3_TargetDateWindow(t *testing.T) {
	rule := configmodel.IterationRule{
		Type: configmodel.RuleTypeSuppression, Name: "recent-dose", Priority: 1,
		AttributeLevel: configmodel.AttributeLevelTarget, AttributeTarget: "RSV",
		AttributeName: "LAST_SUCCESSFUL_DATE", Operator: "D>=", Comparator: "-365",
	}
	campaign := rsvCampaign(t, rule)
	today := mustDate(t, "20250101")

	cases := []struct {
		name   string
		dob    string
		status domain.Status
	}{
		{"recent dose suppresses", "20240601", domain.StatusNotActionable},
		{"old dose does not suppress", "20230601", domain.StatusActionable},
		{"missing date does not suppress", "", domain.StatusActionable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := []person.Record{{Type: person.RowTypePerson, Attributes: map[string]string{}}}
			if tc.dob != "" {
				rows = append(rows, person.Record{Type: person.RowTypeTarget, TargetName: "RSV", Attributes: map[string]string{"LAST_SUCCESSFUL_DATE": tc.dob}})
			}
			view := person.New(rows)

			facade := New(logr.Discard())
			out, _, err := facade.Evaluate(context.Background(), Input{
				Person: view, Campaigns: []configmodel.CampaignConfig{campaign},
				Today: today, IncludeActions: false, ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out.Conditions) != 1 {
				t.Fatalf("expected one condition, got %d", len(out.Conditions))
			}
			if out.Conditions[0].Status != tc.status {
				t.Fatalf("expected status %v, got %v", tc.status, out.Conditions[0].Status)
			}
		})
	}
}

// TestS4_CurrentIterationOnly mirrors seed scenario S4: only the iteration
// with the greatest IterationDate not after today applies.
func TestS4_CurrentIterationOnly(t *testing.T) {
	campaign := configmodel.CampaignConfig{
		ID: "RSV-2025", Target: "RSV", Type: configmodel.CampaignCategoryVariable,
		StartDate: cfgDate(t, "20250101"), EndDate: cfgDate(t, "20251231"),
		Iterations: []configmodel.Iteration{
			{
				ID: "early", IterationDate: cfgDate(t, "20250410"), Type: configmodel.IterationTypeAutomatic,
				IterationCohorts: []configmodel.IterationCohort{{CohortLabel: "vc", CohortGroup: "g", Virtual: true}},
				IterationRules: []configmodel.IterationRule{
					{Type: configmodel.RuleTypeFilter, Name: "early-filter", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "X", Operator: "=", Comparator: "never-matches"},
				},
				ActionsMapper: configmodel.ActionsMapper{},
			},
			{
				ID: "current", IterationDate: cfgDate(t, "20250420"), Type: configmodel.IterationTypeAutomatic,
				IterationCohorts: []configmodel.IterationCohort{{CohortLabel: "vc", CohortGroup: "g", Virtual: true}},
				IterationRules: []configmodel.IterationRule{
					{Type: configmodel.RuleTypeFilter, Name: "current-filter", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "X", Operator: "=", Comparator: "match"},
				},
				ActionsMapper: configmodel.ActionsMapper{},
			},
			{
				ID: "future", IterationDate: cfgDate(t, "20250430"), Type: configmodel.IterationTypeAutomatic,
				IterationCohorts: []configmodel.IterationCohort{{CohortLabel: "vc", CohortGroup: "g", Virtual: true}},
				IterationRules: []configmodel.IterationRule{
					{Type: configmodel.RuleTypeFilter, Name: "future-filter", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "X", Operator: "=", Comparator: "never-reached"},
				},
				ActionsMapper: configmodel.ActionsMapper{},
			},
		},
	}

	view := onePersonView(map[string]string{"X": "match"})
	facade := New(logr.Discard())
	out, _, err := facade.Evaluate(context.Background(), Input{
		Person: view, Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 1 {
		t.Fatalf("expected one condition, got %d", len(out.Conditions))
	}
	if out.Conditions[0].Status != domain.StatusNotEligible {
		t.Fatalf("expected the 2025-04-20 iteration's filter to fire, got %v", out.Conditions[0].Status)
	}
}

// TestS6_StatusTextFallback mirrors seed scenario S6: an iteration with no
// StatusText override falls back to the default wording.
func TestS6_StatusTextFallback(t *testing.T) {
	campaign := rsvCampaign(t, configmodel.IterationRule{
		Type: configmodel.RuleTypeSuppression, Name: "never-fires", Priority: 1,
		AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "X", Operator: "=", Comparator: "nope",
	})
	view := onePersonView(map[string]string{})
	facade := New(logr.Discard())
	out, _, err := facade.Evaluate(context.Background(), Input{
		Person: view, Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "You should have the RSV vaccine"
	if out.Conditions[0].StatusText != want {
		t.Fatalf("expected default status text %q, got %q", want, out.Conditions[0].StatusText)
	}
}

// TestS7_MultiCampaignPrecedence mirrors seed scenario S7: independent
// campaigns each surface their own status.
func TestS7_MultiCampaignPrecedence(t *testing.T) {
	rsv := rsvCampaign(t, configmodel.IterationRule{
		Type: configmodel.RuleTypeFilter, Name: "icb-filter", Priority: 1,
		AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "ICB", Operator: "=", Comparator: "ICB1",
	})

	covid := configmodel.CampaignConfig{
		ID: "COVID-2025", Target: "COVID", Type: configmodel.CampaignCategoryVariable,
		StartDate: cfgDate(t, "20250101"), EndDate: cfgDate(t, "20251231"),
		Iterations: []configmodel.Iteration{
			{
				ID: "iter-1", IterationDate: cfgDate(t, "20250101"), Type: configmodel.IterationTypeAutomatic,
				IterationCohorts: []configmodel.IterationCohort{{CohortLabel: "vc", CohortGroup: "g", Virtual: true}},
				IterationRules: []configmodel.IterationRule{
					{Type: configmodel.RuleTypeSuppression, Name: "age", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "DATE_OF_BIRTH", Operator: "Y<", Comparator: "-75"},
				},
				ActionsMapper: configmodel.ActionsMapper{},
			},
		},
	}

	view := onePersonView(map[string]string{"ICB": "ICB1", "DATE_OF_BIRTH": "19400101"})
	facade := New(logr.Discard())
	out, _, err := facade.Evaluate(context.Background(), Input{
		Person: view, Campaigns: []configmodel.CampaignConfig{rsv, covid},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 2 {
		t.Fatalf("expected two conditions, got %d", len(out.Conditions))
	}
	byName := map[string]domain.Condition{}
	for _, c := range out.Conditions {
		byName[c.ConditionName] = c
	}
	if byName["RSV"].Status != domain.StatusNotEligible {
		t.Fatalf("expected RSV NotEligible, got %v", byName["RSV"].Status)
	}
	if byName["COVID"].Status != domain.StatusNotActionable {
		t.Fatalf("expected COVID NotActionable, got %v", byName["COVID"].Status)
	}
}

// TestInvariant1_CampaignNotLiveTodayProducesNoCondition covers invariant 1.
func TestInvariant1_CampaignNotLiveTodayProducesNoCondition(t *testing.T) {
	campaign := rsvCampaign(t, configmodel.IterationRule{Type: configmodel.RuleTypeFilter, Name: "x", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "A", Operator: "=", Comparator: "1"})
	campaign.StartDate = cfgDate(t, "20260101")
	campaign.EndDate = cfgDate(t, "20261231")

	facade := New(logr.Discard())
	out, record, err := facade.Evaluate(context.Background(), Input{
		Person: onePersonView(nil), Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 0 {
		t.Fatalf("expected no conditions for a campaign outside its date window, got %d", len(out.Conditions))
	}
	if len(record.Campaigns) != 0 {
		t.Fatalf("a campaign skipped for not being live yields no audit line, got %d", len(record.Campaigns))
	}
}

// TestInvariant2_NoActiveIterationSkipsWithOneAuditLine covers invariant 2.
func TestInvariant2_NoActiveIterationSkipsWithOneAuditLine(t *testing.T) {
	campaign := rsvCampaign(t, configmodel.IterationRule{Type: configmodel.RuleTypeFilter, Name: "x", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "A", Operator: "=", Comparator: "1"})
	campaign.Iterations[0].IterationDate = cfgDate(t, "20251231")

	facade := New(logr.Discard())
	out, record, err := facade.Evaluate(context.Background(), Input{
		Person: onePersonView(nil), Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 0 {
		t.Fatalf("expected no conditions when no iteration is active yet, got %d", len(out.Conditions))
	}
	if len(record.Campaigns) != 1 || !record.Campaigns[0].Skipped {
		t.Fatalf("expected exactly one skip audit line, got %+v", record.Campaigns)
	}
	want := "Skipping campaign ID RSV-2025 as no active iteration was found."
	if record.Campaigns[0].SkipMessage != want {
		t.Fatalf("expected skip message %q, got %q", want, record.Campaigns[0].SkipMessage)
	}
}

// TestCategoryAndConditionsFilters checks the three filter parameters are
// applied before any evaluation work is done.
func TestCategoryAndConditionsFilters(t *testing.T) {
	campaign := rsvCampaign(t, configmodel.IterationRule{Type: configmodel.RuleTypeFilter, Name: "x", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "A", Operator: "=", Comparator: "1"})

	facade := New(logr.Discard())
	out, _, err := facade.Evaluate(context.Background(), Input{
		Person: onePersonView(nil), Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"COVID"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 0 {
		t.Fatalf("expected RSV excluded by a COVID-only conditions filter, got %d", len(out.Conditions))
	}

	out, _, err = facade.Evaluate(context.Background(), Input{
		Person: onePersonView(nil), Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "S",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 0 {
		t.Fatalf("expected a Variable campaign excluded by category filter S, got %d", len(out.Conditions))
	}
}

// TestConfigInvalidFailsClosed checks that a malformed campaign aborts the
// whole request rather than being skipped.
func TestConfigInvalidFailsClosed(t *testing.T) {
	campaign := rsvCampaign(t, configmodel.IterationRule{Type: configmodel.RuleTypeFilter, Name: "x", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "A", Operator: "=", Comparator: "1"})
	campaign.StartDate = cfgDate(t, "20251231")
	campaign.EndDate = cfgDate(t, "20250101")

	facade := New(logr.Discard())
	_, _, err := facade.Evaluate(context.Background(), Input{
		Person: onePersonView(nil), Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err == nil {
		t.Fatal("expected ConfigInvalid for start_date > end_date")
	}
}

// TestAuditRecordsLosingCohortReasons checks that a cohort whose own
// status loses out to another cohort's still has its fired and non-fired
// rules captured in the audit trail, not just the winning cohort's
// deduplicated SuitabilityRules.
func TestAuditRecordsLosingCohortReasons(t *testing.T) {
	campaign := configmodel.CampaignConfig{
		ID: "RSV-2025", Target: "RSV", Type: configmodel.CampaignCategoryVariable,
		StartDate: cfgDate(t, "20250101"), EndDate: cfgDate(t, "20251231"),
		Iterations: []configmodel.Iteration{
			{
				ID: "iter-1", IterationDate: cfgDate(t, "20250101"), Type: configmodel.IterationTypeAutomatic,
				IterationCohorts: []configmodel.IterationCohort{
					{CohortLabel: "excluded-cohort", CohortGroup: "g"},
					{CohortLabel: "actionable-cohort", CohortGroup: "g"},
				},
				IterationRules: []configmodel.IterationRule{
					{
						Type: configmodel.RuleTypeFilter, Name: "excluded-filter", Priority: 1,
						AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "ICB", Operator: "=", Comparator: "ICB1",
						CohortLabel: "excluded-cohort",
					},
				},
				ActionsMapper: configmodel.ActionsMapper{},
			},
		},
	}

	view := person.New([]person.Record{
		{Type: person.RowTypePerson, Attributes: map[string]string{"ICB": "ICB1"}},
		{Type: person.RowTypeCohorts, Attributes: map[string]string{"excluded-cohort": "Y", "actionable-cohort": "Y"}},
	})

	facade := New(logr.Discard())
	out, record, err := facade.Evaluate(context.Background(), Input{
		Person: view, Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Conditions) != 1 || out.Conditions[0].Status != domain.StatusActionable {
		t.Fatalf("expected the campaign to be Actionable on the strength of actionable-cohort, got %+v", out.Conditions)
	}

	if len(record.Campaigns) != 1 {
		t.Fatalf("expected one audit line, got %d", len(record.Campaigns))
	}
	var found bool
	for _, r := range record.Campaigns[0].Rules {
		if r.CohortLabel == "excluded-cohort" && r.RuleName == "excluded-filter" {
			found = true
			if !r.Fired {
				t.Fatalf("expected excluded-cohort's filter rule to be recorded as fired, got %+v", r)
			}
		}
	}
	if !found {
		t.Fatalf("expected the audit trail to include excluded-cohort's rule despite it losing to actionable-cohort's status, got %+v", record.Campaigns[0].Rules)
	}
}

// TestInvalidTokenFailsWholeRequest checks a malformed token aborts the
// request rather than rendering partial output.
func TestInvalidTokenFailsWholeRequest(t *testing.T) {
	campaign := rsvCampaign(t, configmodel.IterationRule{Type: configmodel.RuleTypeFilter, Name: "x", Priority: 1, AttributeLevel: configmodel.AttributeLevelPerson, AttributeName: "A", Operator: "=", Comparator: "never-matches"})
	campaign.Iterations[0].IterationCohorts[0].PositiveDescription = "[[PERSON.DOB:INVALID_DATE_FORMAT(x)]]"

	facade := New(logr.Discard())
	_, _, err := facade.Evaluate(context.Background(), Input{
		Person: onePersonView(nil), Campaigns: []configmodel.CampaignConfig{campaign},
		Today: mustDate(t, "20250425"), ConditionsFilter: []string{"ALL"}, CategoryFilter: "ALL",
	})
	if err == nil {
		t.Fatal("expected InvalidToken for a malformed token suffix")
	}
}
