package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/calculator"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
)

type eligibilityCheckInput struct {
	NHSNumber  string   `json:"nhs_number" jsonschema:"the person's NHS number"`
	Conditions []string `json:"conditions,omitempty" jsonschema:"optional list of condition/target names to restrict evaluation to"`
	Category   string   `json:"category,omitempty" jsonschema:"optional campaign category filter: V (variable) or S (static)"`
}

type eligibilityCheckOutput struct {
	Conditions []conditionSummary `json:"conditions"`
}

type conditionSummary struct {
	ConditionName string   `json:"condition_name"`
	Status        string   `json:"status"`
	StatusText    string   `json:"status_text"`
	Descriptions  []string `json:"descriptions"`
}

type explainCohortInput struct {
	NHSNumber   string `json:"nhs_number" jsonschema:"the person's NHS number"`
	CampaignID  string `json:"campaign_id" jsonschema:"campaign identifier to inspect"`
	CohortLabel string `json:"cohort_label" jsonschema:"cohort label to explain membership for"`
}

type explainCohortOutput struct {
	CampaignID    string `json:"campaign_id"`
	CohortLabel   string `json:"cohort_label"`
	Virtual       bool   `json:"virtual"`
	HasMembership bool   `json:"has_membership"`
	Admitted      bool   `json:"admitted"`
	Explanation   string `json:"explanation"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "eligibility_check",
		Description: "Evaluate every live campaign for a person and return the resulting conditions, statuses and status text",
	}, s.handleEligibilityCheck)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "eligibility_explain_cohort",
		Description: "Explain whether a person is a member of a given cohort within a campaign, and whether the cohort is virtual",
	}, s.handleExplainCohort)
}

func (s *Server) handleEligibilityCheck(ctx context.Context, _ *mcp.CallToolRequest, input eligibilityCheckInput) (*mcp.CallToolResult, any, error) {
	if s.calc == nil || s.configs == nil || s.people == nil {
		return nil, nil, fmt.Errorf("eligibility calculator unavailable")
	}
	if input.NHSNumber == "" {
		return nil, nil, fmt.Errorf("nhs_number is required")
	}

	view, err := s.people.Load(ctx, input.NHSNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("load person %s: %w", input.NHSNumber, err)
	}

	status, _, err := s.calc.Evaluate(ctx, calculator.Input{
		Person:           view,
		Campaigns:        s.configs.Campaigns(),
		Today:            time.Now(),
		ConditionsFilter: input.Conditions,
		CategoryFilter:   input.Category,
	})
	if err != nil {
		return nil, nil, err
	}

	return jsonToolResult(toCheckOutput(status))
}

func toCheckOutput(status domain.EligibilityStatus) eligibilityCheckOutput {
	out := eligibilityCheckOutput{Conditions: make([]conditionSummary, 0, len(status.Conditions))}
	for _, c := range status.Conditions {
		descriptions := make([]string, 0, len(c.CohortGroupResults))
		for _, group := range c.CohortGroupResults {
			descriptions = append(descriptions, group.Description)
		}
		out.Conditions = append(out.Conditions, conditionSummary{
			ConditionName: c.ConditionName,
			Status:        c.Status.String(),
			StatusText:    c.StatusText,
			Descriptions:  descriptions,
		})
	}
	return out
}

func (s *Server) handleExplainCohort(ctx context.Context, _ *mcp.CallToolRequest, input explainCohortInput) (*mcp.CallToolResult, any, error) {
	if s.configs == nil || s.people == nil {
		return nil, nil, fmt.Errorf("eligibility configuration store unavailable")
	}
	if input.NHSNumber == "" || input.CampaignID == "" || input.CohortLabel == "" {
		return nil, nil, fmt.Errorf("nhs_number, campaign_id and cohort_label are all required")
	}

	var campaign *configmodel.CampaignConfig
	for _, c := range s.configs.Campaigns() {
		if c.ID == input.CampaignID {
			found := c
			campaign = &found
			break
		}
	}
	if campaign == nil {
		return nil, nil, fmt.Errorf("campaign %s not found", input.CampaignID)
	}

	iteration, ok := campaign.CurrentIteration(configmodel.Date{Time: time.Now().UTC()})
	if !ok {
		return nil, nil, fmt.Errorf("campaign %s has no active iteration", input.CampaignID)
	}

	cohort, ok := iteration.CohortByLabel(input.CohortLabel)
	if !ok {
		return nil, nil, fmt.Errorf("cohort %s not declared on campaign %s", input.CohortLabel, input.CampaignID)
	}

	view, err := s.people.Load(ctx, input.NHSNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("load person %s: %w", input.NHSNumber, err)
	}

	hasMembership := view.HasCohort(input.CohortLabel)
	admitted := cohort.Virtual || hasMembership

	explanation := fmt.Sprintf("cohort %s is not virtual and the person has no COHORTS row for it", input.CohortLabel)
	switch {
	case cohort.Virtual:
		explanation = fmt.Sprintf("cohort %s is virtual, so every person is admitted regardless of membership rows", input.CohortLabel)
	case hasMembership:
		explanation = fmt.Sprintf("cohort %s is non-virtual, and the person has a matching COHORTS row", input.CohortLabel)
	}

	return jsonToolResult(explainCohortOutput{
		CampaignID:    input.CampaignID,
		CohortLabel:   input.CohortLabel,
		Virtual:       cohort.Virtual,
		HasMembership: hasMembership,
		Admitted:      admitted,
		Explanation:   explanation,
	})
}

func jsonToolResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}, nil, nil
}
