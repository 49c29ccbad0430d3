package action

import (
	"testing"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/domain"
)

func TestSelect_UsesDefaultRoutingWhenNoOverride(t *testing.T) {
	it := configmodel.Iteration{
		DefaultCommsRouting: "default-key",
		ActionsMapper: configmodel.ActionsMapper{
			"default-key": {ActionType: "book", ActionCode: "BOOK1"},
		},
	}
	groups := []domain.CohortGroupResult{{CohortGroup: "g", Status: domain.StatusActionable}}
	actions := Select(it, domain.StatusActionable, groups)
	if len(actions) != 1 || actions[0].ActionCode != "BOOK1" {
		t.Fatalf("expected default action BOOK1, got %+v", actions)
	}
}

func TestSelect_RoutingOverrideWins(t *testing.T) {
	it := configmodel.Iteration{
		DefaultCommsRouting: "default-key",
		ActionsMapper: configmodel.ActionsMapper{
			"default-key":  {ActionCode: "DEFAULT"},
			"redirect-key": {ActionCode: "REDIRECT"},
		},
	}
	groups := []domain.CohortGroupResult{{CohortGroup: "g", Status: domain.StatusActionable, RoutingKey: "redirect-key"}}
	actions := Select(it, domain.StatusActionable, groups)
	if len(actions) != 1 || actions[0].ActionCode != "REDIRECT" {
		t.Fatalf("expected overridden action REDIRECT, got %+v", actions)
	}
}

func TestSelect_MissingMapperEntryYieldsNoActions(t *testing.T) {
	it := configmodel.Iteration{DefaultCommsRouting: "absent-key", ActionsMapper: configmodel.ActionsMapper{}}
	groups := []domain.CohortGroupResult{{CohortGroup: "g", Status: domain.StatusActionable}}
	actions := Select(it, domain.StatusActionable, groups)
	if len(actions) != 0 {
		t.Fatalf("expected no actions for unresolvable routing key, got %+v", actions)
	}
}

func TestSelect_DuplicateRoutingKeysCollapse(t *testing.T) {
	it := configmodel.Iteration{
		ActionsMapper: configmodel.ActionsMapper{
			"k": {ActionCode: "ONE"},
		},
	}
	groups := []domain.CohortGroupResult{
		{CohortGroup: "g1", Status: domain.StatusActionable, RoutingKey: "k"},
		{CohortGroup: "g2", Status: domain.StatusActionable, RoutingKey: "k"},
	}
	actions := Select(it, domain.StatusActionable, groups)
	if len(actions) != 1 {
		t.Fatalf("expected duplicate routing keys to collapse to one action, got %d", len(actions))
	}
}
