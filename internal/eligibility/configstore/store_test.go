package configstore

import (
	"context"
	"testing"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
)

type fakeSource struct {
	name    string
	configs []configmodel.CampaignConfig
	err     error
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Load(context.Context) ([]configmodel.CampaignConfig, error) {
	return f.configs, f.err
}

func campaign(id string) configmodel.CampaignConfig {
	return configmodel.CampaignConfig{ID: id}
}

func TestStore_RefreshMergesSourcesLaterWins(t *testing.T) {
	baseline := &fakeSource{name: "mysql", configs: []configmodel.CampaignConfig{campaign("RSV"), campaign("COVID")}}
	hotfix := &fakeSource{name: "oci", configs: []configmodel.CampaignConfig{{ID: "RSV", Version: 2}}}

	store := New(baseline, hotfix)
	outcomes := store.Refresh(context.Background())
	if outcomes["mysql"] != nil || outcomes["oci"] != nil {
		t.Fatalf("expected no source errors, got %+v", outcomes)
	}

	campaigns := store.Campaigns()
	if len(campaigns) != 2 {
		t.Fatalf("expected 2 merged campaigns, got %d", len(campaigns))
	}
	for _, c := range campaigns {
		if c.ID == "RSV" && c.Version != 2 {
			t.Fatalf("expected the later source's RSV version to win, got %d", c.Version)
		}
	}
}

func TestStore_RefreshToleratesFailingSource(t *testing.T) {
	good := &fakeSource{name: "mysql", configs: []configmodel.CampaignConfig{campaign("RSV")}}
	bad := &fakeSource{name: "oci", err: context.DeadlineExceeded}

	store := New(good, bad)
	outcomes := store.Refresh(context.Background())
	if outcomes["oci"] == nil {
		t.Fatal("expected the failing source's error to be reported")
	}

	campaigns := store.Campaigns()
	if len(campaigns) != 1 || campaigns[0].ID != "RSV" {
		t.Fatalf("expected the healthy source's campaign to still be present, got %+v", campaigns)
	}
}

func TestStore_PutAndRemove(t *testing.T) {
	store := New()
	store.Put(campaign("RSV"))
	store.Put(campaign("COVID"))
	if len(store.Campaigns()) != 2 {
		t.Fatalf("expected 2 campaigns after Put, got %d", len(store.Campaigns()))
	}

	store.Put(configmodel.CampaignConfig{ID: "RSV", Version: 3})
	campaigns := store.Campaigns()
	if len(campaigns) != 2 {
		t.Fatalf("expected Put to replace, not append, got %d", len(campaigns))
	}

	store.Remove("COVID")
	campaigns = store.Campaigns()
	if len(campaigns) != 1 || campaigns[0].ID != "RSV" {
		t.Fatalf("expected only RSV to remain after Remove, got %+v", campaigns)
	}
}

func TestStore_CampaignsEmptyByDefault(t *testing.T) {
	store := New()
	if campaigns := store.Campaigns(); len(campaigns) != 0 {
		t.Fatalf("expected no campaigns before any Refresh/Put, got %d", len(campaigns))
	}
}
