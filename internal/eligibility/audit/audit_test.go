package audit

import "testing"

func TestSkipCampaignMessage(t *testing.T) {
	b := NewBuilder()
	b.SkipCampaign("RSV")
	record := b.Build()
	if len(record.Campaigns) != 1 {
		t.Fatalf("expected 1 campaign entry, got %d", len(record.Campaigns))
	}
	want := "Skipping campaign ID RSV as no active iteration was found."
	if record.Campaigns[0].SkipMessage != want {
		t.Fatalf("got %q, want %q", record.Campaigns[0].SkipMessage, want)
	}
}

func TestRecordCampaignAccumulates(t *testing.T) {
	b := NewBuilder()
	b.RecordCampaign(CampaignEntry{CampaignID: "RSV", Status: "Actionable"})
	b.RecordCampaign(CampaignEntry{CampaignID: "COVID", Status: "NotActionable"})
	record := b.Build()
	if len(record.Campaigns) != 2 {
		t.Fatalf("expected 2 campaign entries, got %d", len(record.Campaigns))
	}
}

func TestBuildAssignsAFreshID(t *testing.T) {
	b := NewBuilder()
	first := b.Build()
	second := b.Build()
	if first.ID == "" || second.ID == "" {
		t.Fatal("expected Build to assign a non-empty ID")
	}
	if first.ID == second.ID {
		t.Fatal("expected each Build call to assign a distinct ID")
	}
	if first.Timestamp.IsZero() {
		t.Fatal("expected Build to stamp a timestamp")
	}
}

func TestBuildIsASnapshot(t *testing.T) {
	b := NewBuilder()
	b.RecordCampaign(CampaignEntry{CampaignID: "RSV"})
	first := b.Build()
	b.RecordCampaign(CampaignEntry{CampaignID: "COVID"})
	if len(first.Campaigns) != 1 {
		t.Fatal("expected earlier snapshot to be unaffected by later recordings")
	}
}
