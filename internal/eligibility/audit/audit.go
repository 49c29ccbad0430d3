// Package audit builds the per-request audit record the Calculator
// Facade hands back to its caller: one entry per campaign considered,
// listing fired and non-fired rules, chosen actions, and final status.
//
// Unlike a long-lived audit log, a Builder is owned by a single request
// and discarded once the response is built — there is no global state or
// persistence here, only an explicit accumulator threaded through the
// facade, per the design note on avoiding hidden mutation.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RuleEntry is one rule's evaluation evidence against one cohort,
// including rules recorded for audit only (MatcherMatched=false).
type RuleEntry struct {
	CohortLabel string
	RuleType    string
	RuleName    string
	Priority    int
	Fired       bool
	Description string
}

// ActionEntry is one action chosen for a campaign, after token
// expansion, recorded for audit.
type ActionEntry struct {
	ActionCode        string
	ActionDescription string
	URLLink           string
}

// CampaignEntry is one campaign's audit trail: either a skip line (no
// active iteration) or the full evaluation record.
type CampaignEntry struct {
	CampaignID  string
	Skipped     bool
	SkipMessage string
	IterationID string
	Rules       []RuleEntry
	Status      string
	StatusText  string
	Actions     []ActionEntry
}

// Record is the finished audit output for one request, identified by a
// fresh ID assigned at Build time so a caller can correlate it with a
// log line or trace span without the Builder itself persisting anything.
type Record struct {
	ID        string
	Timestamp time.Time
	Campaigns []CampaignEntry
}

// Builder accumulates campaign entries across one facade call. It is
// safe for concurrent use so campaigns (or cohorts within a campaign)
// may be evaluated in parallel without synchronizing elsewhere.
type Builder struct {
	mu        sync.Mutex
	campaigns []CampaignEntry
}

// NewBuilder returns an empty Builder ready to accumulate one request's
// audit trail.
func NewBuilder() *Builder {
	return &Builder{}
}

// SkipCampaign records the single informational line required when a
// campaign has no active iteration for today.
func (b *Builder) SkipCampaign(campaignID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.campaigns = append(b.campaigns, CampaignEntry{
		CampaignID:  campaignID,
		Skipped:     true,
		SkipMessage: "Skipping campaign ID " + campaignID + " as no active iteration was found.",
	})
}

// RecordCampaign appends a fully evaluated campaign's audit trail.
func (b *Builder) RecordCampaign(entry CampaignEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.campaigns = append(b.campaigns, entry)
}

// Build finalizes the accumulated entries into a Record. The Builder
// remains usable afterward; Build is a snapshot, not a drain.
func (b *Builder) Build() Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]CampaignEntry, len(b.campaigns))
	copy(out, b.campaigns)
	return Record{ID: uuid.New().String(), Timestamp: time.Now().UTC(), Campaigns: out}
}
