// Package configstore is the campaign-configuration store: an in-memory,
// read-only-after-refresh cache of configmodel.CampaignConfig values,
// fed by a MySQL source and/or an OCI registry source, and refreshed on
// a schedule by cmd/eligibility-api.
package configstore

import (
	"context"
	"sync/atomic"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
)

// Source loads the full current set of campaign configurations from one
// backing system. MySQLSource and OCISource both implement it.
type Source interface {
	Load(ctx context.Context) ([]configmodel.CampaignConfig, error)
	Name() string
}

// Store holds the merged, currently-live set of campaign configurations.
// Reads (Campaigns) never block a concurrent Refresh: the snapshot is
// swapped atomically, so campaign configuration is read-only and safely
// shared by reference across parallel requests with no lock on the read
// path.
type Store struct {
	sources []Source
	current atomic.Pointer[[]configmodel.CampaignConfig]
}

// New builds a Store backed by the given sources, evaluated in order;
// a later source's campaign with the same ID replaces an earlier one,
// whatever either's Version, letting an OCI-distributed hotfix take precedence over
// the MySQL baseline without needing a version bump.
func New(sources ...Source) *Store {
	s := &Store{sources: sources}
	empty := []configmodel.CampaignConfig{}
	s.current.Store(&empty)
	return s
}

// Campaigns returns the current snapshot. The caller must not mutate
// the returned slice or its elements.
func (s *Store) Campaigns() []configmodel.CampaignConfig {
	return *s.current.Load()
}

// Refresh reloads every source and atomically swaps in the merged
// result. A failing source does not abort the refresh; its previous
// contribution is simply dropped from the merge for this cycle, and the
// caller (cmd/eligibility-api's cron job) is responsible for recording
// the per-source outcome via internal/eligibility/metrics.
func (s *Store) Refresh(ctx context.Context) map[string]error {
	outcomes := make(map[string]error, len(s.sources))
	byKey := map[string]configmodel.CampaignConfig{}

	for _, src := range s.sources {
		configs, err := src.Load(ctx)
		outcomes[src.Name()] = err
		if err != nil {
			continue
		}
		for _, c := range configs {
			byKey[c.ID] = c
		}
	}

	merged := make([]configmodel.CampaignConfig, 0, len(byKey))
	for _, c := range byKey {
		merged = append(merged, c)
	}
	s.current.Store(&merged)

	return outcomes
}

// Put inserts or replaces a single campaign configuration directly,
// bypassing Refresh's source merge. Used by internal/controller's CRD
// reconciler, which pushes one validated spec at a time rather than
// reloading every source.
func (s *Store) Put(c configmodel.CampaignConfig) {
	for {
		old := s.current.Load()
		next := make([]configmodel.CampaignConfig, 0, len(*old)+1)
		replaced := false
		for _, existing := range *old {
			if existing.ID == c.ID {
				next = append(next, c)
				replaced = true
				continue
			}
			next = append(next, existing)
		}
		if !replaced {
			next = append(next, c)
		}
		if s.current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Remove drops a campaign configuration by ID, used when a CampaignConfig
// CRD is deleted.
func (s *Store) Remove(id string) {
	for {
		old := s.current.Load()
		next := make([]configmodel.CampaignConfig, 0, len(*old))
		for _, existing := range *old {
			if existing.ID != id {
				next = append(next, existing)
			}
		}
		if s.current.CompareAndSwap(old, &next) {
			return
		}
	}
}
