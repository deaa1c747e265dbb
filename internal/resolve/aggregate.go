package resolve

import (
	"sort"
	"sync"
	"time"

	"accessmap/internal/domain"
	"accessmap/internal/logging"
	"accessmap/internal/snapshot"
)

// Identity resolves one identity's full access mapping. Standing and JIT
// resolution are independent and run concurrently; their hits are merged per
// (target kind, target id) so a target reached by multiple paths accumulates
// all of them under one entry.
func Identity(snap *snapshot.Snapshot, identity string) domain.IdentityMapping {
	start := time.Now()

	var standingHits []TargetHit
	var unmatched []domain.AccessPath
	var jitHits []TargetHit

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		standingHits, unmatched = Standing(snap, identity)
	}()
	go func() {
		defer wg.Done()
		jitHits = JIT(snap, identity)
	}()
	wg.Wait()

	mapping := domain.IdentityMapping{
		Identity:  identity,
		Targets:   mergeHits(standingHits, jitHits),
		Unmatched: unmatched,
	}

	pathCount := len(unmatched)
	for _, target := range mapping.Targets {
		pathCount += len(target.Paths)
	}
	duration := time.Since(start)
	logging.LogIdentityResolution(identity, duration, len(mapping.Targets), pathCount)
	logging.GetMetrics().RecordIdentityResolution(identity, duration, len(mapping.Targets), pathCount)

	return mapping
}

// mergeHits folds resolver hits into one entry per target, standing paths
// before JIT paths. Output is sorted by (kind, id) for deterministic
// rendering.
func mergeHits(standing, jit []TargetHit) []domain.TargetAccess {
	entries := make(map[domain.TargetKey]*domain.TargetAccess)
	var order []domain.TargetKey

	fold := func(hits []TargetHit) {
		for _, hit := range hits {
			key := hit.Target.Key()
			entry, ok := entries[key]
			if !ok {
				entry = &domain.TargetAccess{
					Kind:         hit.Target.Kind,
					ID:           hit.Target.ID,
					Name:         hit.Target.Name,
					VPCID:        hit.Target.VPCID,
					Status:       hit.Target.Status,
					InstanceType: hit.Target.InstanceType,
					Engine:       hit.Target.Engine,
				}
				entries[key] = entry
				order = append(order, key)
			}
			if entry.MatchedAddress == nil && hit.MatchedAddress != nil {
				entry.MatchedAddress = hit.MatchedAddress
			}
			entry.Paths = append(entry.Paths, hit.Path)
		}
	}
	fold(standing)
	fold(jit)

	if len(order) == 0 {
		return nil
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Kind != order[j].Kind {
			return order[i].Kind < order[j].Kind
		}
		return order[i].ID < order[j].ID
	})
	targets := make([]domain.TargetAccess, 0, len(order))
	for _, key := range order {
		targets = append(targets, *entries[key])
	}
	return targets
}
