package resolve

import (
	"context"
	"sort"
	"sync"
	"time"

	"accessmap/internal/domain"
	"accessmap/internal/logging"
	"accessmap/internal/snapshot"
)

const defaultMaxConcurrentIdentities = 8

// Options tunes whole-graph resolution.
type Options struct {
	// Workers bounds the number of identities resolved concurrently.
	// Zero means the default.
	Workers int
}

// Graph resolves every identity in the snapshot. Per-identity resolution is
// independent, so identities fan out across a bounded worker pool and fan in
// to the aggregated summary. Identities that resolve to nothing at all are
// skipped. On context cancellation the mapping aggregated so far is returned
// as partial together with the context error; the caller decides whether a
// partial response is acceptable.
func Graph(ctx context.Context, snap *snapshot.Snapshot, opts Options) (domain.GraphMapping, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultMaxConcurrentIdentities
	}

	identities := snap.Identities()
	logging.LogOperationStart("resolve_graph", map[string]interface{}{
		"identities": len(identities),
		"workers":    workers,
	})

	var mu sync.Mutex
	results := make(map[string]domain.IdentityMapping, len(identities))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)
	cancelled := false
	for _, identity := range identities {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		// Acquire the worker slot before spawning so the spawn loop blocks
		// under a full pool and observes cancellation between identities.
		select {
		case <-ctx.Done():
			cancelled = true
		case semaphore <- struct{}{}:
		}
		if cancelled {
			break
		}
		wg.Add(1)
		go func(identity string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			mapping := Identity(snap, identity)
			if !mapping.HasAccess() {
				return
			}
			mu.Lock()
			results[identity] = mapping
			mu.Unlock()
		}(identity)
	}
	wg.Wait()

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	graph := domain.GraphMapping{Partial: cancelled}
	distinctTargets := make(map[domain.TargetKey]bool)
	for _, name := range names {
		mapping := results[name]
		graph.Identities = append(graph.Identities, mapping)
		for _, target := range mapping.Targets {
			distinctTargets[domain.TargetKey{Kind: target.Kind, ID: target.ID}] = true
			for _, path := range target.Paths {
				switch path.Type {
				case domain.AccessTypeStanding:
					graph.Summary.StandingPathCount++
				case domain.AccessTypeJIT:
					graph.Summary.JITPathCount++
				}
			}
		}
	}
	graph.Summary.IdentityCount = len(graph.Identities)
	graph.Summary.TargetCount = len(distinctTargets)

	duration := time.Since(start)
	logging.LogOperationEnd("resolve_graph", duration, !cancelled, len(identities), graph.Summary.TargetCount, ctx.Err())
	logging.GetMetrics().RecordOperation("resolve_graph", duration, !cancelled, len(identities), graph.Summary.TargetCount, ctx.Err())

	if cancelled {
		return graph, ctx.Err()
	}
	return graph, nil
}
