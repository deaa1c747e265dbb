package logging

import (
	"fmt"
	"sync"
	"time"
)

// Metrics tracks resolution throughput, per-identity outcomes, and
// data-quality skips across one engine run
type Metrics struct {
	StartTime       time.Time                   `json:"start_time"`
	EndTime         time.Time                   `json:"end_time"`
	Duration        string                      `json:"duration"`
	Identities      map[string]IdentityMetrics  `json:"identities"`
	Operations      map[string]OperationMetrics `json:"operations"`
	Skips           map[string]int              `json:"skips"`
	TotalIdentities int                         `json:"total_identities"`
	TotalTargets    int                         `json:"total_targets"`
	TotalPaths      int                         `json:"total_paths"`
	TotalSkips      int                         `json:"total_skips"`
	mu              sync.RWMutex
}

// IdentityMetrics tracks metrics for one resolved identity
type IdentityMetrics struct {
	Duration     time.Duration `json:"duration"`
	TargetsFound int           `json:"targets_found"`
	PathsFound   int           `json:"paths_found"`
}

// OperationMetrics tracks metrics for high-level operations
type OperationMetrics struct {
	Duration       time.Duration `json:"duration"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ItemsProcessed int           `json:"items_processed"`
	ItemsFound     int           `json:"items_found"`
}

var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics returns the global metrics instance (singleton)
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			StartTime:  time.Now(),
			Identities: make(map[string]IdentityMetrics),
			Operations: make(map[string]OperationMetrics),
			Skips:      make(map[string]int),
		}
	})
	return globalMetrics
}

// RecordIdentityResolution records the outcome of resolving one identity
func (m *Metrics) RecordIdentityResolution(identity string, duration time.Duration, targetsFound, pathsFound int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalIdentities++
	m.TotalTargets += targetsFound
	m.TotalPaths += pathsFound
	m.Identities[identity] = IdentityMetrics{
		Duration:     duration,
		TargetsFound: targetsFound,
		PathsFound:   pathsFound,
	}
}

// RecordSkip records a data-quality element skipped during resolution
// (unresolved credential address, malformed criteria, invalid CIDR, ...)
func (m *Metrics) RecordSkip(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalSkips++
	m.Skips[reason]++
}

// RecordOperation records a high-level operation
func (m *Metrics) RecordOperation(operationName string, duration time.Duration, success bool, itemsProcessed, itemsFound int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	opMetrics := OperationMetrics{
		Duration:       duration,
		Success:        success,
		ItemsProcessed: itemsProcessed,
		ItemsFound:     itemsFound,
	}
	if err != nil {
		opMetrics.Error = err.Error()
	}
	m.Operations[operationName] = opMetrics
}

// FormatMetricsSummary renders a human-readable metrics block for debug runs
func (m *Metrics) FormatMetricsSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()
	elapsed := m.EndTime.Sub(m.StartTime)

	out := fmt.Sprintf("Resolution metrics: %d identities, %d target hits, %d paths in %s\n",
		m.TotalIdentities, m.TotalTargets, m.TotalPaths, elapsed.Round(time.Millisecond))
	if m.TotalSkips > 0 {
		out += fmt.Sprintf("Data-quality skips: %d\n", m.TotalSkips)
		for reason, count := range m.Skips {
			out += fmt.Sprintf("  %s: %d\n", reason, count)
		}
	}
	for name, op := range m.Operations {
		out += fmt.Sprintf("  op %s: %s (processed=%d found=%d)\n",
			name, op.Duration.Round(time.Millisecond), op.ItemsProcessed, op.ItemsFound)
	}
	return out
}
