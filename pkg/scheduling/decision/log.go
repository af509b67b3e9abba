/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package decision holds the append-only placement decision log and its
// aggregated views, per spec.md §4.6. The control loop never reads back
// from the log; it exists purely for post-hoc inspection.
package decision

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/telemetry"
)

// Log is an append-only, mutex-guarded history of placement decisions.
type Log struct {
	mu      sync.Mutex
	entries []apis.PlacementDecision
}

// NewLog constructs an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Record appends a confirmed placement decision.
func (l *Log) Record(d apis.PlacementDecision) {
	l.mu.Lock()
	l.entries = append(l.entries, d)
	l.mu.Unlock()

	telemetry.DecisionsTotal.WithLabelValues(string(d.Policy), d.Node).Inc()
}

// Snapshot returns a consistent, independently-owned copy of every
// recorded decision.
func (l *Log) Snapshot() []apis.PlacementDecision {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]apis.PlacementDecision, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByPolicy groups the current snapshot's decisions by policy tag.
func (l *Log) ByPolicy() map[apis.PolicyTag][]apis.PlacementDecision {
	return lo.GroupBy(l.Snapshot(), func(d apis.PlacementDecision) apis.PolicyTag {
		return d.Policy
	})
}

// ByNode groups the current snapshot's decisions by destination node.
func (l *Log) ByNode() map[string][]apis.PlacementDecision {
	return lo.GroupBy(l.Snapshot(), func(d apis.PlacementDecision) string {
		return d.Node
	})
}

// PolicyCount is one policy's share of the decision log, used for the
// shutdown statistics dump of spec.md §4.6.
type PolicyCount struct {
	Policy  apis.PolicyTag
	Count   int
	Percent float64
}

// Stats summarizes entries as per-policy counts and percentages of the
// total, ordered by descending count for readability (ties by policy tag).
func Stats(entries []apis.PlacementDecision) []PolicyCount {
	total := len(entries)
	grouped := lo.GroupBy(entries, func(d apis.PlacementDecision) apis.PolicyTag {
		return d.Policy
	})
	out := make([]PolicyCount, 0, len(grouped))
	for tag, ds := range grouped {
		pct := 0.0
		if total > 0 {
			pct = float64(len(ds)) / float64(total) * 100
		}
		out = append(out, PolicyCount{Policy: tag, Count: len(ds), Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Policy < out[j].Policy
	})
	return out
}
