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

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

type fakeFetcher struct {
	usage map[string]NodeUsage
	err   error
	calls int
}

func (f *fakeFetcher) FetchNodeUsage(ctx context.Context) (map[string]NodeUsage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.usage, nil
}

type fakeClusterView struct {
	counts map[string]int
}

func (f *fakeClusterView) PodCountByNode(ctx context.Context) (map[string]int, error) {
	return f.counts, nil
}

func nodes(names ...string) []apis.Node {
	out := make([]apis.Node, 0, len(names))
	for _, n := range names {
		out = append(out, apis.Node{Name: n, Ready: true, AllocatableMillis: 1000})
	}
	return out
}

func TestSnapshotUsesRealMetricsWhenAvailable(t *testing.T) {
	fetcher := &fakeFetcher{usage: map[string]NodeUsage{
		"node-a": {CPU: "500m"},
		"node-b": {CPU: "250m"},
	}}
	src := NewSource(fetcher, &fakeClusterView{}, DefaultCacheTTL)

	snap := src.Snapshot(context.Background(), nodes("node-a", "node-b"))

	if !snap.MetricsAvailable() {
		t.Fatalf("expected metrics available")
	}
	if got := snap.NodeCPUPercent("node-a"); got != 50 {
		t.Fatalf("node-a = %v, want 50", got)
	}
	if got := snap.NodeCPUPercent("node-b"); got != 25 {
		t.Fatalf("node-b = %v, want 25", got)
	}
}

func TestSnapshotCachesAcrossCalls(t *testing.T) {
	fetcher := &fakeFetcher{usage: map[string]NodeUsage{"node-a": {CPU: "500m"}}}
	src := NewSource(fetcher, &fakeClusterView{}, DefaultCacheTTL)

	src.Snapshot(context.Background(), nodes("node-a"))
	src.Snapshot(context.Background(), nodes("node-a"))

	if fetcher.calls != 1 {
		t.Fatalf("expected one underlying fetch, got %d", fetcher.calls)
	}
}

func TestSnapshotFallsBackToEstimatorOnTotalFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("metrics API unreachable")}
	cluster := &fakeClusterView{counts: map[string]int{"node-a": 5}}
	src := NewSource(fetcher, cluster, DefaultCacheTTL)

	snap := src.Snapshot(context.Background(), nodes("node-a"))

	if snap.MetricsAvailable() {
		t.Fatalf("expected estimator mode to report metrics unavailable")
	}
	want := estimate(5)
	if got := snap.NodeCPUPercent("node-a"); got != want {
		t.Fatalf("node-a = %v, want %v", got, want)
	}
	if !src.Estimating() {
		t.Fatalf("expected estimator latch to be set")
	}
}

func TestSnapshotLatchesEstimatorForSubsequentCalls(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("metrics API unreachable")}
	cluster := &fakeClusterView{counts: map[string]int{"node-a": 1}}
	src := NewSource(fetcher, cluster, 0)

	src.Snapshot(context.Background(), nodes("node-a"))
	fetcher.err = nil
	fetcher.usage = map[string]NodeUsage{"node-a": {CPU: "500m"}}

	// A cache hit for node-a would skip refresh entirely; exercise a
	// different node to confirm the latch, not the cache, governs mode.
	snap := src.Snapshot(context.Background(), nodes("node-b"))
	if snap.MetricsAvailable() {
		t.Fatalf("expected latch to keep source in estimator mode despite recovered fetcher")
	}
}

func TestSnapshotEstimatesSingleMissingNodeWithoutLatching(t *testing.T) {
	fetcher := &fakeFetcher{usage: map[string]NodeUsage{
		"node-a": {CPU: "500m"},
	}}
	cluster := &fakeClusterView{counts: map[string]int{"node-b": 2}}
	src := NewSource(fetcher, cluster, DefaultCacheTTL)

	snap := src.Snapshot(context.Background(), nodes("node-a", "node-b"))

	if got := snap.NodeCPUPercent("node-a"); got != 50 {
		t.Fatalf("node-a = %v, want 50", got)
	}
	if got, want := snap.NodeCPUPercent("node-b"), estimate(2); got != want {
		t.Fatalf("node-b = %v, want %v", got, want)
	}
	if src.Estimating() {
		t.Fatalf("a single missing node should not latch global estimator mode")
	}
	if !snap.MetricsAvailable() {
		t.Fatalf("expected snapshot to still report metrics available overall")
	}
}

func TestEstimateClampsToCeiling(t *testing.T) {
	if got := estimate(0); got != 15 {
		t.Fatalf("estimate(0) = %v, want 15", got)
	}
	if got := estimate(100); got != 90 {
		t.Fatalf("estimate(100) = %v, want 90 (clamped)", got)
	}
}
