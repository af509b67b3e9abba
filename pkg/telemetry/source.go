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
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	gocache "github.com/patrickmn/go-cache"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

const (
	// DefaultCacheTTL is the metrics cache TTL named in spec.md §4.2.
	DefaultCacheTTL = 5 * time.Second

	estimatorBaseline      = 15.0
	estimatorPerPodPercent = 8.0
	estimatorCeiling       = 90.0
)

// Source is the metrics ingestion and caching layer of spec.md §4.2. It
// owns the metrics cache exclusively (spec.md §3 "Ownership") and is
// safe for concurrent use: the underlying go-cache is lock-protected,
// though in this scheduler's single-goroutine loop (spec.md §5) only the
// loop calls it; the Prometheus scrape reads the gauge that Snapshot sets.
type Source struct {
	fetcher RawMetricsFetcher
	cluster ClusterView
	ttl     time.Duration
	cache   *gocache.Cache

	estimating    atomic.Bool
	latchWarnOnce sync.Once
}

// NewSource constructs a Source. ttl <= 0 falls back to DefaultCacheTTL.
func NewSource(fetcher RawMetricsFetcher, cluster ClusterView, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Source{
		fetcher: fetcher,
		cluster: cluster,
		ttl:     ttl,
		cache:   gocache.New(ttl, ttl*2),
	}
}

// Estimating reports whether the source has latched into estimator mode.
func (s *Source) Estimating() bool {
	return s.estimating.Load()
}

// snapshot is an immutable, already-fetched view of cluster CPU state,
// the value handed to placement policies so that their Select calls stay
// pure functions with no I/O of their own.
type snapshot struct {
	percents  map[string]float64
	available bool
}

var _ apis.MetricsSnapshot = snapshot{}

func (s snapshot) NodeCPUPercent(node string) float64 {
	return s.percents[node]
}

func (s snapshot) ClusterCPUPercent() float64 {
	if len(s.percents) == 0 {
		return 50
	}
	var sum float64
	for _, v := range s.percents {
		sum += v
	}
	return sum / float64(len(s.percents))
}

func (s snapshot) MetricsAvailable() bool {
	return s.available
}

// Snapshot refreshes any expired cache entries for nodes and returns a
// frozen view over all of them. Cache hits are served without a network
// call, per spec.md §4.2.
func (s *Source) Snapshot(ctx context.Context, nodes []apis.Node) apis.MetricsSnapshot {
	percents := make(map[string]float64, len(nodes))
	var stale []apis.Node
	for _, n := range nodes {
		if v, ok := s.cache.Get(cacheKey(n.Name)); ok {
			percents[n.Name] = v.(float64)
			continue
		}
		stale = append(stale, n)
	}
	if len(stale) > 0 {
		s.refresh(ctx, stale, percents)
	}
	ClusterCPUPercentGauge.Set(snapshotClusterAverage(percents))
	return snapshot{percents: percents, available: !s.estimating.Load()}
}

func snapshotClusterAverage(percents map[string]float64) float64 {
	if len(percents) == 0 {
		return 50
	}
	var sum float64
	for _, v := range percents {
		sum += v
	}
	return sum / float64(len(percents))
}

func cacheKey(node string) string {
	return "node/" + node
}

func (s *Source) refresh(ctx context.Context, nodes []apis.Node, out map[string]float64) {
	log := logr.FromContextOrDiscard(ctx)

	if !s.estimating.Load() {
		raw, err := s.fetcher.FetchNodeUsage(ctx)
		if err != nil {
			s.latchEstimator(log, err)
		} else {
			var needEstimate []apis.Node
			for _, n := range nodes {
				usage, ok := raw[n.Name]
				if !ok {
					// Transient single-node lookup failure: estimator for
					// this node only, per spec.md §4.2 failure semantics.
					needEstimate = append(needEstimate, n)
					continue
				}
				millis, perr := ParseCPUMillis(usage.CPU)
				if perr != nil {
					log.Info("defaulting CPU metric to zero after parse failure", "node", n.Name, "raw", usage.CPU, "error", perr.Error())
					millis = 0
				}
				pct := cpuPercentOfAllocatable(millis, n.AllocatableMillis)
				out[n.Name] = pct
				s.cache.Set(cacheKey(n.Name), pct, s.ttl)
			}
			if len(needEstimate) > 0 {
				s.estimateNodes(ctx, needEstimate, out)
			}
			return
		}
	}
	s.estimateNodes(ctx, nodes, out)
}

func (s *Source) latchEstimator(log logr.Logger, err error) {
	s.estimating.Store(true)
	s.latchWarnOnce.Do(func() {
		log.Info("metrics subsystem unavailable, switching to pod-count estimator", "error", err.Error())
	})
}

func (s *Source) estimateNodes(ctx context.Context, nodes []apis.Node, out map[string]float64) {
	counts, err := s.cluster.PodCountByNode(ctx)
	if err != nil {
		counts = map[string]int{}
	}
	for _, n := range nodes {
		pct := estimate(counts[n.Name])
		out[n.Name] = pct
		s.cache.Set(cacheKey(n.Name), pct, s.ttl)
	}
}

func estimate(podCount int) float64 {
	pct := estimatorBaseline + estimatorPerPodPercent*float64(podCount)
	return clamp(pct, 0, estimatorCeiling)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
