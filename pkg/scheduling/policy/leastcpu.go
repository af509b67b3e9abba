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

package policy

import "github.com/flinkadaptive/scheduler/pkg/apis"

// LeastCPU picks the candidate with the lowest observed CPU percentage,
// breaking ties by listing order.
type LeastCPU struct{}

func (p *LeastCPU) Tag() apis.PolicyTag { return apis.PolicyLeastCPU }

func (p *LeastCPU) Select(_ apis.Pod, candidates []apis.Node, snap apis.MetricsSnapshot) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	best := candidates[0]
	bestPct := snap.NodeCPUPercent(best.Name)
	for _, n := range candidates[1:] {
		if pct := snap.NodeCPUPercent(n.Name); pct < bestPct {
			best, bestPct = n, pct
		}
	}
	return best.Name, nil
}
