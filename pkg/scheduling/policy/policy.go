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

// Package policy implements the pluggable placement policies of spec.md
// §4.3: pure functions of (pod, candidate nodes, metrics snapshot) that
// pick a destination node. No policy performs I/O; everything they need
// is handed to them by the scheduling loop.
package policy

import (
	"errors"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

// ErrNoCandidates is returned by every Policy when handed an empty
// candidate list, so callers can distinguish "nothing fit" from a
// policy-specific failure.
var ErrNoCandidates = errors.New("no candidate nodes available")

// Policy selects a destination node for pod among candidates, using
// snap as the only source of cluster load information.
type Policy interface {
	Tag() apis.PolicyTag
	Select(pod apis.Pod, candidates []apis.Node, snap apis.MetricsSnapshot) (string, error)
}

// Registry holds one instance of every supported policy, indexed by tag,
// so the scheduling loop and the adaptive selector can switch between
// them without reconstructing state and losing round-robin counters or
// bandit arm statistics.
type Registry struct {
	policies map[apis.PolicyTag]Policy
}

// NewRegistry builds the standard policy set. The bandit policy is
// constructed separately and passed in because it carries mutable,
// long-lived arm statistics that callers (e.g. the scheduling package's
// BuildStatsReport) need direct access to.
func NewRegistry(bandit *Bandit) *Registry {
	r := &Registry{policies: map[apis.PolicyTag]Policy{}}
	r.register(&FirstAvailable{})
	r.register(&RoundRobin{})
	r.register(&LeastCPU{})
	r.register(&Priority{fallback: &FirstAvailable{}, escalateTo: &LeastCPU{}})
	r.register(bandit)
	return r
}

func (r *Registry) register(p Policy) {
	r.policies[p.Tag()] = p
}

// Get returns the policy for tag, and whether it was found.
func (r *Registry) Get(tag apis.PolicyTag) (Policy, bool) {
	p, ok := r.policies[tag]
	return p, ok
}
