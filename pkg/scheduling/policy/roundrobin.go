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

import (
	"sync/atomic"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

// RoundRobin cycles through candidates in listing order. The cursor is
// owned by the policy instance, not a package global, so multiple
// schedulers in the same process (e.g. under test) don't interfere.
type RoundRobin struct {
	next atomic.Uint64
}

func (p *RoundRobin) Tag() apis.PolicyTag { return apis.PolicyRoundRobin }

func (p *RoundRobin) Select(_ apis.Pod, candidates []apis.Node, _ apis.MetricsSnapshot) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	idx := p.next.Add(1) - 1
	return candidates[idx%uint64(len(candidates))].Name, nil
}
