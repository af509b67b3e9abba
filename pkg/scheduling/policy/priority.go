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

// priorityEscalationThreshold is the pod priority at or above which
// Priority routes through the escalated (load-aware) policy instead of
// the fallback.
const priorityEscalationThreshold = 5

// Priority routes high-priority pods to a load-aware policy and
// everything else to a cheap fallback, per spec.md §4.3.
type Priority struct {
	fallback   Policy
	escalateTo Policy
}

func (p *Priority) Tag() apis.PolicyTag { return apis.PolicyPriority }

func (p *Priority) Select(pod apis.Pod, candidates []apis.Node, snap apis.MetricsSnapshot) (string, error) {
	if pod.Priority() >= priorityEscalationThreshold {
		return p.escalateTo.Select(pod, candidates, snap)
	}
	return p.fallback.Select(pod, candidates, snap)
}
