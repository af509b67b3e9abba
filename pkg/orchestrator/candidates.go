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

package orchestrator

import (
	"github.com/samber/lo"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

// FilterCandidates applies the candidate-node rule from spec.md §4.1: a
// node is a candidate iff it is Ready and carries no NoSchedule or
// NoExecute taint. This filtering is the loop's responsibility, not the
// client's, so it lives alongside the other scheduling-adjacent helpers
// rather than inside the client implementation.
func FilterCandidates(nodes []apis.Node) []apis.Node {
	return lo.Filter(nodes, func(n apis.Node, _ int) bool {
		return n.Ready && !n.SchedulingBlocked()
	})
}
