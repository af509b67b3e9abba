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

// FirstAvailable picks the first candidate in listing order. It is the
// baseline policy: no state, no metrics dependency.
type FirstAvailable struct{}

func (p *FirstAvailable) Tag() apis.PolicyTag { return apis.PolicyFirstAvailable }

func (p *FirstAvailable) Select(_ apis.Pod, candidates []apis.Node, _ apis.MetricsSnapshot) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	return candidates[0].Name, nil
}
