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

// Package orchestrator is the thin capability layer over the cluster
// API described in spec.md §4.1: list nodes, list pending pods, bind a
// pod to a node.
package orchestrator

import (
	"context"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

// Client is the capability surface the scheduling loop depends on. It
// never filters or makes placement decisions; that is the loop's job
// (see FilterCandidates and pkg/scheduling/policy).
type Client interface {
	// ListNodes returns the current set of cluster nodes.
	ListNodes(ctx context.Context) ([]apis.Node, error)
	// ListPendingPods returns pods claimed by schedulerName, matching
	// componentLabelSelector, with no node assigned yet.
	ListPendingPods(ctx context.Context, schedulerName, componentLabelSelector string) ([]apis.Pod, error)
	// Bind commits pod's placement onto node. A non-nil error is always
	// a *BindError.
	Bind(ctx context.Context, pod apis.Pod, node string) error
}
