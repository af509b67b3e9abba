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

// Package apis holds the scheduler's pure domain model: the types that
// placement policies and the decision log operate on, independent of
// how they were fetched from the orchestrator.
package apis

import (
	"strconv"
	"time"
)

// TaintEffect mirrors the subset of Kubernetes taint effects that affect
// scheduling eligibility.
type TaintEffect string

const (
	TaintEffectNoSchedule TaintEffect = "NoSchedule"
	TaintEffectNoExecute  TaintEffect = "NoExecute"
)

// Taint is a node taint relevant to candidate filtering.
type Taint struct {
	Key    string
	Effect TaintEffect
}

// Node is the scheduler's view of a cluster node.
type Node struct {
	Name              string
	Ready             bool
	Taints            []Taint
	AllocatableMillis int64
}

// SchedulingBlocked reports whether the node carries a taint that a pod
// without a matching toleration cannot be scheduled onto. This scheduler
// never evaluates tolerations (Non-goal: no preemption or complex
// placement constraints beyond readiness and taints), so any NoSchedule
// or NoExecute taint disqualifies the node outright.
func (n Node) SchedulingBlocked() bool {
	for _, t := range n.Taints {
		if t.Effect == TaintEffectNoSchedule || t.Effect == TaintEffectNoExecute {
			return true
		}
	}
	return false
}

// PriorityLabelKey is the pod label consulted by the priority policy.
const PriorityLabelKey = "priority"

// DefaultPodPriority is used when a pod has no priority label, or the
// label value cannot be parsed as an integer.
const DefaultPodPriority = 1

// Pod is the scheduler's view of a pending pod.
type Pod struct {
	Name          string
	Namespace     string
	SchedulerName string
	NodeName      string
	Labels        map[string]string
}

// Pending reports whether this pod is eligible for this scheduler to act
// on: claimed by name and not yet bound to a node.
func (p Pod) Pending(schedulerName string) bool {
	return p.SchedulerName == schedulerName && p.NodeName == ""
}

// Priority reads the pod's integer priority label, defaulting to
// DefaultPodPriority when the label is absent or unparseable. Modeled as
// an explicit lookup rather than reflection over the label map.
func (p Pod) Priority() int {
	raw, ok := p.Labels[PriorityLabelKey]
	if !ok {
		return DefaultPodPriority
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPodPriority
	}
	return v
}

// MetricsSnapshot is the read-only view of cluster CPU state that a
// placement policy consults. Implementations must serve every call
// within the metrics cache's TTL window without blocking on a fresh
// network fetch.
type MetricsSnapshot interface {
	// NodeCPUPercent returns node CPU usage as a percentage of that
	// node's allocatable CPU, clamped to [0,100].
	NodeCPUPercent(node string) float64
	// ClusterCPUPercent returns the arithmetic mean of per-node CPU
	// percentages across all observed nodes, or 50 if none are known.
	ClusterCPUPercent() float64
	// MetricsAvailable reports whether real metrics are being served,
	// as opposed to the pod-count estimator.
	MetricsAvailable() bool
}

// PolicyTag identifies a placement policy. The set is a process-lifetime
// constant: new policies are never registered at runtime.
type PolicyTag string

const (
	PolicyFirstAvailable PolicyTag = "first-available"
	PolicyRoundRobin     PolicyTag = "round-robin"
	PolicyLeastCPU       PolicyTag = "least-cpu"
	PolicyPriority       PolicyTag = "priority"
	PolicyBandit         PolicyTag = "bandit"
)

// PlacementDecision records a committed pod-to-node binding.
type PlacementDecision struct {
	PodName            string
	PodNamespace       string
	Node               string
	Policy             PolicyTag
	ObservedCPUPercent float64
	Timestamp          time.Time
}

// BanditArmStats tracks one node's UCB1 selection history.
type BanditArmStats struct {
	Node             string
	Selections       int64
	CumulativeReward float64
	LastSelected     time.Time
}

// AverageReward returns CumulativeReward/Selections. The second return
// value is false when Selections is zero, per the invariant that average
// reward is defined only when a node has been selected at least once.
func (s BanditArmStats) AverageReward() (float64, bool) {
	if s.Selections == 0 {
		return 0, false
	}
	return s.CumulativeReward / float64(s.Selections), true
}

// StrategySwitch records one adaptive-selector policy transition.
type StrategySwitch struct {
	From      PolicyTag
	To        PolicyTag
	ClusterCP float64
	Timestamp time.Time
}
