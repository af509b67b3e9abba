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

package selector

import (
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

type fakeSnapshot struct {
	cluster float64
}

func (f fakeSnapshot) NodeCPUPercent(string) float64 { return f.cluster }
func (f fakeSnapshot) ClusterCPUPercent() float64    { return f.cluster }
func (f fakeSnapshot) MetricsAvailable() bool        { return true }

func TestAdaptiveRespectsCooldown(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clocktesting.NewFakeClock(base)
	a := NewAdaptive(clk, 40, 80, 30*time.Second, apis.PolicyFirstAvailable)

	clk.Step(5 * time.Second)
	if _, switched := a.Evaluate(fakeSnapshot{cluster: 90}); switched {
		t.Fatalf("expected no switch before cooldown elapses")
	}
	if a.Active() != apis.PolicyFirstAvailable {
		t.Fatalf("active policy changed despite cooldown")
	}
}

func TestAdaptiveCascadeDefaultsToBalancedBoundaries(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clocktesting.NewFakeClock(base)
	a := NewAdaptive(clk, 40, 80, 30*time.Second, apis.PolicyFirstAvailable)

	steps := []struct {
		cpu  float64
		want apis.PolicyTag
	}{
		{cpu: 25, want: apis.PolicyFirstAvailable},
		{cpu: 45, want: apis.PolicyLeastCPU},
		{cpu: 75, want: apis.PolicyLeastCPU},
		{cpu: 85, want: apis.PolicyBandit},
	}
	for i, s := range steps {
		clk.Step(31 * time.Second)
		a.Evaluate(fakeSnapshot{cluster: s.cpu})
		if a.Active() != s.want {
			t.Fatalf("step %d (cpu=%v): active = %v, want %v", i, s.cpu, a.Active(), s.want)
		}
	}
	if got := len(a.Switches()); got != 2 {
		t.Fatalf("expected 2 recorded switches, got %d", got)
	}
}

func TestThresholdsAggressiveProfileIs30And60(t *testing.T) {
	lo, hi := Thresholds(ProfileAggressive)
	if lo != 30 || hi != 60 {
		t.Fatalf("aggressive thresholds = (%v,%v), want (30,60)", lo, hi)
	}
}

func TestAdaptiveNoSwitchWhenMappedPolicyUnchanged(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clocktesting.NewFakeClock(base)
	a := NewAdaptive(clk, 40, 80, 30*time.Second, apis.PolicyFirstAvailable)

	clk.Step(31 * time.Second)
	if _, switched := a.Evaluate(fakeSnapshot{cluster: 10}); switched {
		t.Fatalf("expected no switch when mapped policy matches active policy")
	}
}
