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

// Package selector implements the adaptive meta-policy that switches
// among placement policies based on observed cluster CPU, under a
// cooldown to prevent flapping.
package selector

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/telemetry"
)

// ThresholdProfile names one of the two cascades the repository ships.
type ThresholdProfile string

const (
	// ProfileBalanced is the default {40, 80} cascade with least-cpu
	// occupying the middle tier.
	ProfileBalanced ThresholdProfile = "balanced"
	// ProfileAggressive is the {30, 60} cascade with the bandit
	// occupying the top tier at a lower utilization boundary.
	ProfileAggressive ThresholdProfile = "aggressive"
)

// Thresholds returns the (lo, hi) boundary pair for profile. An unknown
// profile falls back to ProfileBalanced's boundaries.
func Thresholds(profile ThresholdProfile) (lo, hi float64) {
	switch profile {
	case ProfileAggressive:
		return 30, 60
	default:
		return 40, 80
	}
}

const defaultCooldown = 30 * time.Second

// Adaptive implements the cooldown-gated threshold cascade of spec.md
// §4.4: first-available below lo, least-cpu between lo and hi, bandit
// above hi.
type Adaptive struct {
	clock    clock.PassiveClock
	lo, hi   float64
	cooldown time.Duration

	active         apis.PolicyTag
	lastSwitchTime time.Time
	switches       []apis.StrategySwitch
}

// NewAdaptive constructs an Adaptive selector starting active on
// initial, with cascade boundaries lo/hi. A zero cooldown falls back to
// defaultCooldown; a nil clock defaults to the real clock. Callers
// typically derive lo/hi from Thresholds(profile), but pass them
// explicitly so an operator's CPU_LOW_THRESHOLD/CPU_HIGH_THRESHOLD
// overrides can take precedence over the named profile's defaults.
func NewAdaptive(c clock.PassiveClock, lo, hi float64, cooldown time.Duration, initial apis.PolicyTag) *Adaptive {
	if c == nil {
		c = clock.RealClock{}
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Adaptive{
		clock:          c,
		lo:             lo,
		hi:             hi,
		cooldown:       cooldown,
		active:         initial,
		lastSwitchTime: c.Now(),
	}
}

// Active returns the currently active policy tag.
func (a *Adaptive) Active() apis.PolicyTag {
	return a.active
}

// mapPolicy implements the threshold cascade of spec.md §4.4 step 2.
func mapPolicy(clusterCPU, lo, hi float64) apis.PolicyTag {
	switch {
	case clusterCPU > hi:
		return apis.PolicyBandit
	case clusterCPU > lo:
		return apis.PolicyLeastCPU
	default:
		return apis.PolicyFirstAvailable
	}
}

// Evaluate runs one cascade evaluation. It is a no-op, returning false,
// when the cooldown has not yet elapsed. Otherwise it computes the
// mapped policy for the current cluster CPU and, if it differs from the
// active policy, commits the switch and returns the recorded event.
func (a *Adaptive) Evaluate(snap apis.MetricsSnapshot) (apis.StrategySwitch, bool) {
	now := a.clock.Now()
	if now.Sub(a.lastSwitchTime) < a.cooldown {
		return apis.StrategySwitch{}, false
	}

	clusterCPU := snap.ClusterCPUPercent()
	mapped := mapPolicy(clusterCPU, a.lo, a.hi)
	if mapped == a.active {
		return apis.StrategySwitch{}, false
	}

	sw := apis.StrategySwitch{
		From:      a.active,
		To:        mapped,
		ClusterCP: clusterCPU,
		Timestamp: now,
	}
	a.active = mapped
	a.lastSwitchTime = now
	a.switches = append(a.switches, sw)
	telemetry.StrategySwitchesTotal.WithLabelValues(string(mapped)).Inc()
	return sw, true
}

// Switches returns every recorded switch event, oldest first.
func (a *Adaptive) Switches() []apis.StrategySwitch {
	out := make([]apis.StrategySwitch, len(a.switches))
	copy(out, a.switches)
	return out
}
