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
	"math"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/telemetry"
)

// explorationFloor is the minimum number of selections an arm must have
// before UCB1's confidence term is trusted; arms below it are selected
// unconditionally, per spec.md §4.3.1.
const explorationFloor = 2

// armState is one node's running UCB1 statistics.
type armState struct {
	selections       int64
	cumulativeReward float64
	lastSelected     time.Time
}

func (a armState) averageReward() float64 {
	if a.selections == 0 {
		return 0
	}
	return a.cumulativeReward / float64(a.selections)
}

// reward maps an observed CPU percentage to a UCB1 reward in [0,1],
// favoring moderate utilization, penalizing saturation, and giving
// partial credit to under-utilization so idle-node exploration isn't
// suppressed.
func reward(cpuPercent float64) float64 {
	var r float64
	switch {
	case cpuPercent < 30:
		r = 0.5 + (cpuPercent/30)*0.3
	case cpuPercent <= 70:
		r = 1.0
	case cpuPercent <= 90:
		r = 1.0 - ((cpuPercent-70)/20)*0.5
	default:
		r = 0.2
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// Bandit implements a UCB1 multi-armed bandit over candidate nodes, with
// arms keyed by node name. Because bind-time is the only moment this
// scheduler observes an outcome, the arm update happens immediately
// against the snapshot CPU reading for the chosen node rather than a
// later, separately-reported result.
type Bandit struct {
	clock clock.PassiveClock

	mu    sync.Mutex
	arms  map[string]*armState
	total int64
}

// NewBandit constructs a Bandit. A nil clock defaults to the real clock.
func NewBandit(c clock.PassiveClock) *Bandit {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Bandit{clock: c, arms: map[string]*armState{}}
}

func (p *Bandit) Tag() apis.PolicyTag { return apis.PolicyBandit }

func (p *Bandit) Select(_ apis.Pod, candidates []apis.Node, snap apis.MetricsSnapshot) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range candidates {
		if _, ok := p.arms[n.Name]; !ok {
			p.arms[n.Name] = &armState{}
		}
	}

	chosen := p.selectArmLocked(candidates)
	r := reward(snap.NodeCPUPercent(chosen))
	arm := p.arms[chosen]
	arm.selections++
	arm.cumulativeReward += r
	arm.lastSelected = p.clock.Now()
	p.total++

	telemetry.BanditArmAverageReward.WithLabelValues(chosen).Set(arm.averageReward())
	telemetry.BanditArmSelections.WithLabelValues(chosen).Set(float64(arm.selections))

	return chosen, nil
}

func (p *Bandit) selectArmLocked(candidates []apis.Node) string {
	for _, n := range candidates {
		if p.arms[n.Name].selections < explorationFloor {
			return n.Name
		}
	}

	best := candidates[0].Name
	bestScore := math.Inf(-1)
	logN := math.Log(float64(p.total) + 1)
	for _, n := range candidates {
		arm := p.arms[n.Name]
		confidence := math.Sqrt(2) * math.Sqrt(logN/float64(arm.selections))
		score := arm.averageReward() + confidence
		if score > bestScore {
			best, bestScore = n.Name, score
		}
	}
	return best
}

// Stats returns a point-in-time snapshot of every observed arm's
// statistics, for reporting (spec.md §7 shutdown stats dump).
func (p *Bandit) Stats() []apis.BanditArmStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]apis.BanditArmStats, 0, len(p.arms))
	for node, arm := range p.arms {
		out = append(out, apis.BanditArmStats{
			Node:             node,
			Selections:       arm.selections,
			CumulativeReward: arm.cumulativeReward,
			LastSelected:     arm.lastSelected,
		})
	}
	return out
}
