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

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Exported scheduler metrics, registered against the default registry so
// cmd/scheduler only needs to wire up promhttp.Handler() once. Naming
// follows the <subsystem>_<noun>_<unit> convention the rest of the
// Kubernetes ecosystem uses for its own controllers.
var (
	ClusterCPUPercentGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flink_scheduler",
		Subsystem: "cluster",
		Name:      "cpu_percent",
		Help:      "Mean observed CPU utilization percent across all nodes in the last snapshot.",
	})

	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flink_scheduler",
		Subsystem: "placement",
		Name:      "decisions_total",
		Help:      "Placement decisions made, partitioned by policy and destination node.",
	}, []string{"policy", "node"})

	BindErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flink_scheduler",
		Subsystem: "placement",
		Name:      "bind_errors_total",
		Help:      "Bind calls that failed, partitioned by error kind.",
	}, []string{"kind"})

	StrategySwitchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flink_scheduler",
		Subsystem: "selector",
		Name:      "strategy_switches_total",
		Help:      "Adaptive policy switches, partitioned by destination policy.",
	}, []string{"to"})

	BanditArmAverageReward = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flink_scheduler",
		Subsystem: "bandit",
		Name:      "arm_average_reward",
		Help:      "UCB1 bandit arm average observed reward, by node.",
	}, []string{"node"})

	BanditArmSelections = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flink_scheduler",
		Subsystem: "bandit",
		Name:      "arm_selections",
		Help:      "UCB1 bandit arm selection count, by node.",
	}, []string{"node"})
)

func init() {
	prometheus.MustRegister(
		ClusterCPUPercentGauge,
		DecisionsTotal,
		BindErrorsTotal,
		StrategySwitchesTotal,
		BanditArmAverageReward,
		BanditArmSelections,
	)
}
