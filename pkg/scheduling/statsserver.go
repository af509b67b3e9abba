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

package scheduling

import (
	"encoding/json"
	"net/http"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/decision"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/policy"
)

// StatsReport is the JSON shape served at /stats and printed by the
// `scheduler stats` CLI subcommand: the shutdown-time statistics dump of
// spec.md §4.6, made available without waiting for shutdown.
type StatsReport struct {
	ActivePolicy   apis.PolicyTag         `json:"activePolicy"`
	TotalDecisions int                    `json:"totalDecisions"`
	ByPolicy       []decision.PolicyCount `json:"byPolicy"`
	BanditArms     []apis.BanditArmStats  `json:"banditArms,omitempty"`
}

// BuildStatsReport assembles the current report. bandit may be nil if
// the bandit policy has never been active.
func BuildStatsReport(active apis.PolicyTag, log *decision.Log, bandit *policy.Bandit) StatsReport {
	entries := log.Snapshot()
	report := StatsReport{
		ActivePolicy:   active,
		TotalDecisions: len(entries),
		ByPolicy:       decision.Stats(entries),
	}
	if bandit != nil {
		report.BanditArms = bandit.Stats()
	}
	return report
}

// StatsHandler serves BuildStatsReport as JSON, for the `scheduler
// stats` subcommand to poll against a running instance.
func StatsHandler(l *Loop, log *decision.Log, bandit *policy.Bandit) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := BuildStatsReport(l.ActivePolicy(), log, bandit)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
