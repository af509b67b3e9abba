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

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/flinkadaptive/scheduler/pkg/scheduling"
)

// newStatsCommand builds the `scheduler stats` subcommand: a small CLI
// client that polls a running instance's /stats endpoint, so an operator
// can inspect the decision log without waiting for shutdown (spec.md
// §4.6's statistics dump, made available on demand).
func newStatsCommand(_ *bool, _ *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the current placement decision statistics from a running instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStats(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "base address of a running scheduler's metrics endpoint")
	return cmd
}

func printStats(addr string) error {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpClient.Get(addr + "/stats")
	if err != nil {
		return fmt.Errorf("fetching stats from %s: %w", addr, err)
	}
	defer resp.Body.Close()

	var report scheduling.StatsReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("decoding stats response: %w", err)
	}

	fmt.Printf("active policy: %s\n", report.ActivePolicy)
	fmt.Printf("total decisions: %d\n", report.TotalDecisions)
	for _, p := range report.ByPolicy {
		fmt.Printf("  %-16s %6d (%.1f%%)\n", p.Policy, p.Count, p.Percent)
	}
	if len(report.BanditArms) > 0 {
		fmt.Println("bandit arms:")
		for _, a := range report.BanditArms {
			avg, _ := a.AverageReward()
			fmt.Printf("  %-16s n=%-4d R=%-8.3f R/n=%.3f\n", a.Node, a.Selections, a.CumulativeReward, avg)
		}
	}
	return nil
}
