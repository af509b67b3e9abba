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

// Package telemetry implements the metrics ingestion and caching layer
// described in spec.md §4.2: fetching node CPU usage from the cluster's
// metrics subsystem, normalizing it to a percentage, and caching it.
package telemetry

import (
	"fmt"
	"strconv"
	"strings"
)

// Quantity suffix handling is centralized here per spec.md §9's design
// note: "Quantity suffix handling is bug-prone. Centralize in a small
// parser with exhaustive suffix coverage and an explicit failure mode."

// ParseCPUMillis converts a vendor-formatted CPU quantity string into
// millicores. Accepted forms, per spec.md §6:
//   - "<N>n" nanocores, divided by 1e6 to get millicores
//   - "<N>m" millicores, used directly
//   - "<N>"  whole cores, multiplied by 1000 to get millicores
func ParseCPUMillis(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty CPU quantity")
	}
	switch {
	case strings.HasSuffix(raw, "n"):
		n, err := strconv.ParseInt(strings.TrimSuffix(raw, "n"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing nanocore quantity %q: %w", raw, err)
		}
		return n / 1_000_000, nil
	case strings.HasSuffix(raw, "m"):
		n, err := strconv.ParseInt(strings.TrimSuffix(raw, "m"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing millicore quantity %q: %w", raw, err)
		}
		return n, nil
	default:
		cores, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing whole-core quantity %q: %w", raw, err)
		}
		return int64(cores * 1000), nil
	}
}

// binaryMemorySuffixes maps the accepted binary-prefixed byte suffixes
// to their multiplier, per spec.md §6.
var binaryMemorySuffixes = map[string]int64{
	"Ki": 1 << 10,
	"Mi": 1 << 20,
	"Gi": 1 << 30,
	"Ti": 1 << 40,
}

// ParseMemoryBytes converts a vendor-formatted memory quantity string
// into bytes. Accepted forms: binary-prefixed (Ki, Mi, Gi, Ti) and plain
// byte counts with no suffix.
func ParseMemoryBytes(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty memory quantity")
	}
	for suffix, multiplier := range binaryMemorySuffixes {
		if strings.HasSuffix(raw, suffix) {
			n, err := strconv.ParseInt(strings.TrimSuffix(raw, suffix), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("parsing memory quantity %q: %w", raw, err)
			}
			return n * multiplier, nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing memory quantity %q: %w", raw, err)
	}
	return n, nil
}

// cpuPercentOfAllocatable converts a node's observed CPU usage to a
// percentage of its allocatable CPU, clamped to [0,100] per spec.md §4.2.
func cpuPercentOfAllocatable(usageMillis, allocatableMillis int64) float64 {
	if allocatableMillis <= 0 {
		return 0
	}
	pct := float64(usageMillis) / float64(allocatableMillis) * 100
	return clampPercent(pct)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
