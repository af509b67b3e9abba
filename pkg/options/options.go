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

// Package options carries the scheduler's runtime configuration,
// populated from environment variables with an optional YAML overlay,
// and threaded through context.Context the way the teacher's
// operator/options package does rather than as a global.
package options

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/selector"
)

// Options is the complete set of scheduler tunables, per spec.md §6 and
// SPEC_FULL.md §3.1.
type Options struct {
	SchedulerName          string                     `yaml:"schedulerName"`
	ComponentLabelSelector string                     `yaml:"componentLabelSelector"`
	CPULowThreshold        float64                    `yaml:"cpuLowThreshold"`
	CPUHighThreshold       float64                    `yaml:"cpuHighThreshold"`
	StrategyCooldown       time.Duration              `yaml:"strategyCooldown"`
	FixedStrategy          apis.PolicyTag             `yaml:"fixedStrategy"`
	PollInterval           time.Duration              `yaml:"pollInterval"`
	MetricsCacheTTL        time.Duration              `yaml:"metricsCacheTTL"`
	ThresholdProfile       selector.ThresholdProfile  `yaml:"thresholdProfile"`
	BindQPS                float64                    `yaml:"bindQPS"`
	BindBurst              int                        `yaml:"bindBurst"`
}

// Default returns the spec-mandated defaults.
func Default() Options {
	return Options{
		SchedulerName:          "adaptive-scheduler",
		ComponentLabelSelector: "component=taskmanager",
		CPULowThreshold:        40.0,
		CPUHighThreshold:       80.0,
		StrategyCooldown:       30 * time.Second,
		FixedStrategy:          "",
		PollInterval:           2 * time.Second,
		MetricsCacheTTL:        5 * time.Second,
		ThresholdProfile:       selector.ProfileBalanced,
		BindQPS:                50,
		BindBurst:              100,
	}
}

// fixedStrategyAliases maps the legacy names spec.md §6 documents for
// FIXED_STRATEGY onto this implementation's PolicyTag values.
var fixedStrategyAliases = map[string]apis.PolicyTag{
	"FCFS":         apis.PolicyFirstAvailable,
	"BALANCED":     apis.PolicyRoundRobin,
	"LEAST_LOADED": apis.PolicyLeastCPU,
	"PRIORITY":     apis.PolicyPriority,
	"BANDIT":       apis.PolicyBandit,
}

// ResolveFixedStrategy maps a FIXED_STRATEGY env value (one of the
// legacy names, matched case-insensitively, or a PolicyTag spelled
// directly) to a PolicyTag.
func ResolveFixedStrategy(raw string) (apis.PolicyTag, error) {
	if tag, ok := fixedStrategyAliases[strings.ToUpper(raw)]; ok {
		return tag, nil
	}
	switch apis.PolicyTag(raw) {
	case apis.PolicyFirstAvailable, apis.PolicyRoundRobin, apis.PolicyLeastCPU, apis.PolicyPriority, apis.PolicyBandit:
		return apis.PolicyTag(raw), nil
	}
	return "", fmt.Errorf("unknown FIXED_STRATEGY value %q", raw)
}

// FromEnv overlays environment variables onto base, returning the
// result. Unset variables leave base's value untouched.
func FromEnv(base Options) (Options, error) {
	o := base
	if v, ok := os.LookupEnv("THRESHOLD_PROFILE"); ok && v != "" {
		profile := selector.ThresholdProfile(v)
		switch profile {
		case selector.ProfileBalanced, selector.ProfileAggressive:
			o.ThresholdProfile = profile
			o.CPULowThreshold, o.CPUHighThreshold = selector.Thresholds(profile)
		default:
			return o, fmt.Errorf("unknown THRESHOLD_PROFILE value %q", v)
		}
	}
	if v, ok := os.LookupEnv("CPU_LOW_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, fmt.Errorf("parsing CPU_LOW_THRESHOLD: %w", err)
		}
		o.CPULowThreshold = f
	}
	if v, ok := os.LookupEnv("CPU_HIGH_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, fmt.Errorf("parsing CPU_HIGH_THRESHOLD: %w", err)
		}
		o.CPUHighThreshold = f
	}
	if v, ok := os.LookupEnv("STRATEGY_COOLDOWN"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("parsing STRATEGY_COOLDOWN: %w", err)
		}
		o.StrategyCooldown = time.Duration(secs) * time.Second
	}
	if v, ok := os.LookupEnv("FIXED_STRATEGY"); ok && v != "" {
		tag, err := ResolveFixedStrategy(v)
		if err != nil {
			return o, err
		}
		o.FixedStrategy = tag
	}
	if v, ok := os.LookupEnv("POLL_INTERVAL"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("parsing POLL_INTERVAL: %w", err)
		}
		o.PollInterval = time.Duration(secs) * time.Second
	}
	if v, ok := os.LookupEnv("METRICS_CACHE_TTL"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("parsing METRICS_CACHE_TTL: %w", err)
		}
		o.MetricsCacheTTL = time.Duration(secs) * time.Second
	}
	return o, nil
}

// FromFile overlays a YAML config file's fields onto base. Fields the
// file omits keep base's value, since the file is unmarshaled directly
// into a copy of base rather than a zero-valued struct.
func FromFile(base Options, path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config file %s: %w", path, err)
	}
	o := base
	if err := yaml.Unmarshal(data, &o); err != nil {
		return base, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return o, nil
}

// Thresholds returns the cascade boundaries actually in effect.
// ThresholdProfile only supplies the initial defaults (see Default and
// the THRESHOLD_PROFILE handling in FromEnv); CPULowThreshold and
// CPUHighThreshold are the values consulted at runtime, since spec.md
// §6 documents them as directly configurable independent of the
// profile selection.
func (o Options) Thresholds() (lo, hi float64) {
	return o.CPULowThreshold, o.CPUHighThreshold
}

type contextKey struct{}

// ToContext returns a copy of ctx carrying o.
func ToContext(ctx context.Context, o Options) context.Context {
	return context.WithValue(ctx, contextKey{}, o)
}

// FromContext returns the Options carried by ctx, or Default() if none
// were injected.
func FromContext(ctx context.Context) Options {
	if o, ok := ctx.Value(contextKey{}).(Options); ok {
		return o
	}
	return Default()
}
