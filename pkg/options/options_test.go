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

package options

import (
	"context"
	"testing"
	"time"

	"github.com/flinkadaptive/scheduler/pkg/apis"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	d := Default()
	if d.CPULowThreshold != 40 || d.CPUHighThreshold != 80 {
		t.Fatalf("default thresholds = (%v,%v), want (40,80)", d.CPULowThreshold, d.CPUHighThreshold)
	}
	if d.StrategyCooldown != 30*time.Second {
		t.Fatalf("default cooldown = %v, want 30s", d.StrategyCooldown)
	}
	if d.PollInterval != 2*time.Second {
		t.Fatalf("default poll interval = %v, want 2s", d.PollInterval)
	}
	if d.MetricsCacheTTL != 5*time.Second {
		t.Fatalf("default metrics cache TTL = %v, want 5s", d.MetricsCacheTTL)
	}
	if d.FixedStrategy != "" {
		t.Fatalf("default fixed strategy should be unset, got %q", d.FixedStrategy)
	}
}

func TestFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CPU_LOW_THRESHOLD", "35")
	t.Setenv("CPU_HIGH_THRESHOLD", "65")
	t.Setenv("STRATEGY_COOLDOWN", "10")
	t.Setenv("FIXED_STRATEGY", "BANDIT")
	t.Setenv("POLL_INTERVAL", "1")
	t.Setenv("METRICS_CACHE_TTL", "3")

	o, err := FromEnv(Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.CPULowThreshold != 35 || o.CPUHighThreshold != 65 {
		t.Fatalf("thresholds = (%v,%v), want (35,65)", o.CPULowThreshold, o.CPUHighThreshold)
	}
	if o.StrategyCooldown != 10*time.Second {
		t.Fatalf("cooldown = %v, want 10s", o.StrategyCooldown)
	}
	if o.FixedStrategy != apis.PolicyBandit {
		t.Fatalf("fixed strategy = %q, want %q", o.FixedStrategy, apis.PolicyBandit)
	}
	if o.PollInterval != time.Second {
		t.Fatalf("poll interval = %v, want 1s", o.PollInterval)
	}
	if o.MetricsCacheTTL != 3*time.Second {
		t.Fatalf("metrics cache TTL = %v, want 3s", o.MetricsCacheTTL)
	}
}

func TestThresholdProfileSetsDefaultsButExplicitOverridesWin(t *testing.T) {
	t.Setenv("THRESHOLD_PROFILE", "aggressive")

	o, err := FromEnv(Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo, hi := o.Thresholds(); lo != 30 || hi != 60 {
		t.Fatalf("thresholds = (%v,%v), want (30,60) from aggressive profile", lo, hi)
	}

	t.Setenv("CPU_LOW_THRESHOLD", "20")
	o, err = FromEnv(Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo, _ := o.Thresholds(); lo != 20 {
		t.Fatalf("explicit CPU_LOW_THRESHOLD did not override profile default, got %v", lo)
	}
}

func TestResolveFixedStrategyAcceptsLegacyNamesAndTags(t *testing.T) {
	cases := map[string]apis.PolicyTag{
		"FCFS":         apis.PolicyFirstAvailable,
		"BALANCED":     apis.PolicyRoundRobin,
		"LEAST_LOADED": apis.PolicyLeastCPU,
		"PRIORITY":     apis.PolicyPriority,
		"BANDIT":       apis.PolicyBandit,
		"bandit":       apis.PolicyBandit,
	}
	for raw, want := range cases {
		got, err := ResolveFixedStrategy(raw)
		if err != nil {
			t.Fatalf("ResolveFixedStrategy(%q): unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ResolveFixedStrategy(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestResolveFixedStrategyRejectsUnknown(t *testing.T) {
	if _, err := ResolveFixedStrategy("NOT_A_POLICY"); err == nil {
		t.Fatalf("expected an error for an unknown strategy name")
	}
}

func TestContextRoundTrip(t *testing.T) {
	o := Default()
	o.StrategyCooldown = 99 * time.Second
	ctx := ToContext(context.Background(), o)
	got := FromContext(ctx)
	if got.StrategyCooldown != 99*time.Second {
		t.Fatalf("round-tripped cooldown = %v, want 99s", got.StrategyCooldown)
	}
}

func TestFromContextDefaultsWhenUnset(t *testing.T) {
	got := FromContext(context.Background())
	if got != Default() {
		t.Fatalf("expected FromContext with no injected value to return Default()")
	}
}
