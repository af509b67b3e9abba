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

// Package scheduling drives the outer control loop of spec.md §4.5:
// discover pending pods, ask the active placement policy for a node,
// bind, and record. I/O (pod/node listing, metrics refresh, binding)
// stays in this package; decision logic stays pure in pkg/scheduling/policy.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"k8s.io/utils/clock"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/orchestrator"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/decision"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/policy"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/selector"
	"github.com/flinkadaptive/scheduler/pkg/telemetry"
)

// MetricsSource is the slice of telemetry.Source the loop depends on,
// narrowed for testability.
type MetricsSource interface {
	Snapshot(ctx context.Context, nodes []apis.Node) apis.MetricsSnapshot
}

// Config holds the loop's tunables, sourced from pkg/options.
type Config struct {
	SchedulerName          string
	ComponentLabelSelector string
	PollInterval           time.Duration
	ErrorBackoff           time.Duration
	// FixedPolicy, when non-empty, disables the adaptive selector and
	// pins the loop to this policy permanently (spec.md §4.4 fixed-policy mode).
	FixedPolicy apis.PolicyTag
}

const (
	defaultPollInterval = 2 * time.Second
	defaultErrorBackoff = 5 * time.Second
)

// Loop is the scheduler's outer control loop.
type Loop struct {
	client   orchestrator.Client
	metrics  MetricsSource
	registry *policy.Registry
	adaptive *selector.Adaptive
	log      *decision.Log
	clock    clock.Clock
	cfg      Config
}

// NewLoop constructs a Loop. adaptive is nil in fixed-policy mode.
func NewLoop(client orchestrator.Client, metrics MetricsSource, registry *policy.Registry, adaptive *selector.Adaptive, log *decision.Log, clk clock.Clock, cfg Config) *Loop {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}
	return &Loop{
		client:   client,
		metrics:  metrics,
		registry: registry,
		adaptive: adaptive,
		log:      log,
		clock:    clk,
		cfg:      cfg,
	}
}

// ActivePolicy returns the policy tag currently in effect.
func (l *Loop) ActivePolicy() apis.PolicyTag {
	if l.adaptive != nil {
		return l.adaptive.Active()
	}
	return l.cfg.FixedPolicy
}

// RunOnce executes a single scheduling iteration: spec.md §4.5 steps 1-3.
func (l *Loop) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	log := logr.FromContextOrDiscard(ctx).WithValues("run", runID)

	pending, err := l.client.ListPendingPods(ctx, l.cfg.SchedulerName, l.cfg.ComponentLabelSelector)
	if err != nil {
		return fmt.Errorf("listing pending pods: %w", err)
	}
	if len(pending) == 0 {
		return l.evaluateSelector(ctx, log, nil)
	}

	nodes, err := l.client.ListNodes(ctx)
	if err != nil {
		return fmt.Errorf("listing nodes: %w", err)
	}
	snap := l.metrics.Snapshot(ctx, nodes)
	candidates := orchestrator.FilterCandidates(nodes)

	var errs error
	for _, pod := range pending {
		if len(candidates) == 0 {
			log.Info("[SCHEDULING] no nodes", "event", "scheduling", "pod", pod.Namespace+"/"+pod.Name)
			continue
		}
		if err := l.schedulePod(ctx, log, pod, candidates, snap); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if evalErr := l.evaluateSelector(ctx, log, snap); evalErr != nil {
		errs = multierr.Append(errs, evalErr)
	}
	return errs
}

func (l *Loop) schedulePod(ctx context.Context, log logr.Logger, pod apis.Pod, candidates []apis.Node, snap apis.MetricsSnapshot) error {
	activeTag := l.ActivePolicy()
	pol, ok := l.registry.Get(activeTag)
	if !ok {
		return fmt.Errorf("no policy registered for tag %q", activeTag)
	}

	chosen, err := pol.Select(pod, candidates, snap)
	if err != nil {
		return fmt.Errorf("selecting node for pod %s/%s: %w", pod.Namespace, pod.Name, err)
	}

	if err := l.client.Bind(ctx, pod, chosen); err != nil {
		var bindErr *orchestrator.BindError
		if errors.As(err, &bindErr) && bindErr.Kind == orchestrator.BindErrorConflict {
			log.V(1).Info("bind conflict, pod claimed elsewhere", "event", "scheduling", "pod", pod.Namespace+"/"+pod.Name, "node", chosen)
			return nil
		}
		kind := orchestrator.BindErrorTransient
		if errors.As(err, &bindErr) {
			kind = bindErr.Kind
		}
		telemetry.BindErrorsTotal.WithLabelValues(string(kind)).Inc()
		log.Error(err, "[ERROR] bind failed", "event", "scheduling_error", "pod", pod.Namespace+"/"+pod.Name, "node", chosen)
		return err
	}

	l.log.Record(apis.PlacementDecision{
		PodName:            pod.Name,
		PodNamespace:       pod.Namespace,
		Node:               chosen,
		Policy:             activeTag,
		ObservedCPUPercent: snap.NodeCPUPercent(chosen),
		Timestamp:          l.clock.Now(),
	})
	log.Info("[SCHEDULING] bound pod", "event", "scheduling", "pod", pod.Namespace+"/"+pod.Name, "node", chosen, "policy", activeTag)
	return nil
}

func (l *Loop) evaluateSelector(ctx context.Context, log logr.Logger, snap apis.MetricsSnapshot) error {
	if l.adaptive == nil {
		return nil
	}
	if snap == nil {
		nodes, err := l.client.ListNodes(ctx)
		if err != nil {
			return fmt.Errorf("listing nodes for selector evaluation: %w", err)
		}
		snap = l.metrics.Snapshot(ctx, nodes)
	}
	if sw, switched := l.adaptive.Evaluate(snap); switched {
		log.Info("[STRATEGY SWITCH] policy switch", "event", "strategy_switch", "from", sw.From, "to", sw.To, "clusterCPUPercent", sw.ClusterCP)
	}
	return nil
}

// Run drives RunOnce forever until ctx is cancelled, sleeping the poll
// interval between iterations and the error backoff after a failed one.
func (l *Loop) Run(ctx context.Context) {
	log := logr.FromContextOrDiscard(ctx)
	for {
		if ctx.Err() != nil {
			return
		}
		sleep := l.cfg.PollInterval
		if err := l.RunOnce(ctx); err != nil {
			log.Error(err, "[ERROR] scheduling iteration failed", "event", "scheduling_error")
			sleep = l.cfg.ErrorBackoff
		}

		timer := l.clock.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}
	}
}
