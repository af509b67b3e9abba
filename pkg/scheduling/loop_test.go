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

package scheduling_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/orchestrator"
	"github.com/flinkadaptive/scheduler/pkg/scheduling"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/decision"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/policy"
)

func fixedTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

type boundCall struct {
	pod  string
	node string
}

type fakeClient struct {
	nodes   []apis.Node
	pending []apis.Pod
	binds   []boundCall
	bindErr error
}

func (f *fakeClient) ListNodes(ctx context.Context) ([]apis.Node, error) { return f.nodes, nil }

func (f *fakeClient) ListPendingPods(ctx context.Context, schedulerName, componentLabelSelector string) ([]apis.Pod, error) {
	return f.pending, nil
}

func (f *fakeClient) Bind(ctx context.Context, pod apis.Pod, node string) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.binds = append(f.binds, boundCall{pod: pod.Name, node: node})
	return nil
}

var _ orchestrator.Client = (*fakeClient)(nil)

type fakeMetrics struct {
	percents map[string]float64
}

func (f *fakeMetrics) Snapshot(ctx context.Context, nodes []apis.Node) apis.MetricsSnapshot {
	return fakeSnapshot{percents: f.percents}
}

type fakeSnapshot struct {
	percents map[string]float64
}

func (f fakeSnapshot) NodeCPUPercent(node string) float64 { return f.percents[node] }
func (f fakeSnapshot) ClusterCPUPercent() float64 {
	var sum float64
	for _, v := range f.percents {
		sum += v
	}
	if len(f.percents) == 0 {
		return 50
	}
	return sum / float64(len(f.percents))
}
func (f fakeSnapshot) MetricsAvailable() bool { return true }

func newTestRegistry() *policy.Registry {
	return policy.NewRegistry(policy.NewBandit(nil))
}

var _ = Describe("RunOnce", func() {
	var (
		client *fakeClient
		log    *decision.Log
	)

	BeforeEach(func() {
		log = decision.NewLog()
	})

	newLoop := func(metrics *fakeMetrics, cfg scheduling.Config) *scheduling.Loop {
		cfg.FixedPolicy = apis.PolicyFirstAvailable
		return scheduling.NewLoop(client, metrics, newTestRegistry(), nil, log, clocktesting.NewFakeClock(fixedTime()), cfg)
	}

	Context("with ready nodes and a fixed policy", func() {
		BeforeEach(func() {
			client = &fakeClient{
				nodes:   []apis.Node{{Name: "n1", Ready: true}},
				pending: []apis.Pod{{Name: "p1", Namespace: "ns"}, {Name: "p2", Namespace: "ns"}},
			}
		})

		It("binds every pending pod and records a decision for each", func() {
			l := newLoop(&fakeMetrics{percents: map[string]float64{"n1": 10}}, scheduling.Config{})
			Expect(l.RunOnce(context.Background())).To(Succeed())
			Expect(client.binds).To(HaveLen(2))
			Expect(log.Snapshot()).To(HaveLen(2))
		})
	})

	Context("when no node is a ready candidate", func() {
		BeforeEach(func() {
			client = &fakeClient{
				nodes:   []apis.Node{{Name: "n1", Ready: false}},
				pending: []apis.Pod{{Name: "p1", Namespace: "ns"}},
			}
		})

		It("skips the pod without binding or erroring", func() {
			l := newLoop(&fakeMetrics{}, scheduling.Config{})
			Expect(l.RunOnce(context.Background())).To(Succeed())
			Expect(client.binds).To(BeEmpty())
		})
	})

	Context("when binding fails with a conflict", func() {
		BeforeEach(func() {
			client = &fakeClient{
				nodes:   []apis.Node{{Name: "n1", Ready: true}},
				pending: []apis.Pod{{Name: "p1", Namespace: "ns"}},
				bindErr: &orchestrator.BindError{Kind: orchestrator.BindErrorConflict, Pod: "ns/p1", Node: "n1", Err: errors.New("already bound")},
			}
		})

		It("drops the pod silently and records no decision", func() {
			l := newLoop(&fakeMetrics{percents: map[string]float64{"n1": 10}}, scheduling.Config{})
			Expect(l.RunOnce(context.Background())).To(Succeed())
			Expect(log.Snapshot()).To(BeEmpty())
		})
	})

	Context("when binding fails transiently", func() {
		BeforeEach(func() {
			client = &fakeClient{
				nodes:   []apis.Node{{Name: "n1", Ready: true}},
				pending: []apis.Pod{{Name: "p1", Namespace: "ns"}},
				bindErr: &orchestrator.BindError{Kind: orchestrator.BindErrorTransient, Pod: "ns/p1", Node: "n1", Err: errors.New("etcd timeout")},
			}
		})

		It("surfaces the error so the loop backs off", func() {
			l := newLoop(&fakeMetrics{percents: map[string]float64{"n1": 10}}, scheduling.Config{})
			Expect(l.RunOnce(context.Background())).To(HaveOccurred())
		})
	})
})
