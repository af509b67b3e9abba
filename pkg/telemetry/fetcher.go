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
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// NodeUsage is one node's raw, vendor-formatted CPU and memory usage as
// reported by the metrics subsystem, before conversion to a percentage.
// Carrying the raw strings (rather than a pre-parsed numeric type) keeps
// the exhaustive suffix parsing in ParseCPUMillis/ParseMemoryBytes the
// single place that interprets vendor formatting, per spec.md §9.
type NodeUsage struct {
	CPU    string
	Memory string
}

// RawMetricsFetcher is the seam between the metrics subsystem's wire
// format and MetricsSource's caching/estimation logic. The production
// implementation talks to the metrics.k8s.io aggregated API; tests
// supply raw suffix strings directly without standing up a fake API
// server.
type RawMetricsFetcher interface {
	FetchNodeUsage(ctx context.Context) (map[string]NodeUsage, error)
}

// k8sMetricsFetcher fetches node usage from the real metrics.k8s.io
// aggregated API via the typed k8s.io/metrics clientset, the same client
// family other in-cluster consumers (e.g. the Kubernetes HPA controller)
// use. apimachinery's resource.Quantity preserves the exact string it
// was deserialized from until mutated, so Usage.Cpu().String() yields
// the vendor's original suffix form (n/m/unitless), which is what
// ParseCPUMillis is built to parse.
type k8sMetricsFetcher struct {
	client metricsclient.Interface
}

// NewK8sMetricsFetcher constructs a RawMetricsFetcher backed by a real
// metrics.k8s.io client.
func NewK8sMetricsFetcher(client metricsclient.Interface) RawMetricsFetcher {
	return &k8sMetricsFetcher{client: client}
}

func (f *k8sMetricsFetcher) FetchNodeUsage(ctx context.Context) (map[string]NodeUsage, error) {
	list, err := f.client.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing node metrics: %w", err)
	}
	usage := make(map[string]NodeUsage, len(list.Items))
	for _, item := range list.Items {
		nu := NodeUsage{}
		if cpu := item.Usage.Cpu(); cpu != nil {
			nu.CPU = cpu.String()
		}
		if mem := item.Usage.Memory(); mem != nil {
			nu.Memory = mem.String()
		}
		usage[item.Name] = nu
	}
	return usage, nil
}
