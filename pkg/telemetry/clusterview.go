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
	"k8s.io/client-go/kubernetes"
)

// ClusterView is the narrow slice of orchestrator state the estimator
// needs: how many pods currently sit on a node, used to approximate CPU
// usage when the real metrics subsystem is unavailable (spec.md §4.2).
type ClusterView interface {
	PodCountByNode(ctx context.Context) (map[string]int, error)
}

type kubeClusterView struct {
	clientset kubernetes.Interface
}

// NewKubeClusterView builds a ClusterView backed by a real client-go
// clientset.
func NewKubeClusterView(clientset kubernetes.Interface) ClusterView {
	return &kubeClusterView{clientset: clientset}
}

func (v *kubeClusterView) PodCountByNode(ctx context.Context) (map[string]int, error) {
	list, err := v.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing pods for estimator: %w", err)
	}
	counts := make(map[string]int)
	for _, pod := range list.Items {
		if pod.Spec.NodeName == "" {
			continue
		}
		counts[pod.Spec.NodeName]++
	}
	return counts, nil
}
