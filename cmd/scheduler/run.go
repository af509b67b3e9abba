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
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/flinkadaptive/scheduler/pkg/apis"
	"github.com/flinkadaptive/scheduler/pkg/options"
	"github.com/flinkadaptive/scheduler/pkg/orchestrator"
	"github.com/flinkadaptive/scheduler/pkg/scheduling"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/decision"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/policy"
	"github.com/flinkadaptive/scheduler/pkg/scheduling/selector"
	"github.com/flinkadaptive/scheduler/pkg/telemetry"
)

func newRunCommand(debug *bool, configFile *string) *cobra.Command {
	var kubeconfig string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduling control loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(cmd.Context(), *debug, *configFile, kubeconfig, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "path to a kubeconfig file; defaults to in-cluster config")
	cmd.Flags().StringVar(&metricsAddr, "metrics-bind-address", ":8080", "address the /metrics, /healthz, and /stats endpoints are served on")
	return cmd
}

func loadRestConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	}
	cfg, err := rest.InClusterConfig()
	if err == nil {
		return cfg, nil
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{},
	).ClientConfig()
}

func runScheduler(ctx context.Context, debug bool, configFile, kubeconfigPath, metricsAddr string) error {
	log, flush, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer flush()
	ctx = logr.NewContext(ctx, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := options.FromEnv(options.Default())
	if err != nil {
		return fmt.Errorf("loading options from environment: %w", err)
	}
	if configFile != "" {
		opts, err = options.FromFile(opts, configFile)
		if err != nil {
			return fmt.Errorf("loading options from config file: %w", err)
		}
	}
	ctx = options.ToContext(ctx, opts)

	restCfg, err := loadRestConfig(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("loading cluster credentials: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("building clientset: %w", err)
	}
	metricsCS, err := metricsclient.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("building metrics clientset: %w", err)
	}

	orchClient := orchestrator.NewKubeClient(clientset, opts.BindQPS, opts.BindBurst)
	source := telemetry.NewSource(
		telemetry.NewK8sMetricsFetcher(metricsCS),
		telemetry.NewKubeClusterView(clientset),
		opts.MetricsCacheTTL,
	)

	bandit := policy.NewBandit(clock.RealClock{})
	registry := policy.NewRegistry(bandit)
	decisionLog := decision.NewLog()

	var adaptive *selector.Adaptive
	fixed := opts.FixedStrategy
	if fixed == "" {
		lo, hi := opts.Thresholds()
		adaptive = selector.NewAdaptive(clock.RealClock{}, lo, hi, opts.StrategyCooldown, apis.PolicyFirstAvailable)
	}

	loop := scheduling.NewLoop(orchClient, source, registry, adaptive, decisionLog, clock.RealClock{}, scheduling.Config{
		SchedulerName:          opts.SchedulerName,
		ComponentLabelSelector: opts.ComponentLabelSelector,
		PollInterval:           opts.PollInterval,
		FixedPolicy:            fixed,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/stats", scheduling.StatsHandler(loop, decisionLog, bandit))
	httpServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server exited unexpectedly")
		}
	}()

	log.Info("starting scheduling loop", "schedulerName", opts.SchedulerName, "fixedPolicy", fixed)
	loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	report := scheduling.BuildStatsReport(loop.ActivePolicy(), decisionLog, bandit)
	log.Info("shutdown statistics", "totalDecisions", report.TotalDecisions, "byPolicy", report.ByPolicy)
	klog.Flush()
	return nil
}
