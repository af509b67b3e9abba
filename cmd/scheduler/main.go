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
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/klog/v2"
)

func newLogger(debug bool) (logr.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	zapLog, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("building zap logger: %w", err)
	}
	log := zapr.NewLogger(zapLog)
	klog.SetLogger(log)
	return log, func() { _ = zapLog.Sync() }, nil
}

func main() {
	var debug bool
	var configFile string

	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Adaptive TaskManager scheduler",
		Long:  "A custom scheduler that binds pending stream-processing worker pods to cluster nodes, switching placement policy as observed CPU load changes.",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable development-mode (human-readable) logging")
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file overlaid on environment variables")

	root.AddCommand(newRunCommand(&debug, &configFile))
	root.AddCommand(newStatsCommand(&debug, &configFile))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
