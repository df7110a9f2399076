// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/streamnative/rangeroute/cmd/boundaries"
	"github.com/streamnative/rangeroute/cmd/feedrange"
	"github.com/streamnative/rangeroute/cmd/resolve"
	"github.com/streamnative/rangeroute/cmd/serve"
	"github.com/streamnative/rangeroute/common"
	"github.com/streamnative/rangeroute/common/logging"
	"github.com/streamnative/rangeroute/common/process"
)

type LogLevelError string

func (l LogLevelError) Error() string {
	return fmt.Sprintf("unknown log level (%s)", string(l))
}

var (
	logLevelStr string

	rootCmd = &cobra.Command{
		Use:               "rangeroute",
		Short:             "Feed range resolution and routing",
		Long:              `Resolve feed ranges to effective key ranges and partition key ranges, and serve the routing API.`,
		PersistentPreRunE: configureLogLevel,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevelStr, "log-level", "l", logging.DefaultLogLevel.String(), "Set logging level [debug|info|warn|error]")
	rootCmd.PersistentFlags().BoolVarP(&logging.LogJSON, "log-json", "j", false, "Print logs in JSON format")
	rootCmd.PersistentFlags().BoolVar(&process.PprofEnable, "profile", false, "Enable pprof profiler")
	rootCmd.PersistentFlags().StringVar(&process.PprofBindAddress, "profile-bind-address", "127.0.0.1:6060", "Bind address for pprof")

	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(feedrange.Cmd)
	rootCmd.AddCommand(resolve.Cmd)
	rootCmd.AddCommand(boundaries.Cmd)
}

func configureLogLevel(_ *cobra.Command, _ []string) error {
	level, err := logging.ParseLogLevel(logLevelStr)
	if err != nil {
		return LogLevelError(logLevelStr)
	}
	logging.LogLevel = level
	logging.ConfigureLogger()
	return nil
}

func main() {
	common.DoWithLabels(context.Background(), map[string]string{
		"rangeroute": "main",
	}, func() {
		if _, err := maxprocs.Set(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := rootCmd.Execute(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})
}
