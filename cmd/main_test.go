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
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/streamnative/rangeroute/common/logging"
)

func TestLogLevel(t *testing.T) {
	for _, test := range []struct {
		name          string
		level         string
		expectedErr   error
		expectedLevel slog.Level
	}{
		{"debug", "debug", nil, slog.LevelDebug},
		{"info", "info", nil, slog.LevelInfo},
		{"warn", "warn", nil, slog.LevelWarn},
		{"error", "error", nil, slog.LevelError},
		{"upper-case", "DEBUG", nil, slog.LevelDebug},
		{"junk", "junk", LogLevelError("junk"), slog.LevelInfo},
	} {
		t.Run(test.name, func(t *testing.T) {
			logging.LogLevel = logging.DefaultLogLevel
			rootCmd.SetArgs([]string{"-l", test.level})
			rootCmd.RunE = func(*cobra.Command, []string) error {
				return nil
			}
			err := rootCmd.Execute()
			assert.ErrorIs(t, err, test.expectedErr)
			assert.Equal(t, test.expectedLevel, logging.LogLevel)
		})
	}
}
