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

package feedrange

import (
	"github.com/spf13/cobra"

	"github.com/streamnative/rangeroute/routing"
)

type decodeOutput struct {
	Kind      string            `json:"kind"`
	FeedRange routing.FeedRange `json:"feedRange"`
	Compact   string            `json:"compact"`
	Display   string            `json:"display"`
}

var decodeCmd = &cobra.Command{
	Use:   "decode <feed-range>",
	Short: "Decode a feed range",
	Long:  `Decode a feed range, given in its textual form or as a compact token, and print both forms.`,
	Args:  cobra.ExactArgs(1),
	RunE:  execDecode,
}

func execDecode(cmd *cobra.Command, args []string) error {
	feedRange, err := Parse(args[0])
	if err != nil {
		return err
	}

	compact, err := routing.SerializeCompact(feedRange)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), decodeOutput{
		Kind:      feedRange.Kind().String(),
		FeedRange: feedRange,
		Compact:   compact,
		Display:   feedRange.String(),
	})
}
