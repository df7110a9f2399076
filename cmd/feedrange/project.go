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

type projectOutput struct {
	*routing.RequestDescriptor
	Headers map[string]string `json:"headers"`
}

var activityID string

var projectCmd = &cobra.Command{
	Use:   "project <feed-range>",
	Short: "Project a feed range on a request",
	Long:  `Print the routing fields and headers of a request scoped to the feed range.`,
	Args:  cobra.ExactArgs(1),
	RunE:  execProject,
}

func init() {
	projectCmd.Flags().StringVar(&activityID, "activity-id", "", "Activity id of the request. A random one is used when empty")
}

func execProject(cmd *cobra.Command, args []string) error {
	feedRange, err := Parse(args[0])
	if err != nil {
		return err
	}

	descriptor := routing.NewRequestDescriptor()
	if activityID != "" {
		descriptor.ActivityID = activityID
	}
	feedRange.Accept(routing.NewRequestPopulator(descriptor))

	return writeJSON(cmd.OutOrStdout(), projectOutput{
		RequestDescriptor: descriptor,
		Headers:           descriptor.Headers(),
	})
}
