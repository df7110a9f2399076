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

package boundaries

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/rangeroute/cmd/flag"
	"github.com/streamnative/rangeroute/routing"
	"github.com/streamnative/rangeroute/routingmap"
)

type generateOptions struct {
	ranges      int
	containerID string
	output      string
}

var generateConf = generateOptions{}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a boundary file",
	Long:  `Generate a boundary file splitting the key space of a container in evenly sized ranges.`,
	Args:  cobra.NoArgs,
	RunE:  execGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateConf.ranges, "ranges", "n", 1, "Number of partition key ranges")
	flag.Container(generateCmd, &generateConf.containerID)
	generateCmd.Flags().StringVarP(&generateConf.output, "output", "o", "", "Output file. Stdout when empty")
}

func execGenerate(cmd *cobra.Command, _ []string) error {
	ranges, err := routingmap.GenerateRanges(generateConf.ranges)
	if err != nil {
		return err
	}

	bf := &routingmap.BoundaryFile{
		Containers: map[string][]routing.PartitionKeyRange{
			generateConf.containerID: ranges,
		},
	}
	if generateConf.output != "" {
		return routingmap.WriteBoundaryFile(generateConf.output, bf)
	}

	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(bf); err != nil {
		return err
	}
	return encoder.Close()
}
