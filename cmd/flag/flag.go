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

package flag

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamnative/rangeroute/common"
	"github.com/streamnative/rangeroute/routing"
	"github.com/streamnative/rangeroute/routingmap"
)

func PublicAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "public-addr", "p", fmt.Sprintf("0.0.0.0:%d", common.DefaultPublicPort), "Public service bind address")
}

func MetricsAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "metrics-addr", "m", fmt.Sprintf("0.0.0.0:%d", common.DefaultMetricsPort), "Metrics service bind address")
}

func BoundaryFile(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "boundary-file", "b", "", "Yaml file with the boundary maps of the containers")
}

func DataDir(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVar(conf, "data-dir", routingmap.DefaultPebbleSourceOptions.DataDir, "Directory of the boundary map store")
}

func Container(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "container", "c", common.DefaultContainer, "Container id")
}

// PartitionKeyDefinition registers the flags describing the key space
// layout of a container.
func PartitionKeyDefinition(cmd *cobra.Command, conf *routing.PartitionKeyDefinition) {
	cmd.Flags().StringSliceVar(&conf.Paths, "partition-key-paths", []string{}, "Partition key paths")
	cmd.Flags().StringVar((*string)(&conf.Kind), "partition-key-kind", string(routing.PartitionKindHash),
		"Partition key kind [Hash|Range]")
	cmd.Flags().IntVar(&conf.Version, "partition-key-version", routing.PartitionKeyDefinitionVersion2,
		"Partition key hashing version [1|2]")
}
