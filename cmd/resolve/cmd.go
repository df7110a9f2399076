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

package resolve

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/streamnative/rangeroute/cmd/feedrange"
	"github.com/streamnative/rangeroute/cmd/flag"
	"github.com/streamnative/rangeroute/routing"
	"github.com/streamnative/rangeroute/routingmap"
)

type options struct {
	boundaryFile string
	dataDir      string
	containerID  string
	definition   routing.PartitionKeyDefinition
	timeout      time.Duration
}

var conf = options{}

var Cmd = &cobra.Command{
	Use:   "resolve <feed-range>",
	Short: "Resolve a feed range offline",
	Long: `Resolve a feed range, given in its textual form or as a compact token, into
effective ranges and partition key range ids, against a boundary file or
the boundary map store.`,
	Args: cobra.ExactArgs(1),
	RunE: exec,
}

func init() {
	flag.BoundaryFile(Cmd, &conf.boundaryFile)
	flag.DataDir(Cmd, &conf.dataDir)
	flag.Container(Cmd, &conf.containerID)
	flag.PartitionKeyDefinition(Cmd, &conf.definition)
	Cmd.Flags().DurationVar(&conf.timeout, "timeout", 10*time.Second, "Resolution timeout")
}

type output struct {
	ContainerID          string                   `json:"containerId"`
	FeedRange            routing.FeedRange        `json:"feedRange"`
	EffectiveRanges      []routing.EffectiveRange `json:"effectiveRanges"`
	PartitionKeyRangeIDs []string                 `json:"partitionKeyRangeIds"`
}

func exec(cmd *cobra.Command, args []string) (err error) {
	feedRange, err := feedrange.Parse(args[0])
	if err != nil {
		return err
	}

	source, err := newSource(cmd)
	if err != nil {
		return err
	}
	provider, err := routingmap.NewCachingProvider(source, routingmap.WithMaxFetchElapsedTime(conf.timeout))
	if err != nil {
		return multierr.Append(err, source.Close())
	}
	defer func() {
		err = multierr.Combine(err, provider.Close(), source.Close())
	}()

	var definition *routing.PartitionKeyDefinition
	if len(conf.definition.Paths) > 0 {
		definition = &conf.definition
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), conf.timeout)
	defer cancel()

	res := output{
		ContainerID: conf.containerID,
		FeedRange:   feedRange,
	}
	if res.EffectiveRanges, err = feedRange.ComputeEffectiveRanges(ctx, provider, conf.containerID, definition); err != nil {
		return err
	}
	if res.PartitionKeyRangeIDs, err = feedRange.ComputePartitionKeyRangeIDs(ctx, provider, conf.containerID, definition); err != nil {
		return err
	}
	if res.PartitionKeyRangeIDs == nil {
		res.PartitionKeyRangeIDs = []string{}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(res)
}

// The boundary file is loaded once, without watching it for changes.
func newSource(cmd *cobra.Command) (routingmap.Source, error) {
	if conf.boundaryFile == "" {
		if !cmd.Flags().Changed("data-dir") {
			return nil, errors.New("one of --boundary-file and --data-dir must be set")
		}
		return routingmap.NewPebbleSource(&routingmap.PebbleSourceOptions{DataDir: conf.dataDir})
	}

	bf, err := routingmap.ReadBoundaryFile(conf.boundaryFile)
	if err != nil {
		return nil, err
	}
	source := routingmap.NewMemorySource()
	for containerID, ranges := range bf.Containers {
		if err := source.Set(containerID, ranges); err != nil {
			return nil, err
		}
	}
	return source, nil
}
