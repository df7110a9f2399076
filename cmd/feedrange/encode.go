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
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/streamnative/rangeroute/routing"
)

var ErrExpectedOneFeedRange = errors.New("exactly one of --range-id, --partition-key and --min/--max must be set")

type encodeOptions struct {
	rangeID      string
	partitionKey string
	minKey       string
	maxKey       string
	minExclusive bool
	maxInclusive bool
	compact      bool
}

var encodeConf = encodeOptions{}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a feed range",
	Long:  `Print the textual form, or the compact token, of a feed range.`,
	Args:  cobra.NoArgs,
	RunE:  execEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeConf.rangeID, "range-id", "", "Partition key range id")
	encodeCmd.Flags().StringVar(&encodeConf.partitionKey, "partition-key", "", `Partition key, as a JSON array. eg: '["tenant-1", 5]'`)
	encodeCmd.Flags().StringVar(&encodeConf.minKey, "min", "", "Effective range lower bound")
	encodeCmd.Flags().StringVar(&encodeConf.maxKey, "max", "", "Effective range upper bound")
	encodeCmd.Flags().BoolVar(&encodeConf.minExclusive, "min-exclusive", false, "Exclude the lower bound")
	encodeCmd.Flags().BoolVar(&encodeConf.maxInclusive, "max-inclusive", false, "Include the upper bound")
	encodeCmd.Flags().BoolVar(&encodeConf.compact, "compact", false, "Print the compact token")
}

func (o *encodeOptions) feedRange(cmd *cobra.Command) (routing.FeedRange, error) {
	isRangeID := cmd.Flags().Changed("range-id")
	isPartitionKey := cmd.Flags().Changed("partition-key")
	isEffectiveRange := cmd.Flags().Changed("min") || cmd.Flags().Changed("max")

	count := 0
	for _, set := range []bool{isRangeID, isPartitionKey, isEffectiveRange} {
		if set {
			count++
		}
	}
	if count != 1 {
		return routing.FeedRange{}, ErrExpectedOneFeedRange
	}

	switch {
	case isRangeID:
		return routing.FromPartitionKeyRangeID(o.rangeID), nil
	case isPartitionKey:
		pk, err := routing.ParsePartitionKey(o.partitionKey)
		if err != nil {
			return routing.FeedRange{}, err
		}
		return routing.FromPartitionKey(pk), nil
	default:
		maxKey := o.maxKey
		if !cmd.Flags().Changed("max") {
			maxKey = routing.MaximumExclusiveEffectiveKey
		}
		r, err := routing.NewEffectiveRange(o.minKey, maxKey, !o.minExclusive, o.maxInclusive)
		if err != nil {
			return routing.FeedRange{}, err
		}
		return routing.FromEffectiveRange(r), nil
	}
}

func execEncode(cmd *cobra.Command, _ []string) error {
	feedRange, err := encodeConf.feedRange(cmd)
	if err != nil {
		return err
	}

	var text string
	if encodeConf.compact {
		text, err = routing.SerializeCompact(feedRange)
	} else {
		text, err = routing.Serialize(feedRange)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
