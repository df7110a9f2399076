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

package routingmap

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/routing"
)

// Hashed effective keys always start with a byte in [0x00, 0x3F], so the
// generated boundaries are spread over that prefix space.
const hashedPrefixSpace = 0x4000

const MaxGeneratedRanges = hashedPrefixSpace

// GenerateRanges splits the key space in n contiguous ranges of about the
// same share of hashed keys. Range identifiers are "0" to "n-1".
func GenerateRanges(n int) ([]routing.PartitionKeyRange, error) {
	if n < 1 || n > MaxGeneratedRanges {
		return nil, errors.Errorf("invalid number of ranges %d, expected between 1 and %d", n, MaxGeneratedRanges)
	}

	bucketSize := hashedPrefixSpace / n
	ranges := make([]routing.PartitionKeyRange, n)
	lowerBound := routing.MinimumInclusiveEffectiveKey
	for i := 0; i < n; i++ {
		upperBound := routing.MaximumExclusiveEffectiveKey
		if i < n-1 {
			upperBound = fmt.Sprintf("%04X", (i+1)*bucketSize)
		}
		ranges[i] = routing.PartitionKeyRange{
			ID:           strconv.Itoa(i),
			MinInclusive: lowerBound,
			MaxExclusive: upperBound,
		}
		lowerBound = upperBound
	}
	return ranges, nil
}
