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

package routing

import "context"

// PartitionKeyRange is a snapshot of one entry of a container's boundary
// map: the half-open interval [MinInclusive, MaxExclusive) named by ID.
//
// Instances are owned by the boundary map and must be treated as read-only.
type PartitionKeyRange struct {
	ID           string   `json:"id" yaml:"id"`
	MinInclusive string   `json:"minInclusive" yaml:"minInclusive"`
	MaxExclusive string   `json:"maxExclusive" yaml:"maxExclusive"`
	Parents      []string `json:"parents,omitempty" yaml:"parents,omitempty"`
}

// ToRange converts the partition key range to its [min, max) effective range.
func (r PartitionKeyRange) ToRange() EffectiveRange {
	return EffectiveRange{
		min:          r.MinInclusive,
		max:          r.MaxExclusive,
		minInclusive: true,
		maxInclusive: false,
	}
}

// RoutingMapProvider gives access to the boundary map of the containers.
//
// Implementations are shared by many concurrent resolutions and must be safe
// for concurrent use. A forceRefresh request asks the provider to discard its
// cached snapshot of the container and reload it from the source of truth.
type RoutingMapProvider interface {
	// TryGetPartitionKeyRangeByID looks up a partition key range by its
	// identifier. found is false when the identifier is not part of the
	// container's boundary map.
	TryGetPartitionKeyRangeByID(ctx context.Context, containerID string, id string,
		forceRefresh bool) (pkRange PartitionKeyRange, found bool, err error)

	// TryGetOverlappingRanges returns, ordered by key, all the partition key
	// ranges that share at least one key with the given effective range.
	TryGetOverlappingRanges(ctx context.Context, containerID string, effectiveRange EffectiveRange,
		forceRefresh bool) ([]PartitionKeyRange, error)
}
