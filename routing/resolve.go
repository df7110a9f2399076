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

import (
	"context"

	"github.com/pkg/errors"
)

// ComputeEffectiveRanges returns the effective ranges denoted by the feed
// range, in key order.
//
// The partition key definition is required for partition key feed ranges and
// ignored otherwise. Partition key range identifiers are dereferenced through
// the provider: if the identifier is unknown even after a forced refresh of
// the boundary map, a *RangeGoneError is returned.
func (f FeedRange) ComputeEffectiveRanges(ctx context.Context, provider RoutingMapProvider, containerID string,
	definition *PartitionKeyDefinition) ([]EffectiveRange, error) {
	switch f.kind {
	case KindEffectiveRange:
		return []EffectiveRange{f.effectiveRange}, nil

	case KindPartitionKey:
		if definition == nil {
			return nil, errors.Wrapf(ErrInvalidLayout, "cannot resolve partition key %v", f.partitionKey)
		}
		epk, err := definition.EffectivePartitionKeyString(f.partitionKey)
		if err != nil {
			return nil, err
		}
		return []EffectiveRange{PointRange(epk)}, nil

	case KindPartitionKeyRangeID:
		pkRange, err := resolvePartitionKeyRange(ctx, provider, containerID, f.partitionKeyRangeID)
		if err != nil {
			return nil, err
		}
		return []EffectiveRange{pkRange.ToRange()}, nil

	default:
		return nil, f.invalidKindError()
	}
}

// ComputePartitionKeyRangeIDs returns the identifiers of the partition key
// ranges the feed range currently maps to, in key order.
//
// A partition key range identifier is returned as is, without consulting the
// provider: a stale identifier is only detected when it is used.
func (f FeedRange) ComputePartitionKeyRangeIDs(ctx context.Context, provider RoutingMapProvider, containerID string,
	definition *PartitionKeyDefinition) ([]string, error) {
	switch f.kind {
	case KindPartitionKeyRangeID:
		return []string{f.partitionKeyRangeID}, nil

	case KindEffectiveRange, KindPartitionKey:
		effectiveRanges, err := f.ComputeEffectiveRanges(ctx, provider, containerID, definition)
		if err != nil {
			return nil, err
		}

		var ids []string
		for _, effectiveRange := range effectiveRanges {
			pkRanges, err := provider.TryGetOverlappingRanges(ctx, containerID, effectiveRange, false)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to get the ranges overlapping %v", effectiveRange)
			}
			for _, pkRange := range pkRanges {
				ids = append(ids, pkRange.ID)
			}
		}
		return ids, nil

	default:
		return nil, f.invalidKindError()
	}
}

// resolvePartitionKeyRange looks up a partition key range by identifier,
// tolerating a stale boundary map: the first lookup uses the provider's
// cached view, a miss is followed by exactly one lookup with a forced
// refresh. A second miss means the range was split or merged away.
func resolvePartitionKeyRange(ctx context.Context, provider RoutingMapProvider, containerID string,
	id string) (PartitionKeyRange, error) {
	for _, forceRefresh := range []bool{false, true} {
		pkRange, found, err := provider.TryGetPartitionKeyRangeByID(ctx, containerID, id, forceRefresh)
		if err != nil {
			return PartitionKeyRange{}, errors.Wrapf(err, "failed to get partition key range %q", id)
		}
		if found {
			return pkRange, nil
		}

		// A cancelled lookup is never reported as a gone range
		if err := ctx.Err(); err != nil {
			return PartitionKeyRange{}, err
		}
	}

	return PartitionKeyRange{}, &RangeGoneError{
		ContainerID:         containerID,
		PartitionKeyRangeID: id,
	}
}
