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
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/routing"
)

var ErrIncompleteRoutingMap = errors.New("routingmap: partition key ranges do not cover the key space")

// Snapshot is an immutable view of the boundary map of one container: a
// complete, non-overlapping list of partition key ranges covering
// ["", "FF").
type Snapshot struct {
	containerID string
	byID        map[string]routing.PartitionKeyRange
	byMin       *treemap.Map
	ordered     []routing.PartitionKeyRange
}

// NewSnapshot validates the ranges and indexes them. Ranges listed as the
// parent of another range have been split and are not part of the snapshot.
func NewSnapshot(containerID string, ranges []routing.PartitionKeyRange) (*Snapshot, error) {
	gone := map[string]bool{}
	for _, r := range ranges {
		for _, parent := range r.Parents {
			gone[parent] = true
		}
	}

	var live []routing.PartitionKeyRange
	for _, r := range ranges {
		if !gone[r.ID] {
			live = append(live, r)
		}
	}

	sort.SliceStable(live, func(i, j int) bool {
		return live[i].MinInclusive < live[j].MinInclusive
	})

	s := &Snapshot{
		containerID: containerID,
		byID:        make(map[string]routing.PartitionKeyRange, len(live)),
		byMin:       treemap.NewWithStringComparator(),
		ordered:     live,
	}

	expectedMin := routing.MinimumInclusiveEffectiveKey
	for _, r := range live {
		if r.MinInclusive != expectedMin {
			return nil, errors.Wrapf(ErrIncompleteRoutingMap, "container %q: expected a range starting at %q, found %q",
				containerID, expectedMin, r.MinInclusive)
		}
		if r.MinInclusive >= r.MaxExclusive {
			return nil, errors.Wrapf(ErrIncompleteRoutingMap, "container %q: range %q is empty", containerID, r.ID)
		}
		if _, duplicated := s.byID[r.ID]; duplicated {
			return nil, errors.Wrapf(ErrIncompleteRoutingMap, "container %q: duplicated range id %q", containerID, r.ID)
		}

		s.byID[r.ID] = r
		s.byMin.Put(r.MinInclusive, r)
		expectedMin = r.MaxExclusive
	}

	if expectedMin != routing.MaximumExclusiveEffectiveKey {
		return nil, errors.Wrapf(ErrIncompleteRoutingMap, "container %q: key space ends at %q", containerID, expectedMin)
	}

	return s, nil
}

func (s *Snapshot) ContainerID() string {
	return s.containerID
}

func (s *Snapshot) RangeByID(id string) (routing.PartitionKeyRange, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Ranges returns the partition key ranges ordered by key.
func (s *Snapshot) Ranges() []routing.PartitionKeyRange {
	ranges := make([]routing.PartitionKeyRange, len(s.ordered))
	copy(ranges, s.ordered)
	return ranges
}

// OverlappingRanges returns, ordered by key, the partition key ranges sharing
// at least one key with the effective range.
func (s *Snapshot) OverlappingRanges(effectiveRange routing.EffectiveRange) []routing.PartitionKeyRange {
	var result []routing.PartitionKeyRange
	if effectiveRange.IsEmpty() {
		return result
	}

	// The range containing the lower bound. The ranges are contiguous, so
	// the next one always starts where the previous one ends.
	_, value := s.byMin.Floor(effectiveRange.Min())
	for value != nil {
		r := value.(routing.PartitionKeyRange)
		if r.MinInclusive > effectiveRange.Max() {
			break
		}
		if effectiveRange.OverlapsHalfOpen(r.MinInclusive, r.MaxExclusive) {
			result = append(result, r)
		}
		value, _ = s.byMin.Get(r.MaxExclusive)
	}
	return result
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot{container: %s, ranges: %d}", s.containerID, len(s.ordered))
}
