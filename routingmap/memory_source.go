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
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/streamnative/rangeroute/routing"
)

var ErrRangeNotFound = errors.New("routingmap: partition key range not found")

// MemorySource keeps the boundary maps in memory and can simulate the
// topology changes of a live store.
type MemorySource struct {
	sync.RWMutex

	containers map[string][]routing.PartitionKeyRange
	fetches    map[string]int
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		containers: map[string][]routing.PartitionKeyRange{},
		fetches:    map[string]int{},
	}
}

// Set replaces the boundary map of a container. The ranges are validated
// before being stored.
func (m *MemorySource) Set(containerID string, ranges []routing.PartitionKeyRange) error {
	if _, err := NewSnapshot(containerID, ranges); err != nil {
		return err
	}

	m.Lock()
	defer m.Unlock()
	m.containers[containerID] = cloneRanges(ranges)
	return nil
}

func (m *MemorySource) Fetch(_ context.Context, containerID string) ([]routing.PartitionKeyRange, error) {
	m.Lock()
	defer m.Unlock()

	m.fetches[containerID]++
	ranges, ok := m.containers[containerID]
	if !ok {
		return nil, errors.Wrapf(ErrContainerNotFound, "container %q", containerID)
	}
	return cloneRanges(ranges), nil
}

// Fetches returns how many times the boundary map of a container was read.
func (m *MemorySource) Fetches(containerID string) int {
	m.RLock()
	defer m.RUnlock()
	return m.fetches[containerID]
}

// Split replaces a range with two children split at the given key. The
// children get fresh identifiers and list the split range as their parent.
func (m *MemorySource) Split(containerID, id, splitKey string) (left, right routing.PartitionKeyRange, err error) {
	m.Lock()
	defer m.Unlock()

	ranges, idx, err := m.findRange(containerID, id)
	if err != nil {
		return left, right, err
	}

	parent := ranges[idx]
	if splitKey <= parent.MinInclusive || splitKey >= parent.MaxExclusive {
		return left, right, errors.Errorf("split key %q is outside of range %s", splitKey, parent.ToRange())
	}

	parents := append(append([]string{}, parent.Parents...), parent.ID)
	left = routing.PartitionKeyRange{
		ID:           newRangeID(),
		MinInclusive: parent.MinInclusive,
		MaxExclusive: splitKey,
		Parents:      parents,
	}
	right = routing.PartitionKeyRange{
		ID:           newRangeID(),
		MinInclusive: splitKey,
		MaxExclusive: parent.MaxExclusive,
		Parents:      parents,
	}

	updated := make([]routing.PartitionKeyRange, 0, len(ranges)+1)
	updated = append(updated, ranges[:idx]...)
	updated = append(updated, left, right)
	updated = append(updated, ranges[idx+1:]...)
	m.containers[containerID] = updated
	return left, right, nil
}

// Merge replaces two adjacent ranges with a single one.
func (m *MemorySource) Merge(containerID, leftID, rightID string) (routing.PartitionKeyRange, error) {
	m.Lock()
	defer m.Unlock()

	ranges, leftIdx, err := m.findRange(containerID, leftID)
	if err != nil {
		return routing.PartitionKeyRange{}, err
	}
	_, rightIdx, err := m.findRange(containerID, rightID)
	if err != nil {
		return routing.PartitionKeyRange{}, err
	}

	left, right := ranges[leftIdx], ranges[rightIdx]
	if left.MaxExclusive != right.MinInclusive {
		return routing.PartitionKeyRange{}, errors.Errorf("ranges %q and %q are not adjacent", leftID, rightID)
	}

	merged := routing.PartitionKeyRange{
		ID:           newRangeID(),
		MinInclusive: left.MinInclusive,
		MaxExclusive: right.MaxExclusive,
		Parents:      []string{left.ID, right.ID},
	}

	updated := make([]routing.PartitionKeyRange, 0, len(ranges)-1)
	for i, r := range ranges {
		switch i {
		case leftIdx:
			updated = append(updated, merged)
		case rightIdx:
		default:
			updated = append(updated, r)
		}
	}
	m.containers[containerID] = updated
	return merged, nil
}

// Remove drops the boundary map of a container.
func (m *MemorySource) Remove(containerID string) {
	m.Lock()
	defer m.Unlock()
	delete(m.containers, containerID)
}

func (m *MemorySource) Close() error {
	return nil
}

func (m *MemorySource) findRange(containerID, id string) ([]routing.PartitionKeyRange, int, error) {
	ranges, ok := m.containers[containerID]
	if !ok {
		return nil, -1, errors.Wrapf(ErrContainerNotFound, "container %q", containerID)
	}
	for i, r := range ranges {
		if r.ID == id {
			return ranges, i, nil
		}
	}
	return nil, -1, errors.Wrapf(ErrRangeNotFound, "container %q, range %q", containerID, id)
}

func newRangeID() string {
	return "pkrange-" + uuid.NewString()
}

func cloneRanges(ranges []routing.PartitionKeyRange) []routing.PartitionKeyRange {
	res := make([]routing.PartitionKeyRange, len(ranges))
	for i, r := range ranges {
		res[i] = r
		if r.Parents != nil {
			res[i].Parents = append([]string{}, r.Parents...)
		}
	}
	return res
}
