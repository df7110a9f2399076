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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnative/rangeroute/routing"
)

func threeRanges() []routing.PartitionKeyRange {
	return []routing.PartitionKeyRange{
		{ID: "0", MinInclusive: "", MaxExclusive: "10"},
		{ID: "1", MinInclusive: "10", MaxExclusive: "20"},
		{ID: "2", MinInclusive: "20", MaxExclusive: "FF"},
	}
}

func mustRange(t *testing.T, minKey, maxKey string, minInclusive, maxInclusive bool) routing.EffectiveRange {
	t.Helper()
	r, err := routing.NewEffectiveRange(minKey, maxKey, minInclusive, maxInclusive)
	require.NoError(t, err)
	return r
}

func ids(ranges []routing.PartitionKeyRange) []string {
	res := make([]string, len(ranges))
	for i, r := range ranges {
		res[i] = r.ID
	}
	return res
}

func TestSnapshot_Valid(t *testing.T) {
	// Out of order on purpose
	ranges := threeRanges()
	ranges[0], ranges[2] = ranges[2], ranges[0]

	s, err := NewSnapshot("c1", ranges)
	require.NoError(t, err)

	assert.Equal(t, "c1", s.ContainerID())
	assert.Equal(t, []string{"0", "1", "2"}, ids(s.Ranges()))

	r, found := s.RangeByID("1")
	assert.True(t, found)
	assert.Equal(t, "10", r.MinInclusive)
	assert.Equal(t, "20", r.MaxExclusive)

	_, found = s.RangeByID("7")
	assert.False(t, found)
}

func TestSnapshot_Invalid(t *testing.T) {
	for _, test := range []struct {
		name   string
		ranges []routing.PartitionKeyRange
	}{
		{"empty", nil},
		{"gap", []routing.PartitionKeyRange{
			{ID: "0", MinInclusive: "", MaxExclusive: "10"},
			{ID: "1", MinInclusive: "11", MaxExclusive: "FF"},
		}},
		{"overlap", []routing.PartitionKeyRange{
			{ID: "0", MinInclusive: "", MaxExclusive: "20"},
			{ID: "1", MinInclusive: "10", MaxExclusive: "FF"},
		}},
		{"not-starting-at-min", []routing.PartitionKeyRange{
			{ID: "0", MinInclusive: "05", MaxExclusive: "FF"},
		}},
		{"not-reaching-max", []routing.PartitionKeyRange{
			{ID: "0", MinInclusive: "", MaxExclusive: "80"},
		}},
		{"empty-range", []routing.PartitionKeyRange{
			{ID: "0", MinInclusive: "", MaxExclusive: ""},
			{ID: "1", MinInclusive: "", MaxExclusive: "FF"},
		}},
		{"duplicated-id", []routing.PartitionKeyRange{
			{ID: "0", MinInclusive: "", MaxExclusive: "10"},
			{ID: "0", MinInclusive: "10", MaxExclusive: "FF"},
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewSnapshot("c1", test.ranges)
			assert.ErrorIs(t, err, ErrIncompleteRoutingMap)
		})
	}
}

func TestSnapshot_DropsSplitParents(t *testing.T) {
	s, err := NewSnapshot("c1", []routing.PartitionKeyRange{
		{ID: "0", MinInclusive: "", MaxExclusive: "FF"},
		{ID: "1", MinInclusive: "", MaxExclusive: "80", Parents: []string{"0"}},
		{ID: "2", MinInclusive: "80", MaxExclusive: "FF", Parents: []string{"0"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, ids(s.Ranges()))
	_, found := s.RangeByID("0")
	assert.False(t, found)
}

func TestSnapshot_OverlappingRanges(t *testing.T) {
	s, err := NewSnapshot("c1", threeRanges())
	require.NoError(t, err)

	for _, test := range []struct {
		name     string
		r        routing.EffectiveRange
		expected []string
	}{
		{"full", routing.FullRange(), []string{"0", "1", "2"}},
		{"point-first", routing.PointRange("05"), []string{"0"}},
		{"point-on-boundary", routing.PointRange("10"), []string{"1"}},
		{"point-min", routing.PointRange(""), []string{"0"}},
		{"half-open-ending-at-boundary", mustRange(t, "05", "10", true, false), []string{"0"}},
		{"closed-ending-at-boundary", mustRange(t, "05", "10", true, true), []string{"0", "1"}},
		{"spanning", mustRange(t, "15", "25", true, false), []string{"1", "2"}},
		{"exactly-one-range", mustRange(t, "10", "20", true, false), []string{"1"}},
		{"empty", routing.PartitionKeyRange{ID: "e", MinInclusive: "10", MaxExclusive: "10"}.ToRange(), nil},
		{"beyond-max", routing.PointRange("FF"), nil},
	} {
		t.Run(test.name, func(t *testing.T) {
			res := s.OverlappingRanges(test.r)
			if test.expected == nil {
				assert.Empty(t, res)
			} else {
				assert.Equal(t, test.expected, ids(res))
			}
		})
	}
}

func TestGenerateRanges(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16, MaxGeneratedRanges} {
		ranges, err := GenerateRanges(n)
		require.NoError(t, err)
		assert.Len(t, ranges, n)

		s, err := NewSnapshot("c1", ranges)
		require.NoError(t, err, "n=%d", n)
		assert.Len(t, s.Ranges(), n)
		assert.Equal(t, "0", ranges[0].ID)
	}

	ranges, err := GenerateRanges(4)
	require.NoError(t, err)
	assert.Equal(t, []routing.PartitionKeyRange{
		{ID: "0", MinInclusive: "", MaxExclusive: "1000"},
		{ID: "1", MinInclusive: "1000", MaxExclusive: "2000"},
		{ID: "2", MinInclusive: "2000", MaxExclusive: "3000"},
		{ID: "3", MinInclusive: "3000", MaxExclusive: "FF"},
	}, ranges)

	_, err = GenerateRanges(0)
	assert.Error(t, err)
	_, err = GenerateRanges(MaxGeneratedRanges + 1)
	assert.Error(t, err)
}

func TestGenerateRanges_HashedKeysAreSpread(t *testing.T) {
	ranges, err := GenerateRanges(4)
	require.NoError(t, err)
	s, err := NewSnapshot("c1", ranges)
	require.NoError(t, err)

	def := &routing.PartitionKeyDefinition{Paths: []string{"/id"}, Kind: routing.PartitionKindHash, Version: 2}
	hits := map[string]int{}
	for i := 0; i < 400; i++ {
		pk, err := routing.NewPartitionKey(i)
		require.NoError(t, err)
		epk, err := def.EffectivePartitionKeyString(pk)
		require.NoError(t, err)

		res := s.OverlappingRanges(routing.PointRange(epk))
		require.Len(t, res, 1)
		hits[res[0].ID]++
	}

	assert.Len(t, hits, 4)
}
