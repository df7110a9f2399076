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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnative/rangeroute/routing"
)

func TestResolve_StaleCacheAfterSplit(t *testing.T) {
	ms := NewMemorySource()
	require.NoError(t, ms.Set("c1", threeRanges()))
	p := newProvider(t, ms)
	ctx := context.Background()

	// Warm up the cache
	ranges, err := routing.FromPartitionKeyRangeID("1").ComputeEffectiveRanges(ctx, p, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, []routing.EffectiveRange{mustRange(t, "10", "20", true, false)}, ranges)
	assert.Equal(t, 1, ms.Fetches("c1"))

	left, right, err := ms.Split("c1", "1", "18")
	require.NoError(t, err)

	// The child is unknown to the cached snapshot, the forced refresh finds it
	ranges, err = routing.FromPartitionKeyRangeID(right.ID).ComputeEffectiveRanges(ctx, p, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, []routing.EffectiveRange{mustRange(t, "18", "20", true, false)}, ranges)
	assert.Equal(t, 2, ms.Fetches("c1"))

	ids, err := routing.FromEffectiveRange(mustRange(t, "10", "20", true, false)).
		ComputePartitionKeyRangeIDs(ctx, p, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{left.ID, right.ID}, ids)

	// The split parent is gone even after the refresh
	_, err = routing.FromPartitionKeyRangeID("1").ComputeEffectiveRanges(ctx, p, "c1", nil)
	var gone *routing.RangeGoneError
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, "1", gone.PartitionKeyRangeID)
	assert.Equal(t, http.StatusGone, gone.StatusCode())
	assert.Equal(t, routing.SubStatusPartitionKeyRangeGone, gone.SubStatusCode())
	assert.Equal(t, 3, ms.Fetches("c1"))

	// The identifier shortcut does not consult the boundary map
	ids, err = routing.FromPartitionKeyRangeID("1").ComputePartitionKeyRangeIDs(ctx, p, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
	assert.Equal(t, 3, ms.Fetches("c1"))
}

func TestResolve_PartitionKeyThroughProvider(t *testing.T) {
	ranges, err := GenerateRanges(4)
	require.NoError(t, err)
	ms := NewMemorySource()
	require.NoError(t, ms.Set("c1", ranges))
	p := newProvider(t, ms)

	def := &routing.PartitionKeyDefinition{Paths: []string{"/tenant"}, Kind: routing.PartitionKindHash, Version: 2}
	pk, err := routing.NewPartitionKey("test")
	require.NoError(t, err)
	epk, err := def.EffectivePartitionKeyString(pk)
	require.NoError(t, err)

	ids, err := routing.FromPartitionKey(pk).ComputePartitionKeyRangeIDs(context.Background(), p, "c1", def)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	r, found, err := p.TryGetPartitionKeyRangeByID(context.Background(), "c1", ids[0], false)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, r.ToRange().Contains(epk))
}
