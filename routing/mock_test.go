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

	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) TryGetPartitionKeyRangeByID(_ context.Context, containerID string, id string,
	forceRefresh bool) (PartitionKeyRange, bool, error) {
	args := m.MethodCalled("TryGetPartitionKeyRangeByID", containerID, id, forceRefresh)
	pkRange, ok := args.Get(0).(PartitionKeyRange)
	if !ok {
		panic("cast failed")
	}
	return pkRange, args.Bool(1), args.Error(2)
}

func (m *mockProvider) TryGetOverlappingRanges(_ context.Context, containerID string, effectiveRange EffectiveRange,
	forceRefresh bool) ([]PartitionKeyRange, error) {
	args := m.MethodCalled("TryGetOverlappingRanges", containerID, effectiveRange, forceRefresh)
	pkRanges, ok := args.Get(0).([]PartitionKeyRange)
	if !ok {
		panic("cast failed")
	}
	return pkRanges, args.Error(1)
}

func mustRange(minKey, maxKey string, minInclusive, maxInclusive bool) EffectiveRange {
	r, err := NewEffectiveRange(minKey, maxKey, minInclusive, maxInclusive)
	if err != nil {
		panic(err)
	}
	return r
}

func mustPartitionKey(components ...any) PartitionKey {
	pk, err := NewPartitionKey(components...)
	if err != nil {
		panic(err)
	}
	return pk
}
