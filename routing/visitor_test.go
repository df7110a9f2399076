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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestPopulator_EffectiveRange(t *testing.T) {
	request := NewRequestDescriptor()
	activityID := request.ActivityID

	FromEffectiveRange(mustRange("AA", "BB", true, false)).Accept(NewRequestPopulator(request))

	assert.Equal(t, &RequestDescriptor{
		ActivityID:                          activityID,
		StartEffectiveKey:                   "AA",
		EndEffectiveKey:                     "BB",
		RequiresPartitionKeyRangeResolution: true,
	}, request)
	assert.Equal(t, map[string]string{
		HeaderActivityID:        activityID,
		HeaderStartEffectiveKey: "AA",
		HeaderEndEffectiveKey:   "BB",
	}, request.Headers())
}

func TestRequestPopulator_PartitionKeyRangeID(t *testing.T) {
	request := NewRequestDescriptor()
	activityID := request.ActivityID

	FromPartitionKeyRangeID("pkrange-7").Accept(NewRequestPopulator(request))

	assert.Equal(t, &RequestDescriptor{
		ActivityID:                          activityID,
		PartitionKeyRangeID:                 "pkrange-7",
		RequiresPartitionKeyRangeResolution: false,
	}, request)
	assert.Equal(t, map[string]string{
		HeaderActivityID:          activityID,
		HeaderPartitionKeyRangeID: "pkrange-7",
	}, request.Headers())
}

func TestRequestPopulator_PartitionKey(t *testing.T) {
	request := NewRequestDescriptor()
	activityID := request.ActivityID

	FromPartitionKey(mustPartitionKey("test")).Accept(NewRequestPopulator(request))

	assert.Equal(t, &RequestDescriptor{
		ActivityID:                          activityID,
		PartitionKey:                        `["test"]`,
		RequiresPartitionKeyRangeResolution: false,
	}, request)
}

func TestRequestPopulator_Idempotent(t *testing.T) {
	for _, feedRange := range []FeedRange{
		FromEffectiveRange(mustRange("AA", "BB", true, false)),
		FromPartitionKey(mustPartitionKey("test", 1)),
		FromPartitionKeyRangeID("pkrange-7"),
	} {
		t.Run(feedRange.Kind().String(), func(t *testing.T) {
			request := NewRequestDescriptor()
			populator := NewRequestPopulator(request)

			feedRange.Accept(populator)
			first := *request
			feedRange.Accept(populator)
			assert.Equal(t, first, *request)
		})
	}
}

type recordingVisitor struct {
	calls []string
}

func (v *recordingVisitor) VisitEffectiveRange(EffectiveRange) {
	v.calls = append(v.calls, "effective-range")
}

func (v *recordingVisitor) VisitPartitionKey(PartitionKey) {
	v.calls = append(v.calls, "partition-key")
}

func (v *recordingVisitor) VisitPartitionKeyRangeID(string) {
	v.calls = append(v.calls, "partition-key-range-id")
}

func TestAccept_SingleDispatch(t *testing.T) {
	v := &recordingVisitor{}
	FromEffectiveRange(FullRange()).Accept(v)
	FromPartitionKey(mustPartitionKey("a")).Accept(v)
	FromPartitionKeyRangeID("0").Accept(v)
	assert.Equal(t, []string{"effective-range", "partition-key", "partition-key-range-id"}, v.calls)

	assert.Panics(t, func() {
		FeedRange{}.Accept(v)
	})
}
