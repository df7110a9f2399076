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
	"github.com/google/uuid"
)

const (
	HeaderActivityID          = "x-activity-id"
	HeaderPartitionKey        = "x-partition-key"
	HeaderPartitionKeyRangeID = "x-partition-key-range-id"
	HeaderStartEffectiveKey   = "x-start-epk"
	HeaderEndEffectiveKey     = "x-end-epk"
)

// RequestDescriptor is the routing part of an outbound request. It is owned
// by the caller and must not be shared between goroutines while it is being
// populated.
type RequestDescriptor struct {
	ActivityID string `json:"activityId"`

	StartEffectiveKey   string `json:"startEffectiveKey,omitempty"`
	EndEffectiveKey     string `json:"endEffectiveKey,omitempty"`
	PartitionKeyRangeID string `json:"partitionKeyRangeId,omitempty"`
	PartitionKey        string `json:"partitionKey,omitempty"`

	// RequiresPartitionKeyRangeResolution tells the transport that the
	// request still needs to be mapped to a partition key range before
	// being sent.
	RequiresPartitionKeyRangeResolution bool `json:"requiresPartitionKeyRangeResolution"`
}

func NewRequestDescriptor() *RequestDescriptor {
	return &RequestDescriptor{
		ActivityID:                          uuid.NewString(),
		RequiresPartitionKeyRangeResolution: true,
	}
}

// Headers renders the populated routing fields as transport headers.
func (r *RequestDescriptor) Headers() map[string]string {
	headers := map[string]string{}
	for name, value := range map[string]string{
		HeaderActivityID:          r.ActivityID,
		HeaderStartEffectiveKey:   r.StartEffectiveKey,
		HeaderEndEffectiveKey:     r.EndEffectiveKey,
		HeaderPartitionKeyRangeID: r.PartitionKeyRangeID,
		HeaderPartitionKey:        r.PartitionKey,
	} {
		if value != "" {
			headers[name] = value
		}
	}
	return headers
}

// Visitor receives the content of a FeedRange, according to its kind.
type Visitor interface {
	VisitEffectiveRange(effectiveRange EffectiveRange)
	VisitPartitionKey(partitionKey PartitionKey)
	VisitPartitionKeyRangeID(partitionKeyRangeID string)
}

// Accept dispatches the feed range to the visitor method of its kind.
func (f FeedRange) Accept(visitor Visitor) {
	switch f.kind {
	case KindEffectiveRange:
		visitor.VisitEffectiveRange(f.effectiveRange)
	case KindPartitionKey:
		visitor.VisitPartitionKey(f.partitionKey)
	case KindPartitionKeyRangeID:
		visitor.VisitPartitionKeyRangeID(f.partitionKeyRangeID)
	default:
		panic(f.invalidKindError())
	}
}

// RequestPopulator is the Visitor that copies the targeting information of
// a feed range into a request descriptor.
type RequestPopulator struct {
	request *RequestDescriptor
}

func NewRequestPopulator(request *RequestDescriptor) *RequestPopulator {
	return &RequestPopulator{request: request}
}

// VisitEffectiveRange sets the effective key boundaries. The transport still
// has to find the partition key ranges covering them.
func (p *RequestPopulator) VisitEffectiveRange(effectiveRange EffectiveRange) {
	p.request.StartEffectiveKey = effectiveRange.Min()
	p.request.EndEffectiveKey = effectiveRange.Max()
}

func (p *RequestPopulator) VisitPartitionKey(partitionKey PartitionKey) {
	p.request.PartitionKey = partitionKey.String()
	p.request.RequiresPartitionKeyRangeResolution = false
}

func (p *RequestPopulator) VisitPartitionKeyRangeID(partitionKeyRangeID string) {
	p.request.PartitionKeyRangeID = partitionKeyRangeID
	p.request.RequiresPartitionKeyRangeResolution = false
}
