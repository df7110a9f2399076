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
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the discriminator of a FeedRange.
type Kind int

const (
	KindUnknown Kind = iota
	KindEffectiveRange
	KindPartitionKey
	KindPartitionKeyRangeID
)

func (k Kind) String() string {
	switch k {
	case KindEffectiveRange:
		return "effective-range"
	case KindPartitionKey:
		return "logical-key"
	case KindPartitionKeyRangeID:
		return "range-id"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// FeedRange describes which slice of a container's key space a request
// should touch. It is one of:
//   - an explicit effective range,
//   - a single logical partition key,
//   - the identifier of a partition key range.
//
// FeedRange values are immutable and can be shared across goroutines. The
// zero value has KindUnknown and is not a valid feed range.
type FeedRange struct {
	kind                Kind
	effectiveRange      EffectiveRange
	partitionKey        PartitionKey
	partitionKeyRangeID string
}

func FromEffectiveRange(r EffectiveRange) FeedRange {
	return FeedRange{kind: KindEffectiveRange, effectiveRange: r}
}

func FromPartitionKey(pk PartitionKey) FeedRange {
	return FeedRange{kind: KindPartitionKey, partitionKey: pk}
}

func FromPartitionKeyRangeID(id string) FeedRange {
	return FeedRange{kind: KindPartitionKeyRangeID, partitionKeyRangeID: id}
}

func (f FeedRange) Kind() Kind {
	return f.kind
}

func (f FeedRange) EffectiveRange() (EffectiveRange, bool) {
	return f.effectiveRange, f.kind == KindEffectiveRange
}

func (f FeedRange) PartitionKey() (PartitionKey, bool) {
	return f.partitionKey, f.kind == KindPartitionKey
}

func (f FeedRange) PartitionKeyRangeID() (string, bool) {
	return f.partitionKeyRangeID, f.kind == KindPartitionKeyRangeID
}

func (f FeedRange) String() string {
	switch f.kind {
	case KindEffectiveRange:
		return fmt.Sprintf("%v%v", f.kind, f.effectiveRange)
	case KindPartitionKey:
		return fmt.Sprintf("%v%v", f.kind, f.partitionKey)
	case KindPartitionKeyRangeID:
		return fmt.Sprintf("%v(%s)", f.kind, f.partitionKeyRangeID)
	default:
		return f.kind.String()
	}
}

func (f FeedRange) invalidKindError() error {
	return errors.Wrapf(ErrMalformedFeedRange, "unexpected feed range kind %v", f.kind)
}
