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

const (
	// MinimumInclusiveEffectiveKey is the lower bound of the effective key space.
	MinimumInclusiveEffectiveKey = ""
	// MaximumExclusiveEffectiveKey is the upper bound of the effective key space.
	MaximumExclusiveEffectiveKey = "FF"
)

var ErrInvalidEffectiveRange = errors.New("routing: invalid effective range")

// EffectiveRange is a contiguous interval over the effective (hashed) key
// space. Boundaries are compared with ordinal byte ordering.
//
// Values are immutable: every operation that derives a range returns a new
// value, and two ranges are equal when all their fields are equal.
type EffectiveRange struct {
	min          string
	max          string
	minInclusive bool
	maxInclusive bool
}

// NewEffectiveRange creates a range with explicit boundary flags.
// Returns ErrInvalidEffectiveRange if min sorts after max, or if a range with
// min equal to max is not closed on both ends.
func NewEffectiveRange(minKey, maxKey string, minInclusive, maxInclusive bool) (EffectiveRange, error) {
	if minKey > maxKey {
		return EffectiveRange{}, errors.Wrapf(ErrInvalidEffectiveRange, "min %q is greater than max %q", minKey, maxKey)
	}
	if minKey == maxKey && !(minInclusive && maxInclusive) {
		return EffectiveRange{}, errors.Wrapf(ErrInvalidEffectiveRange, "point range %q must include both bounds", minKey)
	}
	return EffectiveRange{
		min:          minKey,
		max:          maxKey,
		minInclusive: minInclusive,
		maxInclusive: maxInclusive,
	}, nil
}

// PointRange returns the singleton range [key, key].
func PointRange(key string) EffectiveRange {
	return EffectiveRange{
		min:          key,
		max:          key,
		minInclusive: true,
		maxInclusive: true,
	}
}

// FullRange covers the whole effective key space.
func FullRange() EffectiveRange {
	return EffectiveRange{
		min:          MinimumInclusiveEffectiveKey,
		max:          MaximumExclusiveEffectiveKey,
		minInclusive: true,
		maxInclusive: false,
	}
}

func (r EffectiveRange) Min() string {
	return r.min
}

func (r EffectiveRange) Max() string {
	return r.max
}

func (r EffectiveRange) IsMinInclusive() bool {
	return r.minInclusive
}

func (r EffectiveRange) IsMaxInclusive() bool {
	return r.maxInclusive
}

// IsPoint is true when the range contains exactly one key.
func (r EffectiveRange) IsPoint() bool {
	return r.min == r.max && r.minInclusive && r.maxInclusive
}

// IsEmpty is true when no key can satisfy both boundaries.
func (r EffectiveRange) IsEmpty() bool {
	return r.min == r.max && !(r.minInclusive && r.maxInclusive)
}

func (r EffectiveRange) Contains(key string) bool {
	if key < r.min || (key == r.min && !r.minInclusive) {
		return false
	}
	if key > r.max || (key == r.max && !r.maxInclusive) {
		return false
	}
	return true
}

// OverlapsHalfOpen tests whether the range shares at least one key with
// [minInclusive, maxExclusive).
func (r EffectiveRange) OverlapsHalfOpen(minInclusive, maxExclusive string) bool {
	if r.IsEmpty() || minInclusive >= maxExclusive {
		return false
	}
	if r.max < minInclusive || (r.max == minInclusive && !r.maxInclusive) {
		return false
	}
	return r.min < maxExclusive
}

func (r EffectiveRange) String() string {
	left, right := "(", ")"
	if r.minInclusive {
		left = "["
	}
	if r.maxInclusive {
		right = "]"
	}
	return fmt.Sprintf("%s%s,%s%s", left, r.min, r.max, right)
}
