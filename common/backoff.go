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

package common

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultInitialBackOffInterval = 50 * time.Millisecond

// NewBackOff returns an exponential back-off bound to the context. A zero
// maxElapsedTime retries until the context is done.
func NewBackOff(ctx context.Context, maxElapsedTime time.Duration) backoff.BackOff {
	return NewBackOffWithInitialInterval(ctx, DefaultInitialBackOffInterval, maxElapsedTime)
}

func NewBackOffWithInitialInterval(ctx context.Context, initialInterval, maxElapsedTime time.Duration) backoff.BackOff {
	return backoff.WithContext(&backoff.ExponentialBackOff{
		InitialInterval:     initialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      maxElapsedTime,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}, ctx)
}
