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
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBackOff_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, NewBackOffWithInitialInterval(context.Background(), time.Millisecond, time.Second))

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestBackOff_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		return errors.New("transient")
	}, NewBackOff(ctx, 0))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestBackOff_MaxElapsedTime(t *testing.T) {
	b := NewBackOffWithInitialInterval(context.Background(), time.Millisecond, 20*time.Millisecond)
	b.Reset()

	start := time.Now()
	err := backoff.Retry(func() error {
		return errors.New("transient")
	}, b)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
