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
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/time/rate"
)

func TestProviderOptions_Defaults(t *testing.T) {
	options, err := newProviderOptions()
	assert.NoError(t, err)
	assert.Equal(t, DefaultCacheTTL, options.cacheTTL)
	assert.EqualValues(t, DefaultCacheMaxCost, options.cacheMaxCost)
	assert.Equal(t, DefaultRefreshRateLimit, options.refreshRateLimit)
	assert.Equal(t, DefaultRefreshBurst, options.refreshBurst)
	assert.Equal(t, DefaultMaxFetchElapsedTime, options.maxFetchElapsedTime)
	assert.IsType(t, noop.MeterProvider{}, options.meterProvider)
}

func TestWithCacheTTL(t *testing.T) {
	for _, item := range []struct {
		ttl         time.Duration
		expectedTTL time.Duration
		expectedErr error
	}{
		{-1, DefaultCacheTTL, ErrInvalidOptionCacheTTL},
		{0, DefaultCacheTTL, ErrInvalidOptionCacheTTL},
		{time.Second, time.Second, nil},
	} {
		options, err := newProviderOptions(WithCacheTTL(item.ttl))
		assert.Equal(t, item.expectedTTL, options.cacheTTL)
		assert.ErrorIs(t, err, item.expectedErr)
	}
}

func TestWithCacheMaxCost(t *testing.T) {
	for _, item := range []struct {
		maxCost         int64
		expectedMaxCost int64
		expectedErr     error
	}{
		{-1, DefaultCacheMaxCost, ErrInvalidOptionCacheMaxCost},
		{0, DefaultCacheMaxCost, ErrInvalidOptionCacheMaxCost},
		{10, 10, nil},
	} {
		options, err := newProviderOptions(WithCacheMaxCost(item.maxCost))
		assert.Equal(t, item.expectedMaxCost, options.cacheMaxCost)
		assert.ErrorIs(t, err, item.expectedErr)
	}
}

func TestWithRefreshRateLimit(t *testing.T) {
	for _, item := range []struct {
		limit         rate.Limit
		burst         int
		expectedLimit rate.Limit
		expectedErr   error
	}{
		{0, 1, DefaultRefreshRateLimit, ErrInvalidOptionRefreshRateLimit},
		{1, 0, DefaultRefreshRateLimit, ErrInvalidOptionRefreshRateLimit},
		{rate.Inf, 1, rate.Inf, nil},
		{5, 2, 5, nil},
	} {
		options, err := newProviderOptions(WithRefreshRateLimit(item.limit, item.burst))
		assert.Equal(t, item.expectedLimit, options.refreshRateLimit)
		assert.ErrorIs(t, err, item.expectedErr)
	}
}

func TestWithMaxFetchElapsedTime(t *testing.T) {
	options, err := newProviderOptions(WithMaxFetchElapsedTime(-1))
	assert.ErrorIs(t, err, ErrInvalidOptionMaxFetchElapsedTime)
	assert.Equal(t, DefaultMaxFetchElapsedTime, options.maxFetchElapsedTime)

	options, err = newProviderOptions(WithMaxFetchElapsedTime(0))
	assert.NoError(t, err)
	assert.Equal(t, time.Duration(0), options.maxFetchElapsedTime)
}

func TestProviderOptions_CombinedErrors(t *testing.T) {
	_, err := newProviderOptions(WithCacheTTL(0), WithCacheMaxCost(0))
	assert.ErrorIs(t, err, ErrInvalidOptionCacheTTL)
	assert.ErrorIs(t, err, ErrInvalidOptionCacheMaxCost)

	_, err = NewCachingProvider(NewMemorySource(), WithCacheTTL(0))
	assert.ErrorIs(t, err, ErrInvalidOptionCacheTTL)
}

func TestWithMeterProvider_Nil(t *testing.T) {
	options, err := newProviderOptions(WithMeterProvider(nil))
	assert.NoError(t, err)
	assert.IsType(t, noop.MeterProvider{}, options.meterProvider)
}
