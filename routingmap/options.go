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
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"
)

const (
	DefaultCacheTTL            = 5 * time.Minute
	DefaultCacheMaxCost        = 1_000_000
	DefaultRefreshRateLimit    = rate.Limit(50)
	DefaultRefreshBurst        = 10
	DefaultMaxFetchElapsedTime = 10 * time.Second
)

var (
	ErrInvalidOptionCacheTTL            = errors.New("CacheTTL must be greater than zero")
	ErrInvalidOptionCacheMaxCost        = errors.New("CacheMaxCost must be greater than zero")
	ErrInvalidOptionRefreshRateLimit    = errors.New("RefreshRateLimit and burst must be greater than zero")
	ErrInvalidOptionMaxFetchElapsedTime = errors.New("MaxFetchElapsedTime must be greater than or equal to zero")
)

type providerOptions struct {
	cacheTTL            time.Duration
	cacheMaxCost        int64
	refreshRateLimit    rate.Limit
	refreshBurst        int
	maxFetchElapsedTime time.Duration
	meterProvider       metric.MeterProvider
}

// ProviderOption is an interface for applying CachingProvider options.
type ProviderOption interface {
	apply(option providerOptions) (providerOptions, error)
}

func newProviderOptions(opts ...ProviderOption) (providerOptions, error) {
	options := providerOptions{
		cacheTTL:            DefaultCacheTTL,
		cacheMaxCost:        DefaultCacheMaxCost,
		refreshRateLimit:    DefaultRefreshRateLimit,
		refreshBurst:        DefaultRefreshBurst,
		maxFetchElapsedTime: DefaultMaxFetchElapsedTime,
		meterProvider:       noop.NewMeterProvider(),
	}
	var errs error
	var err error
	for _, o := range opts {
		options, err = o.apply(options)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return options, errs
}

type providerOptionFunc func(providerOptions) (providerOptions, error)

func (f providerOptionFunc) apply(c providerOptions) (providerOptions, error) {
	return f(c)
}

// WithCacheTTL defines how long a boundary map snapshot is served from the
// cache before being fetched again from the source.
func WithCacheTTL(ttl time.Duration) ProviderOption {
	return providerOptionFunc(func(options providerOptions) (providerOptions, error) {
		if ttl <= 0 {
			return options, ErrInvalidOptionCacheTTL
		}
		options.cacheTTL = ttl
		return options, nil
	})
}

// WithCacheMaxCost bounds the cache size, as the total number of partition
// key ranges held by the cached snapshots.
func WithCacheMaxCost(maxCost int64) ProviderOption {
	return providerOptionFunc(func(options providerOptions) (providerOptions, error) {
		if maxCost <= 0 {
			return options, ErrInvalidOptionCacheMaxCost
		}
		options.cacheMaxCost = maxCost
		return options, nil
	})
}

// WithRefreshRateLimit throttles the forced refreshes. Callers asking for a
// refresh beyond the limit wait for their turn. Use rate.Inf to disable.
func WithRefreshRateLimit(limit rate.Limit, burst int) ProviderOption {
	return providerOptionFunc(func(options providerOptions) (providerOptions, error) {
		if limit <= 0 || burst <= 0 {
			return options, ErrInvalidOptionRefreshRateLimit
		}
		options.refreshRateLimit = limit
		options.refreshBurst = burst
		return options, nil
	})
}

// WithMaxFetchElapsedTime bounds the retries of a failing source fetch. Zero
// retries until the source recovers or the provider is closed. Callers stop
// waiting when their own context is done.
func WithMaxFetchElapsedTime(maxElapsedTime time.Duration) ProviderOption {
	return providerOptionFunc(func(options providerOptions) (providerOptions, error) {
		if maxElapsedTime < 0 {
			return options, ErrInvalidOptionMaxFetchElapsedTime
		}
		options.maxFetchElapsedTime = maxElapsedTime
		return options, nil
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider for the provider
// metrics. Metrics are disabled when not set.
func WithMeterProvider(meterProvider metric.MeterProvider) ProviderOption {
	return providerOptionFunc(func(options providerOptions) (providerOptions, error) {
		if meterProvider == nil {
			options.meterProvider = noop.NewMeterProvider()
		} else {
			options.meterProvider = meterProvider
		}
		return options, nil
	})
}

// WithGlobalMeterProvider uses the global OpenTelemetry MeterProvider.
func WithGlobalMeterProvider() ProviderOption {
	return WithMeterProvider(otel.GetMeterProvider())
}
