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
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/streamnative/rangeroute/common"
	"github.com/streamnative/rangeroute/common/metrics"
	"github.com/streamnative/rangeroute/routing"
)

const (
	meterName = "github.com/streamnative/rangeroute/routingmap"

	refreshFlightSuffix = "\x00refresh"
)

// ErrRefreshThrottled is returned when a forced refresh cannot be admitted by
// the refresh rate limit before the caller's deadline.
var ErrRefreshThrottled = errors.New("routingmap: boundary map refresh throttled")

var (
	opRangeByID   = attribute.String("op", "range-by-id")
	opOverlapping = attribute.String("op", "overlapping-ranges")
	opSnapshot    = attribute.String("op", "snapshot")
	cacheHit      = attribute.String("cache", "hit")
	cacheMiss     = attribute.String("cache", "miss")
	cacheRefresh  = attribute.String("cache", "refresh")
	fetchSuccess  = metric.WithAttributes(attribute.String("result", "success"))
	fetchFailure  = metric.WithAttributes(attribute.String("result", "failure"))
)

// CachingProvider is a routing.RoutingMapProvider serving the boundary maps
// of a Source through a per-container snapshot cache.
//
// Lookups without forceRefresh are served from the cache while the snapshot
// is fresh. A forced refresh always reads the source again. Concurrent
// fetches of the same container share a single source read.
type CachingProvider struct {
	source         Source
	options        providerOptions
	cache          *ristretto.Cache
	cacheLock      sync.Mutex
	flights        singleflight.Group
	fetchSeq       atomic.Uint64
	refreshLimiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	lookupCounter metric.Int64Counter
	fetchCounter  metric.Int64Counter
	fetchLatency  metric.Float64Histogram
}

var _ routing.RoutingMapProvider = (*CachingProvider)(nil)

// fetchResult is a source read, numbered in the order the reads began.
type fetchResult struct {
	seq      uint64
	snapshot *Snapshot
}

func NewCachingProvider(source Source, opts ...ProviderOption) (*CachingProvider, error) {
	if source == nil {
		return nil, errors.New("routingmap: source must not be nil")
	}
	options, err := newProviderOptions(opts...)
	if err != nil {
		return nil, err
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        100_000,
		MaxCost:            options.cacheMaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the snapshot cache")
	}

	p := &CachingProvider{
		source:         source,
		options:        options,
		cache:          cache,
		refreshLimiter: rate.NewLimiter(options.refreshRateLimit, options.refreshBurst),
		log: slog.With(
			slog.String("component", "routing-map-provider"),
		),
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	meter := options.meterProvider.Meter(meterName)
	if p.lookupCounter, err = meter.Int64Counter("rangeroute_routing_map_lookups",
		metric.WithDescription("The number of boundary map lookups, by cache outcome"),
		metric.WithUnit(string(metrics.Count))); err != nil {
		return nil, p.closeOnError(err)
	}
	if p.fetchCounter, err = meter.Int64Counter("rangeroute_routing_map_fetches",
		metric.WithDescription("The number of boundary map fetches from the source"),
		metric.WithUnit(string(metrics.Count))); err != nil {
		return nil, p.closeOnError(err)
	}
	if p.fetchLatency, err = meter.Float64Histogram("rangeroute_routing_map_fetch_latency",
		metric.WithDescription("The latency of fetching a boundary map from the source"),
		metric.WithUnit(string(metrics.Milliseconds))); err != nil {
		return nil, p.closeOnError(err)
	}

	return p, nil
}

func (p *CachingProvider) TryGetPartitionKeyRangeByID(ctx context.Context, containerID string, id string,
	forceRefresh bool) (routing.PartitionKeyRange, bool, error) {
	snapshot, err := p.snapshot(ctx, opRangeByID, containerID, forceRefresh)
	if err != nil {
		return routing.PartitionKeyRange{}, false, err
	}

	r, found := snapshot.RangeByID(id)
	return r, found, nil
}

func (p *CachingProvider) TryGetOverlappingRanges(ctx context.Context, containerID string,
	effectiveRange routing.EffectiveRange, forceRefresh bool) ([]routing.PartitionKeyRange, error) {
	snapshot, err := p.snapshot(ctx, opOverlapping, containerID, forceRefresh)
	if err != nil {
		return nil, err
	}
	return snapshot.OverlappingRanges(effectiveRange), nil
}

// Snapshot returns the boundary map of a container.
func (p *CachingProvider) Snapshot(ctx context.Context, containerID string, forceRefresh bool) (*Snapshot, error) {
	return p.snapshot(ctx, opSnapshot, containerID, forceRefresh)
}

// Invalidate drops the cached snapshot of a container.
func (p *CachingProvider) Invalidate(containerID string) {
	p.cache.Del(containerID)
}

func (p *CachingProvider) snapshot(ctx context.Context, op attribute.KeyValue, containerID string,
	forceRefresh bool) (*Snapshot, error) {
	key := containerID
	if !forceRefresh {
		if cached, ok := p.cache.Get(containerID); ok {
			p.lookupCounter.Add(ctx, 1, metric.WithAttributes(op, cacheHit))
			return cached.(*fetchResult).snapshot, nil
		}
		p.lookupCounter.Add(ctx, 1, metric.WithAttributes(op, cacheMiss))
	} else {
		p.lookupCounter.Add(ctx, 1, metric.WithAttributes(op, cacheRefresh))
		if err := p.refreshLimiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errors.Wrapf(ErrRefreshThrottled, "container %q: %v", containerID, err)
		}
		key = containerID + refreshFlightSuffix
	}

	// A forced refresh only accepts a source read that began after it was
	// requested.
	requested := p.fetchSeq.Load()
	for {
		// The shared fetch is bound to the provider lifetime, so that a
		// caller giving up does not fail the others waiting on the same fetch.
		ch := p.flights.DoChan(key, func() (any, error) {
			return p.fetch(containerID)
		})

		select {
		case res := <-ch:
			fetched := res.Val.(*fetchResult)
			if forceRefresh && fetched.seq <= requested {
				continue
			}
			if res.Err != nil {
				return nil, res.Err
			}
			return fetched.snapshot, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *CachingProvider) fetch(containerID string) (*fetchResult, error) {
	start := time.Now()
	fetched := &fetchResult{seq: p.fetchSeq.Add(1)}

	err := backoff.RetryNotify(func() error {
		ranges, err := p.source.Fetch(p.ctx, containerID)
		if err != nil {
			if errors.Is(err, ErrContainerNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}

		if fetched.snapshot, err = NewSnapshot(containerID, ranges); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, common.NewBackOff(p.ctx, p.options.maxFetchElapsedTime), func(err error, retryAfter time.Duration) {
		p.log.Warn(
			"Failed to fetch boundary map, retrying later",
			slog.String("container", containerID),
			slog.Any("error", err),
			slog.Duration("retry-after", retryAfter),
		)
	})

	p.fetchLatency.Record(p.ctx, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil {
		p.fetchCounter.Add(p.ctx, 1, fetchFailure)
		return fetched, errors.Wrapf(err, "failed to fetch boundary map of container %q", containerID)
	}
	p.fetchCounter.Add(p.ctx, 1, fetchSuccess)

	p.store(containerID, fetched)

	p.log.Debug(
		"Fetched boundary map",
		slog.String("container", containerID),
		slog.Int("ranges", len(fetched.snapshot.ordered)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return fetched, nil
}

// store caches the fetched snapshot unless a read that began later is
// already cached.
func (p *CachingProvider) store(containerID string, fetched *fetchResult) {
	p.cacheLock.Lock()
	defer p.cacheLock.Unlock()

	if cached, ok := p.cache.Get(containerID); ok && cached.(*fetchResult).seq > fetched.seq {
		return
	}
	p.cache.SetWithTTL(containerID, fetched, int64(len(fetched.snapshot.ordered)), p.options.cacheTTL)
	p.cache.Wait()
}

func (p *CachingProvider) closeOnError(err error) error {
	_ = p.Close()
	return err
}

// Close stops the pending fetches and releases the cache. The source is not
// closed.
func (p *CachingProvider) Close() error {
	p.cancel()
	p.cache.Close()
	return nil
}
